package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
)

// MarketAdminHandler serves /admin/markets endpoints.
type MarketAdminHandler struct {
	factorySvc *service.FactoryService
	oracleSvc  *service.OracleService
	optionSvc  *service.OptionService
	optionRepo *repository.OptionRepository
	pairRepo   *repository.PairRepository
	eventRepo  *repository.EventRepository
	cfg        *config.Config
}

// NewMarketAdminHandler creates a MarketAdminHandler.
func NewMarketAdminHandler(
	factorySvc *service.FactoryService,
	oracleSvc *service.OracleService,
	optionSvc *service.OptionService,
	optionRepo *repository.OptionRepository,
	pairRepo *repository.PairRepository,
	eventRepo *repository.EventRepository,
	cfg *config.Config,
) *MarketAdminHandler {
	return &MarketAdminHandler{
		factorySvc: factorySvc,
		oracleSvc:  oracleSvc,
		optionSvc:  optionSvc,
		optionRepo: optionRepo,
		pairRepo:   pairRepo,
		eventRepo:  eventRepo,
		cfg:        cfg,
	}
}

// List godoc
// GET /admin/markets?page=1&limit=50
func (h *MarketAdminHandler) List(c *gin.Context) {
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	markets, total, err := h.factorySvc.AllMarkets(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, markets, total, page, limit)
}

// Detail godoc
// GET /admin/markets/:id
func (h *MarketAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	ctx := c.Request.Context()
	market, err := h.factorySvc.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	summary, _ := h.factorySvc.Summary(ctx, market)
	pair, _ := h.pairRepo.GetByKey(ctx, market.PoolAsset, market.PaymentAsset)
	active, _, _ := h.optionRepo.ListByMarket(ctx, id, string(domain.OptionActive), 50, 0)
	events, _ := h.eventRepo.ListByMarket(ctx, id, 50, 0)

	detail := gin.H{
		"market":         market,
		"summary":        summary,
		"pair":           pair,
		"active_options": active,
		"events":         events,
	}
	if pair != nil {
		if snap, err := h.oracleSvc.LatestSnapshot(ctx, pair.ID); err == nil {
			detail["last_snapshot"] = snap
		}
	}
	respondSuccess(c, http.StatusOK, detail)
}

// RefreshOracle godoc
// POST /admin/markets/:id/oracle/refresh
// Forces an immediate oracle snapshot for the market's pair.
func (h *MarketAdminHandler) RefreshOracle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	ctx := c.Request.Context()
	market, err := h.factorySvc.GetByID(ctx, id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	pair, err := h.pairRepo.GetByKey(ctx, market.PoolAsset, market.PaymentAsset)
	if err != nil {
		respondError(c, http.StatusNotFound, "ERR_PAIR_NOT_FOUND", err.Error())
		return
	}
	if err := h.oracleSvc.Update(ctx, pair.ID); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	price, err := h.oracleSvc.PriceFor(ctx, market)
	if err != nil {
		respondSuccess(c, http.StatusOK, gin.H{
			"market_id": id,
			"refreshed": true,
			"note":      err.Error(),
		})
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"market_id":    id,
		"refreshed":    true,
		"oracle_price": price,
	})
}

// SweepExpired godoc
// POST /admin/options/sweep
// Runs one expiry sweep immediately instead of waiting for the scheduler.
func (h *MarketAdminHandler) SweepExpired(c *gin.Context) {
	count, err := h.optionSvc.SweepExpired(c.Request.Context(), 1000)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"unlocked": count})
}
