package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/api/middleware"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
	"github.com/tulipfi/options/internal/ws"
)

// MarketHandler serves market creation and query endpoints.
type MarketHandler struct {
	factorySvc *service.FactoryService
	eventRepo  *repository.EventRepository
	hub        *ws.Hub // nil when the WS hub is disabled
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(factorySvc *service.FactoryService, eventRepo *repository.EventRepository, hub *ws.Hub) *MarketHandler {
	return &MarketHandler{factorySvc: factorySvc, eventRepo: eventRepo, hub: hub}
}

// CreateMarket godoc
// POST /api/markets [JWT]
// Body: {"pool_asset":"WETH","payment_asset":"DAI","seed_pool":"100","seed_payment":"20000"}
func (h *MarketHandler) CreateMarket(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var body struct {
		PoolAsset     string `json:"pool_asset"     binding:"required"`
		PaymentAsset  string `json:"payment_asset"  binding:"required"`
		SeedPool      string `json:"seed_pool"      binding:"required"`
		SeedPayment   string `json:"seed_payment"   binding:"required"`
		VolatilityPct int64  `json:"volatility_pct"`
		FeeBps        int64  `json:"fee_bps"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	seedPool, err := decimal.NewFromString(body.SeedPool)
	if err != nil || !seedPool.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "seed_pool must be a positive decimal string")
		return
	}
	seedPayment, err := decimal.NewFromString(body.SeedPayment)
	if err != nil || !seedPayment.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "seed_payment must be a positive decimal string")
		return
	}

	market, err := h.factorySvc.CreateMarket(c.Request.Context(), service.CreateMarketRequest{
		Creator:       userID,
		PoolAsset:     body.PoolAsset,
		PaymentAsset:  body.PaymentAsset,
		SeedPool:      seedPool,
		SeedPayment:   seedPayment,
		VolatilityPct: body.VolatilityPct,
		FeeBps:        body.FeeBps,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMarketExists):
			respondError(c, http.StatusConflict, "ERR_MARKET_EXISTS", err.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create market")
		}
		return
	}

	if h.hub != nil {
		h.hub.BroadcastNewMarket(ws.NewMarketMessage{
			Type:         ws.MsgTypeNewMarket,
			MarketID:     market.ID,
			PairKey:      market.PairKey,
			PoolAsset:    market.PoolAsset,
			PaymentAsset: market.PaymentAsset,
			Timestamp:    time.Now().UTC(),
		})
	}
	respondSuccess(c, http.StatusCreated, market)
}

// ListMarkets godoc
// GET /api/markets?page=1&limit=20
func (h *MarketHandler) ListMarkets(c *gin.Context) {
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	markets, total, err := h.factorySvc.AllMarkets(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list markets")
		return
	}
	respondList(c, markets, total, page, limit)
}

// GetByID godoc
// GET /api/markets/:id
func (h *MarketHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	market, err := h.factorySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrMarketNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch market")
		return
	}
	respondSuccess(c, http.StatusOK, market)
}

// GetByPair godoc
// GET /api/markets/pair?asset_a=WETH&asset_b=DAI
func (h *MarketHandler) GetByPair(c *gin.Context) {
	assetA := c.Query("asset_a")
	assetB := c.Query("asset_b")
	if assetA == "" || assetB == "" {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "asset_a and asset_b query parameters are required")
		return
	}

	market, err := h.factorySvc.GetMarket(c.Request.Context(), assetA, assetB)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrMarketNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch market")
		return
	}
	respondSuccess(c, http.StatusOK, market)
}

// GetSummary godoc
// GET /api/markets/:id/summary
func (h *MarketHandler) GetSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	market, err := h.factorySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrMarketNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch market")
		return
	}

	summary, err := h.factorySvc.Summary(c.Request.Context(), market)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not build market summary")
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}

// GetEvents godoc
// GET /api/markets/:id/events?page=1&limit=20
func (h *MarketHandler) GetEvents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	events, err := h.eventRepo.ListByMarket(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch events")
		return
	}
	respondList(c, events, len(events), page, limit)
}

// EventFeed godoc
// GET /api/events?after=0&limit=100
// Cross-market event feed for indexers. With after=N returns events with id
// greater than N oldest first; without it returns the newest events.
func (h *MarketHandler) EventFeed(c *gin.Context) {
	_, limit := parsePagination(c)

	afterRaw := c.Query("after")
	if afterRaw == "" {
		events, err := h.eventRepo.ListRecent(c.Request.Context(), limit)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch events")
			return
		}
		respondSuccess(c, http.StatusOK, events)
		return
	}

	after, err := strconv.ParseInt(afterRaw, 10, 64)
	if err != nil || after < 0 {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", "after must be a non-negative integer")
		return
	}
	events, err := h.eventRepo.ListSince(c.Request.Context(), after, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch events")
		return
	}
	respondSuccess(c, http.StatusOK, events)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return
}
