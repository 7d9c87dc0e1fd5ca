package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
)

// FinanceHandler serves /admin/finance endpoints.
type FinanceHandler struct {
	ledgerRepo *repository.LedgerRepository
	poolSvc    *service.PoolService
	factorySvc *service.FactoryService
	eventRepo  *repository.EventRepository
	cfg        *config.Config
}

// NewFinanceHandler creates a FinanceHandler.
func NewFinanceHandler(
	ledgerRepo *repository.LedgerRepository,
	poolSvc *service.PoolService,
	factorySvc *service.FactoryService,
	eventRepo *repository.EventRepository,
	cfg *config.Config,
) *FinanceHandler {
	return &FinanceHandler{
		ledgerRepo: ledgerRepo,
		poolSvc:    poolSvc,
		factorySvc: factorySvc,
		eventRepo:  eventRepo,
		cfg:        cfg,
	}
}

// Treasury godoc
// GET /admin/finance/treasury
// Platform fee income per asset.
func (h *FinanceHandler) Treasury(c *gin.Context) {
	holdings, err := h.ledgerRepo.TreasurySummary(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"account":  domain.TreasuryAccount,
		"holdings": holdings,
	})
}

// Report godoc
// GET /admin/finance/report
// Aggregate view across every market: pool reserves, shares and treasury.
func (h *FinanceHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()

	markets, _, err := h.factorySvc.AllMarkets(ctx, 500, 0)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	pools := make([]gin.H, 0, len(markets))
	for _, m := range markets {
		pool, err := h.poolSvc.Get(ctx, m.PoolID)
		if err != nil {
			continue
		}
		pools = append(pools, gin.H{
			"market_id":    m.ID,
			"pair_key":     m.PairKey,
			"asset":        pool.Asset,
			"reserve":      pool.Reserve,
			"total_shares": pool.TotalShares,
		})
	}

	treasury, _ := h.ledgerRepo.TreasurySummary(ctx)

	respondSuccess(c, http.StatusOK, gin.H{
		"generated_at": time.Now().UTC(),
		"pools":        pools,
		"treasury":     treasury,
	})
}

// AccountLedger godoc
// GET /admin/finance/accounts/:id/ledger?page=1&limit=50
func (h *FinanceHandler) AccountLedger(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid account id")
		return
	}
	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	entries, err := h.ledgerRepo.EntriesByAccount(c.Request.Context(), id, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, entries, len(entries), page, limit)
}

// Events godoc
// GET /admin/finance/events?limit=100
// Recent settlement events across all markets.
func (h *FinanceHandler) Events(c *gin.Context) {
	_, limit := adminPagination(c)

	events, err := h.eventRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, events)
}
