package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
	"github.com/tulipfi/options/internal/ws"
)

// DashboardHandler serves the /admin/dashboard endpoint.
type DashboardHandler struct {
	factorySvc *service.FactoryService
	optionRepo *repository.OptionRepository
	ledgerRepo *repository.LedgerRepository
	hub        *ws.Hub
	cfg        *config.Config
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(
	factorySvc *service.FactoryService,
	optionRepo *repository.OptionRepository,
	ledgerRepo *repository.LedgerRepository,
	hub *ws.Hub,
	cfg *config.Config,
) *DashboardHandler {
	return &DashboardHandler{
		factorySvc: factorySvc,
		optionRepo: optionRepo,
		ledgerRepo: ledgerRepo,
		hub:        hub,
		cfg:        cfg,
	}
}

// Dashboard godoc
// GET /admin/dashboard
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := time.Now().UTC()

	// ── Market overview ──────────────────────────────────────────────────────
	marketCount, _ := h.factorySvc.AllMarketsLength(ctx)

	markets, _, err := h.factorySvc.AllMarkets(ctx, 50, 0)
	summaries := make([]gin.H, 0, len(markets))
	if err == nil {
		for _, m := range markets {
			s, err := h.factorySvc.Summary(ctx, m)
			if err != nil {
				continue
			}
			summaries = append(summaries, gin.H{
				"id":           s.ID,
				"pair_key":     s.PairKey,
				"pool_reserve": s.PoolReserve,
				"total_shares": s.TotalShares,
				"oracle_price": s.OraclePrice,
				"oracle_live":  m.OracleActivated(now),
			})
		}
	}

	// ── Expired options awaiting unlock ──────────────────────────────────────
	expired, _ := h.optionRepo.GetExpiredActive(ctx, now, 500)

	// ── Treasury holdings ────────────────────────────────────────────────────
	treasury, _ := h.ledgerRepo.TreasurySummary(ctx)

	// ── WS connections ────────────────────────────────────────────────────────
	var wsConnections int
	if h.hub != nil {
		wsConnections = h.hub.ConnectedCount()
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"timestamp":       now,
		"market_count":    marketCount,
		"markets":         summaries,
		"expired_pending": len(expired),
		"treasury":        treasury,
		"ws_connections":  wsConnections,
	})
}
