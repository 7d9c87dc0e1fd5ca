package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/api/middleware"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/service"
)

// PoolHandler serves liquidity pool deposit, withdrawal and share endpoints.
type PoolHandler struct {
	poolSvc *service.PoolService
}

// NewPoolHandler creates a PoolHandler.
func NewPoolHandler(poolSvc *service.PoolService) *PoolHandler {
	return &PoolHandler{poolSvc: poolSvc}
}

// Deposit godoc
// POST /api/pools/:id/deposit [JWT]
// Body: {"amount":"250"}
func (h *PoolHandler) Deposit(c *gin.Context) {
	userID := middleware.GetUserID(c)

	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return
	}

	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	minted, err := h.poolSvc.Deposit(c.Request.Context(), poolID, userID, amount)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_POOL_NOT_FOUND", domain.ErrPoolNotFound.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not process deposit")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"pool_id":       poolID,
		"deposited":     amount,
		"minted_shares": minted,
	})
}

// Withdraw godoc
// POST /api/pools/:id/withdraw [JWT]
// Body: {"amount":"100"}
func (h *PoolHandler) Withdraw(c *gin.Context) {
	userID := middleware.GetUserID(c)

	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return
	}

	amount, ok := bindAmount(c)
	if !ok {
		return
	}

	burned, err := h.poolSvc.Withdraw(c.Request.Context(), poolID, userID, amount)
	if err != nil {
		switch {
		case domain.IsNotFound(err):
			respondError(c, http.StatusNotFound, "ERR_POOL_NOT_FOUND", domain.ErrPoolNotFound.Error())
		case errors.Is(err, domain.ErrInsufficientShares):
			respondError(c, http.StatusConflict, "ERR_INSUFFICIENT_SHARES", err.Error())
		case errors.Is(err, domain.ErrInsufficientFunds):
			respondError(c, http.StatusConflict, "ERR_RESERVE_LOCKED", err.Error())
		case domain.IsValidation(err):
			respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", err.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not process withdrawal")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"pool_id":       poolID,
		"withdrawn":     amount,
		"burned_shares": burned,
	})
}

// GetPool godoc
// GET /api/pools/:id
func (h *PoolHandler) GetPool(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return
	}

	pool, err := h.poolSvc.Get(c.Request.Context(), poolID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_POOL_NOT_FOUND", domain.ErrPoolNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch pool")
		return
	}
	respondSuccess(c, http.StatusOK, pool)
}

// MyShares godoc
// GET /api/pools/:id/shares [JWT]
func (h *PoolHandler) MyShares(c *gin.Context) {
	userID := middleware.GetUserID(c)

	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return
	}

	shares, pool, err := h.poolSvc.SharesOf(c.Request.Context(), poolID, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_POOL_NOT_FOUND", domain.ErrPoolNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch shares")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"pool_id":      poolID,
		"shares":       shares,
		"total_shares": pool.TotalShares,
		"reserve":      pool.Reserve,
		"locked":       pool.Locked,
		"available":    pool.Available(),
	})
}

// Holders godoc
// GET /api/pools/:id/holders
func (h *PoolHandler) Holders(c *gin.Context) {
	poolID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid pool id")
		return
	}

	holders, err := h.poolSvc.Holders(c.Request.Context(), poolID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch holders")
		return
	}
	respondSuccess(c, http.StatusOK, holders)
}

// bindAmount reads {"amount":"..."} from the body and rejects non-positive
// values before the service layer is reached.
func bindAmount(c *gin.Context) (decimal.Decimal, bool) {
	var body struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return decimal.Zero, false
	}
	return amount, true
}
