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
	"github.com/tulipfi/options/internal/service"
)

// OptionHandler serves option writing, exercise and unlock endpoints.
type OptionHandler struct {
	optionSvc *service.OptionService
}

// NewOptionHandler creates an OptionHandler.
func NewOptionHandler(optionSvc *service.OptionService) *OptionHandler {
	return &OptionHandler{optionSvc: optionSvc}
}

// optionBody is the shared request shape for Create and Estimate.
type optionBody struct {
	Type            string `json:"type"             binding:"required"`
	Amount          string `json:"amount"           binding:"required"`
	DurationSeconds int64  `json:"duration_seconds" binding:"required"`
	StrikePrice     string `json:"strike_price"`
}

// parse validates the body fields and converts them to domain values.
func (b *optionBody) parse(c *gin.Context) (domain.OptionType, decimal.Decimal, *decimal.Decimal, time.Duration, bool) {
	typ := domain.OptionType(b.Type)
	if !typ.IsValid() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TYPE", "type must be CALL or PUT")
		return "", decimal.Zero, nil, 0, false
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return "", decimal.Zero, nil, 0, false
	}
	var strike *decimal.Decimal
	if b.StrikePrice != "" {
		s, err := decimal.NewFromString(b.StrikePrice)
		if err != nil || !s.IsPositive() {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_STRIKE", "strike_price must be a positive decimal string")
			return "", decimal.Zero, nil, 0, false
		}
		strike = &s
	}
	duration := time.Duration(b.DurationSeconds) * time.Second
	return typ, amount, strike, duration, true
}

// CreateOption godoc
// POST /api/markets/:id/options [JWT]
// Body: {"type":"CALL","amount":"2","duration_seconds":86400,"strike_price":"200"}
func (h *OptionHandler) CreateOption(c *gin.Context) {
	userID := middleware.GetUserID(c)

	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	var body optionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	typ, amount, strike, duration, ok := body.parse(c)
	if !ok {
		return
	}

	option, err := h.optionSvc.Create(c.Request.Context(), domain.CreateOptionRequest{
		Holder:      userID,
		MarketID:    marketID,
		Type:        typ,
		Duration:    duration,
		Amount:      amount,
		StrikePrice: strike,
	})
	if err != nil {
		respondOptionError(c, err, "could not create option")
		return
	}
	respondSuccess(c, http.StatusCreated, option.ToResponse())
}

// Estimate godoc
// POST /api/markets/:id/options/estimate
// Same body as CreateOption; returns the premium and fee without writing.
func (h *OptionHandler) Estimate(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	var body optionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	typ, amount, strike, duration, ok := body.parse(c)
	if !ok {
		return
	}

	quote, err := h.optionSvc.Estimate(c.Request.Context(), marketID, typ, amount, strike, duration)
	if err != nil {
		respondOptionError(c, err, "could not estimate option")
		return
	}
	respondSuccess(c, http.StatusOK, quote)
}

// Exercise godoc
// POST /api/markets/:id/options/:optionId/exercise [JWT]
func (h *OptionHandler) Exercise(c *gin.Context) {
	userID := middleware.GetUserID(c)

	marketID, optionID, ok := parseOptionPath(c)
	if !ok {
		return
	}

	option, err := h.optionSvc.Exercise(c.Request.Context(), marketID, optionID, userID)
	if err != nil {
		respondOptionError(c, err, "could not exercise option")
		return
	}
	respondSuccess(c, http.StatusOK, option.ToResponse())
}

// Unlock godoc
// POST /api/markets/:id/options/:optionId/unlock [JWT]
// Any account may unlock an expired option to release pool collateral.
func (h *OptionHandler) Unlock(c *gin.Context) {
	marketID, optionID, ok := parseOptionPath(c)
	if !ok {
		return
	}

	if err := h.optionSvc.Unlock(c.Request.Context(), marketID, optionID); err != nil {
		respondOptionError(c, err, "could not unlock option")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"market_id": marketID,
		"option_id": optionID,
		"state":     domain.OptionExpired,
	})
}

// UnlockBatch godoc
// POST /api/markets/:id/options/unlock [JWT]
// Body: {"ids":[3,4,7]}
// Expires the listed options in one transaction; all must be unlockable or
// none are touched.
func (h *OptionHandler) UnlockBatch(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}

	var body struct {
		IDs []int64 `json:"ids" binding:"required,min=1,max=100"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	for _, id := range body.IDs {
		if id < 1 {
			respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid option id")
			return
		}
	}

	if err := h.optionSvc.UnlockMany(c.Request.Context(), marketID, body.IDs); err != nil {
		respondOptionError(c, err, "could not unlock options")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"market_id": marketID,
		"unlocked":  body.IDs,
		"state":     domain.OptionExpired,
	})
}

// GetOption godoc
// GET /api/markets/:id/options/:optionId
func (h *OptionHandler) GetOption(c *gin.Context) {
	marketID, optionID, ok := parseOptionPath(c)
	if !ok {
		return
	}

	option, err := h.optionSvc.Get(c.Request.Context(), marketID, optionID)
	if err != nil {
		if domain.IsNotFound(err) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", domain.ErrOptionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch option")
		return
	}
	respondSuccess(c, http.StatusOK, option.ToResponse())
}

// ListByMarket godoc
// GET /api/markets/:id/options?state=active&page=1&limit=20
func (h *OptionHandler) ListByMarket(c *gin.Context) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return
	}
	state := c.Query("state")
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	options, total, err := h.optionSvc.ListByMarket(c.Request.Context(), marketID, state, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list options")
		return
	}
	respondList(c, toResponses(options), total, page, limit)
}

// MyOptions godoc
// GET /api/options/my?page=1&limit=20 [JWT]
func (h *OptionHandler) MyOptions(c *gin.Context) {
	userID := middleware.GetUserID(c)
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	options, total, err := h.optionSvc.ListByHolder(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list options")
		return
	}
	respondList(c, toResponses(options), total, page, limit)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func parseOptionPath(c *gin.Context) (uuid.UUID, int64, bool) {
	marketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid market id")
		return uuid.Nil, 0, false
	}
	optionID, err := strconv.ParseInt(c.Param("optionId"), 10, 64)
	if err != nil || optionID < 1 {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid option id")
		return uuid.Nil, 0, false
	}
	return marketID, optionID, true
}

func toResponses(options []*domain.Option) []domain.OptionResponse {
	out := make([]domain.OptionResponse, 0, len(options))
	for _, o := range options {
		out = append(out, o.ToResponse())
	}
	return out
}

// respondOptionError translates option lifecycle errors to HTTP statuses.
// Services wrap sentinels with context, so matching goes through errors.Is.
func respondOptionError(c *gin.Context, err error, fallback string) {
	switch {
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondError(c, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE", err.Error())
	case errors.Is(err, domain.ErrWrongHolder):
		respondError(c, http.StatusForbidden, "ERR_FORBIDDEN", err.Error())
	case errors.Is(err, domain.ErrNotActivatedYet):
		respondError(c, http.StatusConflict, "ERR_NOT_ACTIVATED", err.Error())
	case errors.Is(err, domain.ErrOptionExpired):
		respondError(c, http.StatusConflict, "ERR_OPTION_EXPIRED", err.Error())
	case errors.Is(err, domain.ErrOracleNotActivated):
		respondError(c, http.StatusConflict, "ERR_ORACLE_NOT_READY", err.Error())
	case errors.Is(err, domain.ErrNoPriceData):
		respondError(c, http.StatusConflict, "ERR_NO_PRICE_DATA", err.Error())
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "ERR_CONFLICT", err.Error())
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", fallback)
	}
}
