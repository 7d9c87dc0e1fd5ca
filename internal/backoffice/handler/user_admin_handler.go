package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tulipfi/options/internal/config"
	"github.com/tulipfi/options/internal/domain"
	"github.com/tulipfi/options/internal/repository"
	"github.com/tulipfi/options/internal/service"
)

// UserAdminHandler serves /admin/users endpoints.
type UserAdminHandler struct {
	authSvc    *service.AuthService
	userRepo   *repository.UserRepository
	ledgerRepo *repository.LedgerRepository
	cfg        *config.Config
}

// NewUserAdminHandler creates a UserAdminHandler.
func NewUserAdminHandler(
	authSvc *service.AuthService,
	userRepo *repository.UserRepository,
	ledgerRepo *repository.LedgerRepository,
	cfg *config.Config,
) *UserAdminHandler {
	return &UserAdminHandler{authSvc: authSvc, userRepo: userRepo, ledgerRepo: ledgerRepo, cfg: cfg}
}

// List godoc
// GET /admin/users?page=1&limit=50
// With ?username= set, returns the single exact match instead of a page.
func (h *UserAdminHandler) List(c *gin.Context) {
	if username := c.Query("username"); username != "" {
		user, err := h.userRepo.GetByUsername(c.Request.Context(), username)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
				return
			}
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
			return
		}
		respondList(c, []*domain.User{user}, 1, 1, 1)
		return
	}

	page, limit := adminPagination(c)
	offset := (page - 1) * limit

	users, total, err := h.userRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondList(c, users, total, page, limit)
}

// Detail godoc
// GET /admin/users/:id
func (h *UserAdminHandler) Detail(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}

	ctx := c.Request.Context()
	user, err := h.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "ERR_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}

	balances, _ := h.ledgerRepo.Balances(ctx, id)
	entries, _ := h.ledgerRepo.EntriesByAccount(ctx, id, 50, 0)

	respondSuccess(c, http.StatusOK, gin.H{
		"user":     user,
		"balances": balances,
		"ledger":   entries,
	})
}

// Suspend godoc
// POST /admin/users/:id/suspend
func (h *UserAdminHandler) Suspend(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	if err = h.userRepo.SetActive(c.Request.Context(), id, false); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "is_active": false})
}

// Activate godoc
// POST /admin/users/:id/activate
func (h *UserAdminHandler) Activate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	if err = h.userRepo.SetActive(c.Request.Context(), id, true); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "is_active": true})
}

// Fund godoc
// POST /admin/users/:id/fund
// Body: {"asset": "DAI", "amount": "5000"}
// Credits the account from the treasury and writes a ledger entry.
func (h *UserAdminHandler) Fund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Asset  string `json:"asset"  binding:"required"`
		Amount string `json:"amount" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "amount must be a positive decimal string")
		return
	}

	if err = h.authSvc.Fund(c.Request.Context(), id, body.Asset, amount); err != nil {
		if domain.IsValidation(err) {
			respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{
		"user_id": id,
		"asset":   body.Asset,
		"amount":  amount,
	})
}

// SetRole godoc
// POST /admin/users/:id/role
// Body: {"role": "finance"}
func (h *UserAdminHandler) SetRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ID", "invalid user id")
		return
	}
	var body struct {
		Role string `json:"role" binding:"required"`
	}
	if err = c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}
	role := domain.UserRole(body.Role)
	validRoles := map[domain.UserRole]bool{
		domain.RoleUser:     true,
		domain.RoleAdmin:    true,
		domain.RoleFinance:  true,
		domain.RoleOps:      true,
		domain.RoleReadOnly: true,
	}
	if !validRoles[role] {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_ROLE", "unknown role")
		return
	}
	if err = h.userRepo.UpdateRole(c.Request.Context(), id, role); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"user_id": id, "role": role})
}
