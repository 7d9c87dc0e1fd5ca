package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/tulipfi/options/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Lifecycle error mapping ───────────────────────────────────────────────────

// Services wrap their sentinels with operation context, so the handler must
// match through the wrap chain, not by identity.
func TestRespondOptionError_WrappedSentinels(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"insufficient funds", fmt.Errorf("option_service.Create: %w", domain.ErrInsufficientFunds), http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE"},
		{"wrong holder", fmt.Errorf("option_service.Exercise: %w", domain.ErrWrongHolder), http.StatusForbidden, "ERR_FORBIDDEN"},
		{"not activated", fmt.Errorf("option_service.Exercise: %w", domain.ErrNotActivatedYet), http.StatusConflict, "ERR_NOT_ACTIVATED"},
		{"expired", fmt.Errorf("option_service.Exercise: %w", domain.ErrOptionExpired), http.StatusConflict, "ERR_OPTION_EXPIRED"},
		{"oracle not ready", fmt.Errorf("oracle_service.PriceFor: %w", domain.ErrOracleNotActivated), http.StatusConflict, "ERR_ORACLE_NOT_READY"},
		{"no price data", fmt.Errorf("oracle_service.PriceFor: %w", domain.ErrNoPriceData), http.StatusConflict, "ERR_NO_PRICE_DATA"},
		{"missing pair surfaces as not found", fmt.Errorf("oracle_service.PriceFor: %w", domain.ErrPairNotFound), http.StatusNotFound, "ERR_NOT_FOUND"},
		{"bare sentinel still maps", domain.ErrInsufficientFunds, http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE"},
		{"unknown error falls through", fmt.Errorf("pq: connection reset"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondOptionError(c, tc.err, "fallback")

			if w.Code != tc.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tc.wantCode) {
				t.Errorf("body %q missing code %q", w.Body.String(), tc.wantCode)
			}
		})
	}
}

// ── Batch unlock input validation ─────────────────────────────────────────────

func TestUnlockBatch_RejectsBadInput(t *testing.T) {
	h := NewOptionHandler(nil) // validation failures never reach the service

	cases := []struct {
		name     string
		marketID string
		body     string
	}{
		{"bad market id", "not-a-uuid", `{"ids":[1]}`},
		{"empty ids", "7e6f2f43-34a5-4f2f-9d3e-111111111111", `{"ids":[]}`},
		{"missing ids", "7e6f2f43-34a5-4f2f-9d3e-111111111111", `{}`},
		{"non-positive id", "7e6f2f43-34a5-4f2f-9d3e-111111111111", `{"ids":[3,0]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			c.Request.Header.Set("Content-Type", "application/json")
			c.Params = gin.Params{{Key: "id", Value: tc.marketID}}

			h.UnlockBatch(c)

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}
