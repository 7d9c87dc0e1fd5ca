package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// UserRole
// ──────────────────────────────────────────────────────────────────────────────

// UserRole controls access levels in the back-office.
type UserRole string

const (
	RoleUser     UserRole = "user"     // standard taker / liquidity provider
	RoleAdmin    UserRole = "admin"    // full back-office access
	RoleOps      UserRole = "ops"      // operations: market management
	RoleFinance  UserRole = "finance"  // treasury reports, account funding
	RoleReadOnly UserRole = "readonly" // read-only back-office access
)

// CanAccessBackoffice returns true for all non-standard roles.
func (r UserRole) CanAccessBackoffice() bool {
	return r != RoleUser
}

// IsAdmin returns true only for the full admin role.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// ──────────────────────────────────────────────────────────────────────────────
// User
// ──────────────────────────────────────────────────────────────────────────────

// User is the domain entity for registered accounts. The same account can act
// as a liquidity provider and as an option taker.
type User struct {
	ID           uuid.UUID `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	Username     string    `json:"username"   db:"username"`
	PasswordHash string    `json:"-"          db:"password_hash"` // never serialised
	Role         UserRole  `json:"role"       db:"role"`
	IsActive     bool      `json:"is_active"  db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// PublicProfile returns a user view safe to expose via API (no password hash).
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Asset ledger
// ──────────────────────────────────────────────────────────────────────────────

// System account ids for ledger entries that do not belong to a user. The
// pool and AMM accounts are derived per market; these two are global.
var (
	// TreasuryAccount receives platform fees.
	TreasuryAccount = uuid.MustParse("00000000-0000-0000-0000-000000000001")
)

// Balance is one account's holding of one asset. All amounts are whole units.
type Balance struct {
	AccountID uuid.UUID       `json:"account_id" db:"account_id"`
	Asset     string          `json:"asset"      db:"asset"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// LedgerEntryType enumerates ledger movements for auditing.
type LedgerEntryType string

const (
	LedgerDeposit     LedgerEntryType = "pool_deposit"
	LedgerWithdraw    LedgerEntryType = "pool_withdraw"
	LedgerPremium     LedgerEntryType = "premium"
	LedgerPlatformFee LedgerEntryType = "platform_fee"
	LedgerSwapIn      LedgerEntryType = "swap_in"
	LedgerSwapOut     LedgerEntryType = "swap_out"
	LedgerPayout      LedgerEntryType = "payout"
	LedgerFunding     LedgerEntryType = "funding" // back-office account credit
)

// LedgerEntry is an immutable audit record for every balance movement.
type LedgerEntry struct {
	ID        int64           `json:"id"         db:"id"`
	Type      LedgerEntryType `json:"type"       db:"type"`
	Asset     string          `json:"asset"      db:"asset"`
	From      uuid.UUID       `json:"from"       db:"from_account"`
	To        uuid.UUID       `json:"to"         db:"to_account"`
	Amount    decimal.Decimal `json:"amount"     db:"amount"`
	RefOption *int64          `json:"ref_option" db:"ref_option"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
