package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Liquidity pool errors
var (
	// ErrInvalidAmount is returned when a deposit or withdrawal amount is zero
	// or negative.
	ErrInvalidAmount = errors.New("amount must be a positive whole number of units")

	// ErrInsufficientShares is returned when a withdrawal would burn more
	// shares than the caller holds.
	ErrInsufficientShares = errors.New("insufficient pool shares")

	// ErrInsufficientFunds is returned when an account balance cannot cover a
	// transfer, premium payment, or swap input.
	ErrInsufficientFunds = errors.New("insufficient balance")

	// ErrPoolNotFound is returned when no liquidity pool matches the given id.
	ErrPoolNotFound = errors.New("liquidity pool not found")
)

// Option lifecycle errors
var (
	// ErrDurationTooShort is returned when an option's duration is below the
	// configured minimum.
	ErrDurationTooShort = errors.New("duration is too short")

	// ErrDurationTooLong is returned when an option's duration exceeds the
	// configured maximum.
	ErrDurationTooLong = errors.New("duration is too long")

	// ErrAmountTooSmall is returned when the requested option would yield a
	// zero premium or zero payout after fixed-point flooring.
	ErrAmountTooSmall = errors.New("amount is too small")

	// ErrOptionNotFound is returned when no option matches the given id.
	ErrOptionNotFound = errors.New("option not found")

	// ErrNotActivatedYet is returned when exercise is attempted before the
	// option's start time.
	ErrNotActivatedYet = errors.New("option has not been activated yet")

	// ErrOptionExpired is returned when exercise is attempted at or after the
	// option's expiration time.
	ErrOptionExpired = errors.New("option has expired")

	// ErrOptionNotActive is returned when a transition is attempted on an
	// option already in a terminal state.
	ErrOptionNotActive = errors.New("option is not active")

	// ErrWrongHolder is returned when anyone but the holder tries to exercise.
	ErrWrongHolder = errors.New("caller is not the option holder")

	// ErrOptionNotExpired is returned when unlock is attempted before the
	// option's expiration time. For batch unlocks a single unexpired id fails
	// the whole batch.
	ErrOptionNotExpired = errors.New("option has not expired yet")
)

// Oracle errors
var (
	// ErrOracleNotActivated is returned when consult is called before the
	// oracle's activation timestamp.
	ErrOracleNotActivated = errors.New("price oracle is not activated yet")

	// ErrNoPriceData is returned when no oracle update has been recorded since
	// activation.
	ErrNoPriceData = errors.New("no price data recorded since oracle activation")
)

// Market / factory errors
var (
	// ErrMarketExists is returned when a market already exists for the
	// unordered asset pair.
	ErrMarketExists = errors.New("market already exists for this asset pair")

	// ErrMarketNotFound is returned when no market matches the given criteria.
	ErrMarketNotFound = errors.New("market not found")

	// ErrPairNotFound is returned when no AMM pair exists for the asset pair.
	ErrPairNotFound = errors.New("trading pair not found")

	// ErrSameAsset is returned when a market is requested for identical assets.
	ErrSameAsset = errors.New("pool and payment asset must differ")
)

// User / account errors
var (
	// ErrUserNotFound is returned when no account matches the given criteria.
	ErrUserNotFound = errors.New("account not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended account attempts an action.
	ErrUserInactive = errors.New("account is inactive")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated account lacks the
	// required role.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a JWT has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrOptionNotFound,
	ErrMarketNotFound,
	ErrPoolNotFound,
	ErrPairNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for errors that represent a state conflict (e.g.
// duplicate market creation or a transition on a terminal option).
func IsConflict(err error) bool {
	conflictErrors := []error{
		ErrMarketExists,
		ErrOptionNotActive,
		ErrOptionNotExpired,
		ErrEmailTaken,
		ErrUsernameTaken,
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation returns true for errors caused by bad caller input rather than
// system state; these map to HTTP 400.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrInvalidAmount,
		ErrDurationTooShort,
		ErrDurationTooLong,
		ErrAmountTooSmall,
		ErrSameAsset,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
