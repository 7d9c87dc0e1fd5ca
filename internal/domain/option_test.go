package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tulipfi/options/internal/domain"
)

func newActiveOption(holder uuid.UUID, start, expiry time.Time) *domain.Option {
	return &domain.Option{
		ID:             1,
		MarketID:       uuid.New(),
		Holder:         holder,
		Type:           domain.OptionPut,
		State:          domain.OptionActive,
		StartTime:      start,
		ExpirationTime: expiry,
	}
}

// ── Exercise preconditions ────────────────────────────────────────────────────

func TestOption_CanExercise_BeforeActivation(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()
	o := newActiveOption(holder, now.Add(15*time.Minute), now.Add(28*24*time.Hour))

	if err := o.CanExercise(holder, now); err != domain.ErrNotActivatedYet {
		t.Errorf("CanExercise before start = %v, want ErrNotActivatedYet", err)
	}
}

func TestOption_CanExercise_WrongHolder(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()
	o := newActiveOption(holder, now.Add(-time.Hour), now.Add(time.Hour))

	if err := o.CanExercise(uuid.New(), now); err != domain.ErrWrongHolder {
		t.Errorf("CanExercise by stranger = %v, want ErrWrongHolder", err)
	}
}

func TestOption_CanExercise_AfterExpiry(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()
	o := newActiveOption(holder, now.Add(-2*time.Hour), now.Add(-time.Minute))

	if err := o.CanExercise(holder, now); err != domain.ErrOptionExpired {
		t.Errorf("CanExercise after expiry = %v, want ErrOptionExpired", err)
	}

	// Exactly at expiration the option is already expired.
	if err := o.CanExercise(holder, o.ExpirationTime); err != domain.ErrOptionExpired {
		t.Errorf("CanExercise at expirationTime = %v, want ErrOptionExpired", err)
	}
}

func TestOption_CanExercise_TerminalStates(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()

	for _, state := range []domain.OptionState{domain.OptionExercised, domain.OptionExpired} {
		o := newActiveOption(holder, now.Add(-time.Hour), now.Add(time.Hour))
		o.State = state
		if err := o.CanExercise(holder, now); err != domain.ErrOptionNotActive {
			t.Errorf("CanExercise(%s) = %v, want ErrOptionNotActive", state, err)
		}
	}
}

func TestOption_CanExercise_Valid(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()
	o := newActiveOption(holder, now.Add(-time.Hour), now.Add(time.Hour))

	if err := o.CanExercise(holder, now); err != nil {
		t.Errorf("CanExercise in window = %v, want nil", err)
	}
	// Exactly at start time the option is exercisable.
	if err := o.CanExercise(holder, o.StartTime); err != nil {
		t.Errorf("CanExercise at startTime = %v, want nil", err)
	}
}

// ── Unlock preconditions ──────────────────────────────────────────────────────

func TestOption_CanUnlock(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()

	live := newActiveOption(holder, now.Add(-2*time.Hour), now.Add(time.Hour))
	if err := live.CanUnlock(now); err != domain.ErrOptionNotExpired {
		t.Errorf("CanUnlock(live) = %v, want ErrOptionNotExpired", err)
	}

	expired := newActiveOption(holder, now.Add(-48*time.Hour), now.Add(-time.Hour))
	if err := expired.CanUnlock(now); err != nil {
		t.Errorf("CanUnlock(expired) = %v, want nil", err)
	}

	settled := newActiveOption(holder, now.Add(-48*time.Hour), now.Add(-time.Hour))
	settled.State = domain.OptionExercised
	if err := settled.CanUnlock(now); err != domain.ErrOptionNotActive {
		t.Errorf("CanUnlock(exercised) = %v, want ErrOptionNotActive", err)
	}
}

func TestValidateUnlockBatch_AllOrNothing(t *testing.T) {
	holder := uuid.New()
	now := time.Now().UTC()

	expired := newActiveOption(holder, now.Add(-48*time.Hour), now.Add(-time.Hour))
	live := newActiveOption(holder, now.Add(-2*time.Hour), now.Add(time.Hour))

	err := domain.ValidateUnlockBatch([]*domain.Option{expired, live}, now)
	if err != domain.ErrOptionNotExpired {
		t.Fatalf("ValidateUnlockBatch(mixed) = %v, want ErrOptionNotExpired", err)
	}

	// Neither option changed state during validation.
	if expired.State != domain.OptionActive || live.State != domain.OptionActive {
		t.Error("batch validation must not mutate option state")
	}

	if err := domain.ValidateUnlockBatch([]*domain.Option{expired}, now); err != nil {
		t.Errorf("ValidateUnlockBatch(all expired) = %v, want nil", err)
	}
}

// ── Duration bounds ───────────────────────────────────────────────────────────

func TestValidateDuration(t *testing.T) {
	min := 24 * time.Hour
	max := 8 * 7 * 24 * time.Hour

	if err := domain.ValidateDuration(min-time.Second, min, max); err != domain.ErrDurationTooShort {
		t.Errorf("one second under minimum = %v, want ErrDurationTooShort", err)
	}
	if err := domain.ValidateDuration(max+time.Second, min, max); err != domain.ErrDurationTooLong {
		t.Errorf("one second over maximum = %v, want ErrDurationTooLong", err)
	}
	if err := domain.ValidateDuration(4*7*24*time.Hour, min, max); err != nil {
		t.Errorf("valid duration = %v, want nil", err)
	}
	// Bounds are inclusive.
	if err := domain.ValidateDuration(min, min, max); err != nil {
		t.Errorf("exact minimum = %v, want nil", err)
	}
	if err := domain.ValidateDuration(max, min, max); err != nil {
		t.Errorf("exact maximum = %v, want nil", err)
	}
}

// ── Pair keys ─────────────────────────────────────────────────────────────────

func TestPairKeyFor_Unordered(t *testing.T) {
	ab := domain.PairKeyFor("WETH", "DAI")
	ba := domain.PairKeyFor("DAI", "WETH")
	if ab != ba {
		t.Errorf("pair key must be order independent: %q vs %q", ab, ba)
	}
	if ab != "DAI/WETH" {
		t.Errorf("pair key = %q, want %q", ab, "DAI/WETH")
	}

	if domain.PairKeyFor(" weth ", "dai") != "DAI/WETH" {
		t.Error("pair key must normalise case and whitespace")
	}
}
