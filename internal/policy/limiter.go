package policy

import (
	"fmt"

	"TipSentinel/internal/ledger"
	"TipSentinel/internal/model"

	"github.com/jonboulle/clockwork"
)

// RateLimiter evaluates per-tier daily caps against the gift ledger.
// Counts are read fresh from the ledger on every call; with the engine
// processing events strictly one at a time there are no concurrent
// writers, so read-then-decide is race-free.
type RateLimiter struct {
	Ledger ledger.Store
	Ladder model.TierLadder
	Clock  clockwork.Clock
}

func NewRateLimiter(store ledger.Store, ladder model.TierLadder, clock clockwork.Clock) *RateLimiter {
	return &RateLimiter{Ledger: store, Ladder: ladder, Clock: clock}
}

// Today returns the current UTC day bucket.
func (l *RateLimiter) Today() string {
	return l.Clock.Now().UTC().Format("2006-01-02")
}

// CanGift decides whether an invoker at the given level may gift the
// recipient today. Level 0 is always denied; the aggregate cap is
// checked before the unique-recipient cap.
func (l *RateLimiter) CanGift(invoker, recipient string, level int) (model.RejectReason, error) {
	if level == 0 {
		return model.RejectNoTier, nil
	}
	tier, ok := l.Ladder.ByLevel(level)
	if !ok {
		return model.RejectNone, fmt.Errorf("no tier configured for level %d", level)
	}
	today := l.Today()

	count, err := l.Ledger.CountGifts(today, invoker)
	if err != nil {
		return model.RejectNone, fmt.Errorf("count gifts: %w", err)
	}
	if count >= tier.MaxDailyGifts {
		return model.RejectDailyLimit, nil
	}

	unique, err := l.Ledger.CountGiftsUnique(today, invoker, recipient)
	if err != nil {
		return model.RejectNone, fmt.Errorf("count unique gifts: %w", err)
	}
	if unique >= tier.MaxUniqueGifts {
		return model.RejectUniqueLimit, nil
	}

	return model.RejectNone, nil
}
