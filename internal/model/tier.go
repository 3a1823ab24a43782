package model

import "github.com/shopspring/decimal"

// AccessTier maps a minimum token balance to daily gift quotas.
type AccessTier struct {
	Level          int
	MinBalance     decimal.Decimal
	MaxDailyGifts  int
	MaxUniqueGifts int
}

// TierLadder is the ordered list of access tiers, ascending in both
// level and minimum balance. Level 0 (no tier) is implicit: a balance
// below the lowest threshold maps to it.
type TierLadder []AccessTier

// ByLevel returns the tier with the given level.
func (l TierLadder) ByLevel(level int) (AccessTier, bool) {
	for _, t := range l {
		if t.Level == level {
			return t, true
		}
	}
	return AccessTier{}, false
}

// Lowest returns the tier with the smallest minimum balance.
func (l TierLadder) Lowest() (AccessTier, bool) {
	if len(l) == 0 {
		return AccessTier{}, false
	}
	return l[0], true
}
