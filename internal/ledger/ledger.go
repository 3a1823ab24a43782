package ledger

import "TipSentinel/internal/model"

// Store is the append-only gift ledger. Gifts are never updated or
// deleted; the rate limiter's quota checks read counts fresh from here
// for every event.
type Store interface {
	SaveGift(rec *model.GiftRecord) error
	CountGifts(day, invoker string) (int, error)
	CountGiftsUnique(day, invoker, recipient string) (int, error)
	SummarizeDay(day string) (*model.DailySummary, error)
	Close() error
}
