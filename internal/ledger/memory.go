package ledger

import (
	"sync"

	"TipSentinel/internal/model"
)

// MemoryStore is an in-memory ledger used in tests and when SQLite is
// not configured. Unlike a plain no-op it still answers quota queries,
// so dry runs enforce the same limits a real deployment would.
type MemoryStore struct {
	mu    sync.Mutex
	gifts []model.GiftRecord
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) SaveGift(rec *model.GiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gifts = append(s.gifts, *rec)
	return nil
}

func (s *MemoryStore) CountGifts(day, invoker string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, g := range s.gifts {
		if g.Day == day && g.Invoker == invoker {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) CountGiftsUnique(day, invoker, recipient string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, g := range s.gifts {
		if g.Day == day && g.Invoker == invoker && g.Recipient == recipient {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) SummarizeDay(day string) (*model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary := &model.DailySummary{Day: day}
	invokers := make(map[string]bool)
	recipients := make(map[string]bool)
	for _, g := range s.gifts {
		if g.Day != day {
			continue
		}
		summary.Gifts++
		invokers[g.Invoker] = true
		recipients[g.Recipient] = true
	}
	summary.Invokers = len(invokers)
	summary.Recipients = len(recipients)
	return summary, nil
}

// Gifts returns a copy of all recorded gifts, for test assertions.
func (s *MemoryStore) Gifts() []model.GiftRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.GiftRecord, len(s.gifts))
	copy(out, s.gifts)
	return out
}

func (s *MemoryStore) Close() error { return nil }
