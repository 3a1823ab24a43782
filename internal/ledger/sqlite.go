package ledger

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"TipSentinel/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the gift ledger to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so operator queries can read while the bot writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite ledger opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS gifts (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			date      TEXT NOT NULL,
			invoker   TEXT NOT NULL,
			recipient TEXT NOT NULL,
			block_num INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_day_invoker ON gifts(date, invoker)`,
		`CREATE INDEX IF NOT EXISTS idx_gifts_day_invoker_recipient ON gifts(date, invoker, recipient)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveGift(rec *model.GiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO gifts (date, invoker, recipient, block_num) VALUES (?,?,?,?)`,
		rec.Day, rec.Invoker, rec.Recipient, rec.BlockNum)
	return err
}

func (s *SQLiteStore) CountGifts(day, invoker string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT count(*) FROM gifts WHERE date = ? AND invoker = ?`,
		day, invoker).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CountGiftsUnique(day, invoker, recipient string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT count(*) FROM gifts WHERE date = ? AND invoker = ? AND recipient = ?`,
		day, invoker, recipient).Scan(&count)
	return count, err
}

func (s *SQLiteStore) SummarizeDay(day string) (*model.DailySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := &model.DailySummary{Day: day}
	err := s.db.QueryRow(`SELECT count(*), count(DISTINCT invoker), count(DISTINCT recipient)
		FROM gifts WHERE date = ?`, day).
		Scan(&summary.Gifts, &summary.Invokers, &summary.Recipients)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite ledger")
	return s.db.Close()
}
