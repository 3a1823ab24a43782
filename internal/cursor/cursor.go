package cursor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store persists the stream position. Load reports ok=false when no
// cursor has ever been written. Save must complete before the engine
// processes the block it names, so a crash reprocesses rather than
// skips.
type Store interface {
	Load() (pos int64, ok bool, err error)
	Save(pos int64) error
}

// FileStore keeps the cursor as a single decimal number in a text file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

func (s *FileStore) Load() (int64, bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read cursor: %w", err)
	}
	pos, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse cursor %q: %w", string(data), err)
	}
	return pos, true, nil
}

func (s *FileStore) Save(pos int64) error {
	if err := os.WriteFile(s.Path, []byte(strconv.FormatInt(pos, 10)), 0644); err != nil {
		return fmt.Errorf("write cursor: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory cursor for tests.
type MemoryStore struct {
	Pos int64
	Set bool
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (int64, bool, error) {
	return s.Pos, s.Set, nil
}

func (s *MemoryStore) Save(pos int64) error {
	s.Pos = pos
	s.Set = true
	return nil
}
