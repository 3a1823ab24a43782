package chain

import (
	"sync"

	"TipSentinel/internal/model"
)

// MockFeed returns controllable fixed data for development and testing.
// Blocks map block numbers to the comment events they contain; Head is
// the current head block. SetErr makes HeadBlock fail, which lets tests
// drive the engine to its fatal-transport exit deterministically.
type MockFeed struct {
	mu     sync.Mutex
	Head   int64
	Blocks map[int64][]model.CommentEvent
	// ReplyLists maps "author/permlink" to existing direct replies.
	ReplyLists map[string][]Reply
	// Missing marks posts that should report ErrNotFound.
	Missing map[string]bool
	Err     error
}

func NewMockFeed() *MockFeed {
	return &MockFeed{
		Blocks:     make(map[int64][]model.CommentEvent),
		ReplyLists: make(map[string][]Reply),
		Missing:    make(map[string]bool),
	}
}

func (m *MockFeed) Name() string { return "mock" }

func (m *MockFeed) HeadBlock() (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Head, nil
}

func (m *MockFeed) BlockComments(blockNum int64) ([]model.CommentEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Blocks[blockNum], nil
}

func (m *MockFeed) Replies(author, permlink string) ([]Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := author + "/" + permlink
	if m.Missing[key] {
		return nil, ErrNotFound
	}
	return m.ReplyLists[key], nil
}

// AddReply records a reply against a post, as a real broadcast would.
func (m *MockFeed) AddReply(author, permlink string, reply Reply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := author + "/" + permlink
	m.ReplyLists[key] = append(m.ReplyLists[key], reply)
}

// SetErr makes subsequent HeadBlock calls fail.
func (m *MockFeed) SetErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
