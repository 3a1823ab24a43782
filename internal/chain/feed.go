package chain

import (
	"errors"

	"TipSentinel/internal/model"
)

// ErrNotFound is returned when a post has vanished between detection
// and lookup.
var ErrNotFound = errors.New("content not found")

// Reply is a direct reply to a post, as far as the bot cares about it.
type Reply struct {
	Author   string
	Permlink string
}

// Feed supplies the ordered, resumable sequence of comment events.
// Block numbers increase monotonically; the engine relies on that
// ordering and never re-sorts.
type Feed interface {
	HeadBlock() (int64, error)
	BlockComments(blockNum int64) ([]model.CommentEvent, error)
	Replies(author, permlink string) ([]Reply, error)
	Name() string
}

// ReplyPoster broadcasts a reply comment under the bot's account.
type ReplyPoster interface {
	PostReply(parentAuthor, parentPermlink, body string) error
}
