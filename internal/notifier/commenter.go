package notifier

import (
	"context"
	"fmt"
	"log"
	"time"

	"TipSentinel/internal/chain"
	"TipSentinel/internal/model"

	"github.com/jonboulle/clockwork"
)

// Commenter posts notification replies on chain. With Enabled false it
// logs the would-be reply instead (dry-run mode).
type Commenter struct {
	Poster  chain.ReplyPoster
	Enabled bool
	Pause   time.Duration
	Clock   clockwork.Clock
}

func NewCommenter(poster chain.ReplyPoster, enabled bool, pause time.Duration, clock clockwork.Clock) *Commenter {
	return &Commenter{Poster: poster, Enabled: enabled, Pause: pause, Clock: clock}
}

// Reply posts body as a reply to the event's comment, with bounded
// retry. After a successful post it pauses briefly so consecutive
// replies don't exhaust the account's resource credits.
func (c *Commenter) Reply(ctx context.Context, e *model.CommentEvent, body string) error {
	if !c.Enabled {
		log.Printf("[INFO] dry-run reply to %s:\n%s", e.Identifier(), body)
		return nil
	}
	if err := c.postWithRetry(ctx, e, body, 3); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.Clock.After(c.Pause):
	}
	return nil
}

func (c *Commenter) postWithRetry(ctx context.Context, e *model.CommentEvent, body string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := c.Poster.PostReply(e.Author, e.Permlink, body); err != nil {
			lastErr = err
			backoff := time.Duration(1<<uint(i)) * time.Second
			log.Printf("[WARN] post reply failed (attempt %d/%d): %v, retrying in %v", i+1, maxRetries+1, err, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-c.Clock.After(backoff):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, lastErr)
}
