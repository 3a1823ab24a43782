package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"TipSentinel/internal/chain"
	"TipSentinel/internal/config"
	"TipSentinel/internal/cursor"
	"TipSentinel/internal/ledger"
	"TipSentinel/internal/model"
	"TipSentinel/internal/notifier"
	"TipSentinel/internal/policy"
	"TipSentinel/internal/wallet"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"
)

// Params collects the engine's collaborators and policy settings.
type Params struct {
	Feed      chain.Feed
	Cursor    cursor.Store
	Ledger    ledger.Store
	Filter    *policy.Filter
	Tiers     *policy.TierResolver
	Limiter   *policy.RateLimiter
	Wallet    wallet.Wallet
	Commenter *notifier.Commenter
	Renderer  *notifier.Renderer
	Clock     clockwork.Clock

	Ladder          model.TierLadder
	CommandToken    string
	BotAccount      string
	Symbol          string
	GiftAmount      decimal.Decimal
	TransferMemo    string
	StartMode       string
	EnableTransfers bool
	PollInterval    time.Duration
	MaxFeedRetries  int
}

// Engine drives the resumable scan over the comment feed. Events are
// processed strictly one at a time, in feed order; the cursor is
// persisted before any side effect, so a crash re-delivers a block
// instead of skipping it.
type Engine struct {
	p    Params
	next int64
}

func New(p Params) *Engine {
	if p.MaxFeedRetries == 0 {
		p.MaxFeedRetries = 3
	}
	return &Engine{p: p}
}

// Start loads the cursor and decides the first block to scan. An
// absent cursor starts from the feed head or from genesis, per the
// configured start mode. A persisted cursor resumes at the same block
// it names: the block it was processing is re-delivered.
func (e *Engine) Start() error {
	pos, ok, err := e.p.Cursor.Load()
	if err != nil {
		return fmt.Errorf("load cursor: %w", err)
	}
	if ok {
		e.next = pos
		log.Printf("[INFO] resuming from block %d", pos)
		return nil
	}
	if e.p.StartMode == config.StartModeGenesis {
		e.next = 1
		log.Println("[INFO] no cursor, starting from genesis")
		return nil
	}
	head, err := e.p.Feed.HeadBlock()
	if err != nil {
		return fmt.Errorf("head block: %w", err)
	}
	e.next = head
	log.Printf("[INFO] no cursor, starting from head block %d", head)
	return nil
}

// Run streams blocks until the context is cancelled or the feed fails
// fatally. It never returns under normal operation.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(); err != nil {
		return err
	}
	failures := 0
	for {
		if err := e.Sync(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			if failures > e.p.MaxFeedRetries {
				return fmt.Errorf("feed failed %d times in a row: %w", failures, err)
			}
			log.Printf("[WARN] feed scan failed (attempt %d/%d): %v", failures, e.p.MaxFeedRetries+1, err)
		} else {
			failures = 0
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.p.Clock.After(e.p.PollInterval):
		}
	}
}

// Sync scans from the cursor up to the current head, then returns.
func (e *Engine) Sync(ctx context.Context) error {
	head, err := e.p.Feed.HeadBlock()
	if err != nil {
		return fmt.Errorf("head block: %w", err)
	}
	for ; e.next <= head; e.next++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Cursor first, then side effects.
		if err := e.p.Cursor.Save(e.next); err != nil {
			return fmt.Errorf("persist cursor: %w", err)
		}
		events, err := e.p.Feed.BlockComments(e.next)
		if err != nil {
			return fmt.Errorf("block %d: %w", e.next, err)
		}
		for i := range events {
			e.process(ctx, &events[i])
		}
	}
	return nil
}

func (e *Engine) process(ctx context.Context, ev *model.CommentEvent) {
	// How are there comments with no author? The feed has them.
	if ev.Author == "" {
		return
	}
	if !strings.Contains(ev.Body, e.p.CommandToken) {
		return
	}
	log.Printf("[INFO] found %s command: %s in block %d", e.p.CommandToken, ev.Identifier(), ev.BlockNum)

	reason, err := e.p.Filter.Evaluate(ev)
	if err != nil {
		if errors.Is(err, chain.ErrNotFound) {
			log.Printf("[INFO] post %s vanished, skipping", ev.Identifier())
		} else {
			log.Printf("[ERROR] eligibility check for %s: %v", ev.Identifier(), err)
		}
		return
	}
	if reason != model.RejectNone {
		log.Printf("[INFO] rejected %s: %s", ev.Identifier(), reason)
		return
	}

	level := e.p.Tiers.Resolve(ev.Author)
	reason, err = e.p.Limiter.CanGift(ev.Author, ev.ParentAuthor, level)
	if err != nil {
		log.Printf("[ERROR] quota check for %s: %v", ev.Identifier(), err)
		return
	}
	switch reason {
	case model.RejectNoTier:
		log.Printf("[INFO] %s doesn't meet the minimum requirements", ev.Author)
		e.replyFail(ctx, ev)
	case model.RejectDailyLimit:
		// Reply intentionally not posted here to save resource credits.
		e.logDailyLimit(ev, level)
	case model.RejectUniqueLimit:
		log.Printf("[INFO] %s already gifted %s today", ev.Author, ev.ParentAuthor)
	default:
		e.approve(ctx, ev, level)
	}
}

func (e *Engine) approve(ctx context.Context, ev *model.CommentEvent, level int) {
	botBalance, err := e.p.Wallet.Balance(e.p.BotAccount, e.p.Symbol)
	if err != nil {
		log.Printf("[WARN] bot balance lookup failed, treating as out of stock: %v", err)
		botBalance = decimal.Zero
	}
	if botBalance.LessThan(e.p.GiftAmount) {
		log.Printf("[WARN] bot wallet has run out of %s", e.p.Symbol)
		e.reply(ctx, ev, notifier.TemplateOutOfStock, map[string]any{"Token": e.p.Symbol})
		return
	}

	if e.p.EnableTransfers {
		log.Printf("[INFO] transferring %s %s from %s to %s",
			e.p.GiftAmount, e.p.Symbol, e.p.BotAccount, ev.ParentAuthor)
		if err := e.p.Wallet.Transfer(ev.ParentAuthor, e.p.GiftAmount, e.p.Symbol, e.p.TransferMemo); err != nil {
			// A failed transfer must not consume quota: no ledger write.
			log.Printf("[ERROR] transfer to %s failed: %v", ev.ParentAuthor, err)
			e.reply(ctx, ev, notifier.TemplateOutOfStock, map[string]any{"Token": e.p.Symbol})
			return
		}
		rec := &model.GiftRecord{
			Day:       e.p.Limiter.Today(),
			Invoker:   ev.Author,
			Recipient: ev.ParentAuthor,
			BlockNum:  ev.BlockNum,
		}
		if err := e.p.Ledger.SaveGift(rec); err != nil {
			log.Printf("[ERROR] record gift: %v", err)
		}
	} else {
		log.Printf("[INFO] dry run, skipping transfer of %s %s to %s",
			e.p.GiftAmount, e.p.Symbol, ev.ParentAuthor)
	}

	count, err := e.p.Ledger.CountGifts(e.p.Limiter.Today(), ev.Author)
	if err != nil {
		log.Printf("[WARN] count gifts: %v", err)
	}
	maxDaily := 0
	if tier, ok := e.p.Ladder.ByLevel(level); ok {
		maxDaily = tier.MaxDailyGifts
	}
	e.reply(ctx, ev, notifier.TemplateSuccess, map[string]any{
		"Recipient": ev.ParentAuthor,
		"Invoker":   ev.Author,
		"Amount":    e.p.GiftAmount,
		"Token":     e.p.Symbol,
		"Count":     count,
		"Max":       maxDaily,
	})
}

func (e *Engine) replyFail(ctx context.Context, ev *model.CommentEvent) {
	minBalance := decimal.Zero
	if lowest, ok := e.p.Ladder.Lowest(); ok {
		minBalance = lowest.MinBalance
	}
	e.reply(ctx, ev, notifier.TemplateFail, map[string]any{
		"Invoker":    ev.Author,
		"Token":      e.p.Symbol,
		"MinBalance": minBalance,
	})
}

func (e *Engine) logDailyLimit(ev *model.CommentEvent, level int) {
	maxDaily := 0
	if tier, ok := e.p.Ladder.ByLevel(level); ok {
		maxDaily = tier.MaxDailyGifts
	}
	body, err := e.p.Renderer.Render(notifier.TemplateDailyLimit, map[string]any{
		"Invoker": ev.Author,
		"Token":   e.p.Symbol,
		"Max":     maxDaily,
	})
	if err != nil {
		log.Printf("[ERROR] render daily-limit: %v", err)
		return
	}
	log.Printf("[INFO] %s reached the daily limit: %s", ev.Author, body)
}

func (e *Engine) reply(ctx context.Context, ev *model.CommentEvent, key string, values map[string]any) {
	body, err := e.p.Renderer.Render(key, values)
	if err != nil {
		log.Printf("[ERROR] render %s: %v", key, err)
		return
	}
	if err := e.p.Commenter.Reply(ctx, ev, body); err != nil {
		log.Printf("[ERROR] reply to %s: %v", ev.Identifier(), err)
	}
}
