package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
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

const botName = "giftbot"

// recordingPoster captures reply bodies and mirrors them into the mock
// feed's reply lists, the way a real broadcast becomes visible on chain.
type recordingPoster struct {
	feed    *chain.MockFeed
	replies []string
}

func (p *recordingPoster) PostReply(parentAuthor, parentPermlink, body string) error {
	p.replies = append(p.replies, body)
	p.feed.AddReply(parentAuthor, parentPermlink, chain.Reply{Author: botName, Permlink: "re-" + parentPermlink})
	return nil
}

func testLadder() model.TierLadder {
	return model.TierLadder{
		{Level: 1, MinBalance: decimal.NewFromInt(10), MaxDailyGifts: 3, MaxUniqueGifts: 1},
		{Level: 2, MinBalance: decimal.NewFromInt(100), MaxDailyGifts: 10, MaxUniqueGifts: 3},
	}
}

type harness struct {
	feed   *chain.MockFeed
	wallet *wallet.MockWallet
	ledger *ledger.MemoryStore
	cursor *cursor.MemoryStore
	poster *recordingPoster
	params Params
	engine *Engine
}

func newHarness(t *testing.T, edit func(*Params)) *harness {
	t.Helper()
	feed := chain.NewMockFeed()
	w := wallet.NewMockWallet()
	w.Balances[botName] = decimal.NewFromInt(1000)
	w.Balances["alice"] = decimal.NewFromInt(50) // tier 1
	led := ledger.NewMemoryStore()
	cur := cursor.NewMemoryStore()
	poster := &recordingPoster{feed: feed}

	renderer, err := notifier.NewRenderer("")
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	blockList := map[string]bool{"badguy": true}
	blocked := func(name string) bool { return blockList[name] }
	ladder := testLadder()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))

	p := Params{
		Feed:            feed,
		Cursor:          cur,
		Ledger:          led,
		Filter:          policy.NewFilter(botName, blocked, feed),
		Tiers:           policy.NewTierResolver(w, "BBH", ladder),
		Limiter:         policy.NewRateLimiter(led, ladder, clock),
		Wallet:          w,
		Commenter:       notifier.NewCommenter(poster, true, 0, clockwork.NewRealClock()),
		Renderer:        renderer,
		Clock:           clockwork.NewRealClock(),
		Ladder:          ladder,
		CommandToken:    "!BBH",
		BotAccount:      botName,
		Symbol:          "BBH",
		GiftAmount:      decimal.NewFromInt(1),
		TransferMemo:    "enjoy your gift",
		StartMode:       config.StartModeGenesis,
		EnableTransfers: true,
		PollInterval:    time.Millisecond,
	}
	if edit != nil {
		edit(&p)
	}
	return &harness{feed: feed, wallet: w, ledger: led, cursor: cur, poster: poster, params: p, engine: New(p)}
}

func (h *harness) addCommand(block int64, author, parent string) {
	ev := model.CommentEvent{
		BlockNum:     block,
		Author:       author,
		ParentAuthor: parent,
		Permlink:     fmt.Sprintf("cmd-%d-%d", block, len(h.feed.Blocks[block])),
		Body:         "have a treat !BBH",
	}
	h.feed.Blocks[block] = append(h.feed.Blocks[block], ev)
	if block > h.feed.Head {
		h.feed.Head = block
	}
}

func (h *harness) sync(t *testing.T) {
	t.Helper()
	if err := h.engine.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.engine.Sync(context.Background()); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestEngine_ApprovedGift(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(5, "alice", "bob")
	h.sync(t)

	sent := h.wallet.Sent()
	if len(sent) != 1 {
		t.Fatalf("expected 1 transfer, got %d", len(sent))
	}
	if sent[0].To != "bob" || !sent[0].Amount.Equal(decimal.NewFromInt(1)) || sent[0].Symbol != "BBH" {
		t.Errorf("unexpected transfer: %+v", sent[0])
	}

	gifts := h.ledger.Gifts()
	if len(gifts) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(gifts))
	}
	want := model.GiftRecord{Day: "2026-08-31", Invoker: "alice", Recipient: "bob", BlockNum: 5}
	if gifts[0] != want {
		t.Errorf("expected %+v, got %+v", want, gifts[0])
	}

	if h.cursor.Pos != 5 {
		t.Errorf("expected cursor at 5, got %d", h.cursor.Pos)
	}
	if len(h.poster.replies) != 1 || !strings.Contains(h.poster.replies[0], "@bob") {
		t.Errorf("expected one success reply mentioning @bob, got %v", h.poster.replies)
	}
}

func TestEngine_StructuralRejectionsAdvanceCursor(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(1, "alice", "")        // missing recipient
	h.addCommand(2, "alice", "alice")   // self target
	h.addCommand(3, "alice", botName)   // targets bot
	h.addCommand(4, "badguy", "bob")    // block-listed invoker
	h.addCommand(5, "alice", "badguy")  // block-listed recipient
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Errorf("expected no transfers, got %d", n)
	}
	if n := len(h.poster.replies); n != 0 {
		t.Errorf("expected no replies, got %d", n)
	}
	if h.cursor.Pos != 5 {
		t.Errorf("expected cursor at 5 despite rejections, got %d", h.cursor.Pos)
	}
}

func TestEngine_ReplayDoesNotDoubleGift(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(5, "alice", "bob")
	h.sync(t)

	if len(h.wallet.Sent()) != 1 {
		t.Fatalf("expected 1 transfer after first pass, got %d", len(h.wallet.Sent()))
	}

	// A restart resumes at the persisted cursor, re-delivering block 5.
	// The success reply is now on chain, so already-answered blocks a
	// second gift.
	replay := New(h.params)
	if err := replay.Start(); err != nil {
		t.Fatalf("replay start: %v", err)
	}
	if err := replay.Sync(context.Background()); err != nil {
		t.Fatalf("replay sync: %v", err)
	}

	if len(h.wallet.Sent()) != 1 {
		t.Errorf("replay double-executed the gift: %d transfers", len(h.wallet.Sent()))
	}
	if len(h.ledger.Gifts()) != 1 {
		t.Errorf("replay duplicated the ledger entry: %d gifts", len(h.ledger.Gifts()))
	}
}

func TestEngine_AggregateCapStopsFourthGift(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(1, "alice", "bob")
	h.addCommand(2, "alice", "carol")
	h.addCommand(3, "alice", "dave")
	h.addCommand(4, "alice", "erin")
	h.sync(t)

	sent := h.wallet.Sent()
	if len(sent) != 3 {
		t.Fatalf("expected 3 transfers at tier 1 cap, got %d", len(sent))
	}
	for _, tr := range sent {
		if tr.To == "erin" {
			t.Error("fourth gift of the day should have been denied")
		}
	}
	if h.cursor.Pos != 4 {
		t.Errorf("expected cursor at 4, got %d", h.cursor.Pos)
	}
}

func TestEngine_UniqueCapIndependentOfAggregate(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(1, "alice", "bob")
	h.addCommand(2, "alice", "bob")   // same recipient again
	h.addCommand(3, "alice", "carol") // fresh recipient still fine
	h.sync(t)

	sent := h.wallet.Sent()
	if len(sent) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(sent))
	}
	if sent[0].To != "bob" || sent[1].To != "carol" {
		t.Errorf("unexpected recipients: %s, %s", sent[0].To, sent[1].To)
	}
}

func TestEngine_NoTierGetsFailReply(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(1, "zed", "bob") // zed holds no tokens
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Fatalf("expected no transfers, got %d", n)
	}
	if len(h.poster.replies) != 1 {
		t.Fatalf("expected 1 fail reply, got %d", len(h.poster.replies))
	}
	if !strings.Contains(h.poster.replies[0], "@zed") || !strings.Contains(h.poster.replies[0], "10 BBH") {
		t.Errorf("fail reply should name the invoker and minimum balance: %q", h.poster.replies[0])
	}
}

func TestEngine_BalanceLookupFailureDeniesGift(t *testing.T) {
	h := newHarness(t, nil)
	h.wallet.BalanceErr = errors.New("token api down")
	h.addCommand(1, "alice", "bob")
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Errorf("expected no transfers on degraded lookup, got %d", n)
	}
	if h.cursor.Pos != 1 {
		t.Errorf("expected cursor at 1, got %d", h.cursor.Pos)
	}
}

func TestEngine_OutOfStock(t *testing.T) {
	h := newHarness(t, nil)
	h.wallet.Balances[botName] = decimal.Zero
	h.addCommand(1, "alice", "bob")
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Fatalf("expected no transfers, got %d", n)
	}
	if n := len(h.ledger.Gifts()); n != 0 {
		t.Errorf("expected no ledger entry, got %d", n)
	}
	if len(h.poster.replies) != 1 || !strings.Contains(h.poster.replies[0], "empty") {
		t.Errorf("expected out-of-stock reply, got %v", h.poster.replies)
	}
}

func TestEngine_FailedTransferConsumesNoQuota(t *testing.T) {
	h := newHarness(t, nil)
	h.wallet.TransferErr = errors.New("broadcast rejected")
	h.addCommand(1, "alice", "bob")
	h.sync(t)

	if n := len(h.ledger.Gifts()); n != 0 {
		t.Errorf("failed transfer must not write the ledger, got %d entries", n)
	}
	count, _ := h.ledger.CountGifts("2026-08-31", "alice")
	if count != 0 {
		t.Errorf("failed transfer consumed quota: count %d", count)
	}
	if len(h.poster.replies) != 1 {
		t.Errorf("expected a failure notification, got %d replies", len(h.poster.replies))
	}
}

func TestEngine_DryRunSkipsTransferAndLedger(t *testing.T) {
	h := newHarness(t, func(p *Params) { p.EnableTransfers = false })
	h.addCommand(1, "alice", "bob")
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Errorf("dry run must not transfer, got %d", n)
	}
	if n := len(h.ledger.Gifts()); n != 0 {
		t.Errorf("dry run must not write the ledger, got %d", n)
	}
	if len(h.poster.replies) != 1 {
		t.Errorf("dry run still posts the success reply, got %d", len(h.poster.replies))
	}
}

func TestEngine_VanishedPostSkipped(t *testing.T) {
	h := newHarness(t, nil)
	h.addCommand(1, "alice", "bob")
	h.feed.Missing["alice/cmd-1-0"] = true
	h.sync(t)

	if n := len(h.wallet.Sent()); n != 0 {
		t.Errorf("expected no transfers for vanished post, got %d", n)
	}
	if h.cursor.Pos != 1 {
		t.Errorf("expected cursor still advanced to 1, got %d", h.cursor.Pos)
	}
}

func TestEngine_StartModeHeadIgnoresBacklog(t *testing.T) {
	h := newHarness(t, func(p *Params) { p.StartMode = config.StartModeHead })
	h.addCommand(1, "alice", "bob")
	h.addCommand(5, "alice", "carol")
	h.sync(t)

	sent := h.wallet.Sent()
	if len(sent) != 1 || sent[0].To != "carol" {
		t.Fatalf("head start should only process the head block, got %+v", sent)
	}
}

func TestEngine_ResumesFromPersistedCursor(t *testing.T) {
	h := newHarness(t, nil)
	h.cursor.Pos = 4
	h.cursor.Set = true
	h.addCommand(2, "alice", "bob")
	h.addCommand(5, "alice", "carol")
	h.sync(t)

	sent := h.wallet.Sent()
	if len(sent) != 1 || sent[0].To != "carol" {
		t.Fatalf("expected only the post-cursor gift, got %+v", sent)
	}
	if h.cursor.Pos != 5 {
		t.Errorf("expected cursor at 5, got %d", h.cursor.Pos)
	}
}

func TestEngine_FatalTransportTerminatesRun(t *testing.T) {
	h := newHarness(t, nil)
	h.cursor.Pos = 1
	h.cursor.Set = true
	h.feed.SetErr(errors.New("node unreachable"))

	err := h.engine.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "feed failed") {
		t.Fatalf("expected fatal transport error, got %v", err)
	}
}
