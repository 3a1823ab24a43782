package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TipSentinel/internal/chain"
	"TipSentinel/internal/config"
	"TipSentinel/internal/cursor"
	"TipSentinel/internal/engine"
	"TipSentinel/internal/ledger"
	"TipSentinel/internal/notifier"
	"TipSentinel/internal/policy"
	"TipSentinel/internal/scheduler"
	"TipSentinel/internal/wallet"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TipSentinel starting...")

	// Keys live in the environment, optionally via .env
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	cfg.Dump()

	ladder, _ := cfg.Ladder()
	giftAmount, _ := cfg.GiftAmount()
	clock := clockwork.NewRealClock()

	// Chain client and wallet
	feed := chain.NewClient(cfg.Chain.APINode, cfg.Chain.SignerURL, cfg.Chain.Account, cfg.Chain.PostingKey)
	log.Printf("[INFO] feed source: %s", feed.Name())
	w := wallet.NewTokenClient(cfg.Token.APIURL, cfg.Chain.SignerURL, cfg.Chain.Account, os.Getenv("BOT_ACTIVE_KEY"))

	// Gift ledger
	var store ledger.Store
	if cfg.Database.SQLitePath != "" {
		sl, err := ledger.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite ledger failed, using in-memory: %v", err)
			store = ledger.NewMemoryStore()
		} else {
			store = sl
			defer sl.Close()
		}
	} else {
		store = ledger.NewMemoryStore()
	}

	// Cursor
	cur := cursor.NewFileStore(cfg.Bot.CursorFile)

	// Notifications
	renderer, err := notifier.NewRenderer(cfg.TemplatesDir)
	if err != nil {
		log.Fatalf("[FATAL] load templates: %v", err)
	}
	commenter := notifier.NewCommenter(feed, cfg.Bot.EnableComments,
		time.Duration(cfg.Bot.ReplyPauseSecs*float64(time.Second)), clock)

	// Policy
	filter := policy.NewFilter(cfg.Chain.Account, cfg.Blocked, feed)
	tiers := policy.NewTierResolver(w, cfg.Token.Symbol, ladder)
	limiter := policy.NewRateLimiter(store, ladder, clock)

	eng := engine.New(engine.Params{
		Feed:            feed,
		Cursor:          cur,
		Ledger:          store,
		Filter:          filter,
		Tiers:           tiers,
		Limiter:         limiter,
		Wallet:          w,
		Commenter:       commenter,
		Renderer:        renderer,
		Clock:           clock,
		Ladder:          ladder,
		CommandToken:    cfg.Bot.CommandToken,
		BotAccount:      cfg.Chain.Account,
		Symbol:          cfg.Token.Symbol,
		GiftAmount:      giftAmount,
		TransferMemo:    cfg.Token.TransferMemo,
		StartMode:       cfg.Bot.StartMode,
		EnableTransfers: cfg.Bot.EnableTransfers,
		PollInterval:    time.Duration(cfg.Bot.PollIntervalSec * float64(time.Second)),
	})

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Daily summary task
	sched := scheduler.NewScheduler(store, clock)
	if err := sched.Register(cfg.Schedule.SummaryCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Run the stream engine
	errCh := make(chan error, 1)
	go func() { errCh <- eng.Run(ctx) }()
	log.Println("[INFO] TipSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or fatal engine error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && ctx.Err() == nil {
			log.Fatalf("[FATAL] stream engine: %v", err)
		}
	}
	log.Println("[INFO] TipSentinel stopped")
}
