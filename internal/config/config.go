package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"TipSentinel/internal/model"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StartMode selects where the stream begins when no cursor is persisted.
const (
	StartModeHead    = "head"
	StartModeGenesis = "genesis"
)

// TierConfig is one rung of the access-tier ladder as written in YAML.
// Balances are strings so token amounts keep exact decimal precision.
type TierConfig struct {
	Level          int    `yaml:"level"`
	MinBalance     string `yaml:"min_balance"`
	MaxDailyGifts  int    `yaml:"max_daily_gifts"`
	MaxUniqueGifts int    `yaml:"max_daily_gifts_unique"`
}

// Config holds all application configuration.
type Config struct {
	Chain struct {
		APINode    string `yaml:"api_node"`
		SignerURL  string `yaml:"signer_url"`
		Account    string `yaml:"account"`
		PostingKey string `yaml:"-"` // env only, never read from file
	} `yaml:"chain"`
	Token struct {
		APIURL       string `yaml:"api_url"`
		Symbol       string `yaml:"symbol"`
		GiftAmount   string `yaml:"gift_amount"`
		TransferMemo string `yaml:"transfer_memo"`
	} `yaml:"token"`
	Bot struct {
		CommandToken    string  `yaml:"command_token"`
		StartMode       string  `yaml:"start_mode"`
		CursorFile      string  `yaml:"cursor_file"`
		EnableComments  bool    `yaml:"enable_comments"`
		EnableTransfers bool    `yaml:"enable_transfers"`
		ReplyPauseSecs  float64 `yaml:"reply_pause_seconds"`
		PollIntervalSec float64 `yaml:"poll_interval_seconds"`
	} `yaml:"bot"`
	Tiers     []TierConfig `yaml:"tiers"`
	BlockList []string     `yaml:"block_list"`
	Database  struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Schedule struct {
		SummaryCron string `yaml:"summary_cron"`
	} `yaml:"schedule"`
	TemplatesDir string `yaml:"templates_dir"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CHAIN_API_NODE"); v != "" {
		cfg.Chain.APINode = v
	}
	if v := os.Getenv("CHAIN_SIGNER_URL"); v != "" {
		cfg.Chain.SignerURL = v
	}
	if v := os.Getenv("BOT_ACCOUNT"); v != "" {
		cfg.Chain.Account = v
	}
	if v := os.Getenv("BOT_POSTING_KEY"); v != "" {
		cfg.Chain.PostingKey = v
	}
	if v := os.Getenv("TOKEN_API_URL"); v != "" {
		cfg.Token.APIURL = v
	}
	if v := os.Getenv("BOT_COMMAND_TOKEN"); v != "" {
		cfg.Bot.CommandToken = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}

	// Defaults
	if cfg.Chain.APINode == "" {
		cfg.Chain.APINode = "https://api.hive.blog"
	}
	if cfg.Token.APIURL == "" {
		cfg.Token.APIURL = "https://engine.rishipanthee.com"
	}
	if cfg.Token.GiftAmount == "" {
		cfg.Token.GiftAmount = "1"
	}
	if cfg.Bot.StartMode == "" {
		cfg.Bot.StartMode = StartModeHead
	}
	if cfg.Bot.CursorFile == "" {
		cfg.Bot.CursorFile = "data/lastblock.txt"
	}
	if cfg.Bot.ReplyPauseSecs == 0 {
		cfg.Bot.ReplyPauseSecs = 3
	}
	if cfg.Bot.PollIntervalSec == 0 {
		cfg.Bot.PollIntervalSec = 3
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/tipsentinel.db"
	}
	if cfg.Schedule.SummaryCron == "" {
		cfg.Schedule.SummaryCron = "0 5 0 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and parseable.
func (c *Config) Validate() error {
	if c.Chain.Account == "" {
		return fmt.Errorf("chain.account is required")
	}
	if c.Bot.CommandToken == "" {
		return fmt.Errorf("bot.command_token is required")
	}
	if c.Token.Symbol == "" {
		return fmt.Errorf("token.symbol is required")
	}
	if c.Bot.StartMode != StartModeHead && c.Bot.StartMode != StartModeGenesis {
		return fmt.Errorf("bot.start_mode must be %q or %q", StartModeHead, StartModeGenesis)
	}
	if _, err := c.GiftAmount(); err != nil {
		return err
	}
	if _, err := c.Ladder(); err != nil {
		return err
	}
	return nil
}

// GiftAmount parses the configured gift amount.
func (c *Config) GiftAmount() (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(c.Token.GiftAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("token.gift_amount %q: %w", c.Token.GiftAmount, err)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("token.gift_amount must be positive")
	}
	return amount, nil
}

// Ladder parses the tier list into a model.TierLadder, enforcing that
// both level and minimum balance are strictly increasing.
func (c *Config) Ladder() (model.TierLadder, error) {
	if len(c.Tiers) == 0 {
		return nil, fmt.Errorf("tiers: at least one tier is required")
	}
	ladder := make(model.TierLadder, 0, len(c.Tiers))
	for i, t := range c.Tiers {
		min, err := decimal.NewFromString(t.MinBalance)
		if err != nil {
			return nil, fmt.Errorf("tiers[%d].min_balance %q: %w", i, t.MinBalance, err)
		}
		if t.Level <= 0 {
			return nil, fmt.Errorf("tiers[%d].level must be positive", i)
		}
		if t.MaxDailyGifts <= 0 || t.MaxUniqueGifts <= 0 {
			return nil, fmt.Errorf("tiers[%d]: daily caps must be positive", i)
		}
		if i > 0 {
			prev := ladder[i-1]
			if t.Level <= prev.Level || !min.GreaterThan(prev.MinBalance) {
				return nil, fmt.Errorf("tiers[%d]: levels and min balances must be strictly increasing", i)
			}
		}
		ladder = append(ladder, model.AccessTier{
			Level:          t.Level,
			MinBalance:     min,
			MaxDailyGifts:  t.MaxDailyGifts,
			MaxUniqueGifts: t.MaxUniqueGifts,
		})
	}
	return ladder, nil
}

// Blocked reports whether an account is on the block list.
func (c *Config) Blocked(account string) bool {
	for _, name := range c.BlockList {
		if name == account {
			return true
		}
	}
	return false
}

// Dump logs the loaded configuration, redacting anything key-like.
func (c *Config) Dump() {
	log.Printf("[INFO] chain.api_node = %s", c.Chain.APINode)
	log.Printf("[INFO] chain.signer_url = %s", c.Chain.SignerURL)
	log.Printf("[INFO] chain.account = %s", c.Chain.Account)
	log.Printf("[INFO] token.api_url = %s", c.Token.APIURL)
	log.Printf("[INFO] token.symbol = %s", c.Token.Symbol)
	log.Printf("[INFO] token.gift_amount = %s", c.Token.GiftAmount)
	log.Printf("[INFO] bot.command_token = %s", c.Bot.CommandToken)
	log.Printf("[INFO] bot.start_mode = %s", c.Bot.StartMode)
	log.Printf("[INFO] bot.cursor_file = %s", c.Bot.CursorFile)
	log.Printf("[INFO] bot.enable_comments = %v", c.Bot.EnableComments)
	log.Printf("[INFO] bot.enable_transfers = %v", c.Bot.EnableTransfers)
	log.Printf("[INFO] tiers = %d levels", len(c.Tiers))
	log.Printf("[INFO] block_list = %s", strings.Join(c.BlockList, ","))
	log.Printf("[INFO] database.sqlite_path = %s", c.Database.SQLitePath)
}
