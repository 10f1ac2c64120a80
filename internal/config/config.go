package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      LoggingConfig  `yaml:"log"`
	Feed     FeedConfig     `yaml:"feed"`
	Market   MarketConfig   `yaml:"market"`
	Strategy StrategyConfig `yaml:"strategy"`
	State    StateConfig    `yaml:"state"`
	Journal  JournalConfig  `yaml:"journal"`
	Telegram TelegramConfig `yaml:"telegram"`
	Status   StatusConfig   `yaml:"status"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type FeedConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Index   string        `yaml:"index"`
	Symbol  string        `yaml:"symbol"`
}

type MarketConfig struct {
	Open      DayTime `yaml:"open"`
	Close     DayTime `yaml:"close"`
	SquareOff DayTime `yaml:"square_off"`
}

// Strikes identifies the four option contracts of the condor.
type Strikes struct {
	ShortCall int `yaml:"short_call"`
	LongCall  int `yaml:"long_call"`
	ShortPut  int `yaml:"short_put"`
	LongPut   int `yaml:"long_put"`
}

type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether v lies inside the closed interval.
func (r Range) Contains(v float64) bool {
	return r.Min <= v && v <= r.Max
}

func (r Range) IsZero() bool { return r.Min == 0 && r.Max == 0 }

const (
	GateTimeOnly  = "time"
	GateSpotRange = "spot_range"

	ThresholdCreditFraction = "credit_fraction"
	ThresholdPerLot         = "per_lot"
)

type ThresholdConfig struct {
	Mode string `yaml:"mode"`
	// credit_fraction mode: thresholds as fractions of net credit.
	TargetPct float64 `yaml:"target_pct"`
	StopPct   float64 `yaml:"stop_pct"`
	// per_lot mode: absolute currency amounts against lot-scaled P&L.
	ProfitTarget float64 `yaml:"profit_target"`
	StopLoss     float64 `yaml:"stop_loss"`
}

type StrategyConfig struct {
	Label        string          `yaml:"label"`
	PollInterval time.Duration   `yaml:"poll_interval"`
	EntryStart   DayTime         `yaml:"entry_start"`
	LotSize      float64         `yaml:"lot_size"`
	Strikes      Strikes         `yaml:"strikes"`
	EntryGate    string          `yaml:"entry_gate"`
	EntryRange   Range           `yaml:"entry_range"`
	StopBand     Range           `yaml:"stop_band"`
	Thresholds   ThresholdConfig `yaml:"thresholds"`
}

type StateConfig struct {
	Backend    string `yaml:"backend"`
	FilePath   string `yaml:"file_path"`
	SQLitePath string `yaml:"sqlite_path"`
}

type PostgresConfig struct {
	Enabled   bool   `yaml:"enabled"`
	DSN       string `yaml:"dsn"`
	Schema    string `yaml:"schema"`
	QueueSize int    `yaml:"queue_size"`
}

type JournalConfig struct {
	CSVPath  string         `yaml:"csv_path"`
	Postgres PostgresConfig `yaml:"postgres"`
}

type TelegramConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Token      string  `yaml:"token"`
	ChatID     string  `yaml:"chat_id"`
	AnnounceAt DayTime `yaml:"announce_at"`
}

type StatusConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, validate(&cfg)
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Feed.BaseURL == "" {
		cfg.Feed.BaseURL = "https://www.nseindia.com"
	}
	if cfg.Feed.Timeout == 0 {
		cfg.Feed.Timeout = 10 * time.Second
	}
	if cfg.Feed.Index == "" {
		cfg.Feed.Index = "NIFTY 50"
	}
	if cfg.Feed.Symbol == "" {
		cfg.Feed.Symbol = "NIFTY"
	}
	if cfg.Market.Open.IsZero() {
		cfg.Market.Open = MustDayTime("09:25")
	}
	if cfg.Market.Close.IsZero() {
		cfg.Market.Close = MustDayTime("15:30")
	}
	if cfg.Market.SquareOff.IsZero() {
		cfg.Market.SquareOff = MustDayTime("15:10")
	}
	if cfg.Strategy.Label == "" {
		cfg.Strategy.Label = "IronCondor"
	}
	if cfg.Strategy.PollInterval == 0 {
		cfg.Strategy.PollInterval = 8 * time.Second
	}
	if cfg.Strategy.EntryStart.IsZero() {
		cfg.Strategy.EntryStart = MustDayTime("09:30")
	}
	if cfg.Strategy.EntryGate == "" {
		cfg.Strategy.EntryGate = GateSpotRange
	}
	if cfg.Strategy.Thresholds.Mode == "" {
		cfg.Strategy.Thresholds.Mode = ThresholdPerLot
	}
	if cfg.Strategy.Thresholds.Mode == ThresholdCreditFraction {
		if cfg.Strategy.Thresholds.TargetPct == 0 {
			cfg.Strategy.Thresholds.TargetPct = 0.40
		}
		if cfg.Strategy.Thresholds.StopPct == 0 {
			cfg.Strategy.Thresholds.StopPct = 0.80
		}
	}
	if cfg.State.Backend == "" {
		cfg.State.Backend = "file"
	}
	if cfg.State.FilePath == "" {
		cfg.State.FilePath = "data/trade_state.json"
	}
	if cfg.State.SQLitePath == "" {
		cfg.State.SQLitePath = "data/condor-bot.db"
	}
	if cfg.Journal.CSVPath == "" {
		cfg.Journal.CSVPath = "paper_trade_log.csv"
	}
	if cfg.Journal.Postgres.Schema == "" {
		cfg.Journal.Postgres.Schema = "public"
	}
	if cfg.Journal.Postgres.QueueSize == 0 {
		cfg.Journal.Postgres.QueueSize = 256
	}
	if cfg.Status.Addr == "" {
		cfg.Status.Addr = ":8080"
	}
}

func validate(cfg *Config) error {
	// Lot size disagrees between the two deployment modes, so it is a
	// required input rather than a silent default.
	if cfg.Strategy.LotSize <= 0 {
		return errors.New("strategy.lot_size must be > 0")
	}
	s := cfg.Strategy.Strikes
	if s.ShortCall <= 0 || s.LongCall <= 0 || s.ShortPut <= 0 || s.LongPut <= 0 {
		return errors.New("strategy.strikes: all four strikes are required")
	}
	switch cfg.Strategy.EntryGate {
	case GateTimeOnly:
	case GateSpotRange:
		if cfg.Strategy.EntryRange.Min >= cfg.Strategy.EntryRange.Max {
			return errors.New("strategy.entry_range requires min < max")
		}
	default:
		return fmt.Errorf("strategy.entry_gate must be %q or %q", GateTimeOnly, GateSpotRange)
	}
	switch cfg.Strategy.Thresholds.Mode {
	case ThresholdCreditFraction:
		if cfg.Strategy.Thresholds.TargetPct <= 0 || cfg.Strategy.Thresholds.StopPct <= 0 {
			return errors.New("strategy.thresholds: target_pct and stop_pct must be > 0")
		}
	case ThresholdPerLot:
		if cfg.Strategy.Thresholds.ProfitTarget <= 0 || cfg.Strategy.Thresholds.StopLoss <= 0 {
			return errors.New("strategy.thresholds: profit_target and stop_loss must be > 0")
		}
	default:
		return fmt.Errorf("strategy.thresholds.mode must be %q or %q", ThresholdCreditFraction, ThresholdPerLot)
	}
	if !cfg.Strategy.StopBand.IsZero() && cfg.Strategy.StopBand.Min >= cfg.Strategy.StopBand.Max {
		return errors.New("strategy.stop_band requires min < max")
	}
	if cfg.Journal.Postgres.Enabled && cfg.Journal.Postgres.DSN == "" {
		return errors.New("journal.postgres.dsn is required when enabled")
	}
	return nil
}
