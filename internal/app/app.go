package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"condor-bot/internal/alerts"
	"condor-bot/internal/config"
	"condor-bot/internal/feed/nse"
	"condor-bot/internal/journal"
	"condor-bot/internal/metrics"
	"condor-bot/internal/state"
	"condor-bot/internal/state/file"
	"condor-bot/internal/state/sqlite"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

// App wires one live paper-trading session together.
type App struct {
	cfg    *config.Config
	log    *zap.Logger
	store  state.Store
	engine *strategy.Engine
	feed   *nse.Client
	rec    *journal.Recorder
	pg     *journal.PostgresWriter
	alerts *alerts.Telegram
	prom   *metrics.Prometheus
	hub    *EventHub
	status *StatusServer
	driver *driver
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	store, err := openStore(cfg.State)
	if err != nil {
		return nil, err
	}

	gate, err := strategy.GateFromConfig(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	thresholds, err := strategy.ThresholdsFromConfig(cfg.Strategy.Thresholds)
	if err != nil {
		return nil, err
	}
	engineCfg := strategy.EngineConfig{
		EntryStart:  cfg.Strategy.EntryStart,
		SquareOff:   cfg.Market.SquareOff,
		MarketClose: cfg.Market.Close,
		LotSize:     cfg.Strategy.LotSize,
		Gate:        gate,
		Thresholds:  thresholds,
	}
	if !cfg.Strategy.StopBand.IsZero() {
		band := cfg.Strategy.StopBand
		engineCfg.StopBand = &band
	}
	engine, err := strategy.NewEngine(engineCfg, state.NewTradeStateStore(store))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	telegramCfg := cfg.Telegram
	if telegramCfg.Token == "" {
		telegramCfg.Token = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	}
	if telegramCfg.ChatID == "" {
		telegramCfg.ChatID = strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID"))
	}

	pg, err := journal.NewPostgres(cfg.Journal.Postgres, log)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	prom := metrics.NewPrometheus()
	hub := NewEventHub()
	rec := journal.NewRecorder()
	alertsClient := alerts.NewTelegram(telegramCfg, log)
	feedClient := nse.New(cfg.Feed, cfg.Strategy.Strikes, log)

	a := &App{
		cfg:    cfg,
		log:    log,
		store:  store,
		engine: engine,
		feed:   feedClient,
		rec:    rec,
		pg:     pg,
		alerts: alertsClient,
		prom:   prom,
		hub:    hub,
	}
	a.driver = newDriver(cfg, feedClient, engine, rec, pg, alertsClient, prom.Metrics, hub, log)
	if cfg.Status.Enabled {
		a.status = NewStatusServer(cfg.Status, a.statusSnapshot, prom.Handler(), hub, log)
	}
	return a, nil
}

func openStore(cfg config.StateConfig) (state.Store, error) {
	switch cfg.Backend {
	case "file":
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
			return nil, err
		}
		return file.New(cfg.FilePath)
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		return sqlite.New(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown state backend %q", cfg.Backend)
	}
}

// Run executes the daily session start to finish: restore state, start the
// side surfaces, drive the polling loop, then flush the journal no matter
// how the loop ended.
func (a *App) Run(ctx context.Context) error {
	defer a.store.Close()
	defer a.pg.Close()

	if err := a.feed.Warmup(ctx); err != nil {
		a.notify(ctx, alerts.CriticalMessage(err))
		return fmt.Errorf("feed initialization: %w", err)
	}

	a.restoreState(ctx)
	a.pg.Start(ctx)
	if a.status != nil {
		a.status.Start()
		defer a.status.Shutdown()
	}
	a.scheduleAnnounce(ctx)

	startedAt := time.Now()
	runErr := a.driver.run(ctx)
	a.flush(startedAt)
	if runErr != nil && runErr != context.Canceled {
		a.notify(ctx, alerts.CriticalMessage(runErr))
	}
	return runErr
}

// restoreState resumes a persisted open position, or starts Idle when the
// record is absent or cannot be trusted.
func (a *App) restoreState(ctx context.Context) {
	book, ok, err := state.LoadTradeState(ctx, a.store)
	if err != nil {
		a.log.Warn("discarding persisted trade state", zap.Error(err))
		if derr := a.store.Delete(ctx, state.TradeStateKey); derr != nil {
			a.log.Warn("failed to remove bad trade state", zap.Error(derr))
		}
	}
	if !ok {
		a.log.Info("starting fresh",
			zap.String("strategy", a.cfg.Strategy.Label),
			zap.Duration("poll_interval", a.cfg.Strategy.PollInterval),
		)
		a.notify(ctx, alerts.StartupMessage(a.cfg.Strategy.Label, a.cfg.Feed.Index))
		return
	}
	if err := a.engine.Resume(book); err != nil {
		a.log.Warn("could not resume persisted position", zap.Error(err))
		if derr := a.store.Delete(ctx, state.TradeStateKey); derr != nil {
			a.log.Warn("failed to remove bad trade state", zap.Error(derr))
		}
		a.notify(ctx, alerts.StartupMessage(a.cfg.Strategy.Label, a.cfg.Feed.Index))
		return
	}
	a.log.Info("resumed open position", zap.Int("legs", len(book)))
	a.notify(ctx, alerts.RestartMessage())
}

// flush writes the session journal to CSV and archives it in the store.
func (a *App) flush(startedAt time.Time) {
	entries := a.rec.Entries()
	if len(entries) == 0 {
		a.log.Info("no trades were logged this session")
		return
	}
	if err := a.rec.FlushCSV(a.cfg.Journal.CSVPath); err != nil {
		a.log.Error("failed to save trade log", zap.Error(err))
	} else {
		a.log.Info("trade log saved", zap.String("path", a.cfg.Journal.CSVPath), zap.Int("rows", len(entries)))
	}

	snap := a.engine.Snapshot()
	archive := journal.SessionArchive{
		Label:      a.cfg.Strategy.Label,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		FinalPnL:   snap.PnL,
		Entries:    entries,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := journal.SaveArchive(ctx, a.store, archive); err != nil {
		a.log.Warn("failed to archive session", zap.Error(err))
	}
}

func (a *App) statusSnapshot() statusResponse {
	snap := a.engine.Snapshot()
	resp := statusResponse{
		State:       snap.State,
		TradeActive: snap.State == strategy.StateActive,
		PnL:         snap.PnL,
		NetCredit:   snap.NetCredit,
		Spot:        snap.Spot,
		Status:      statusText(snap),
		UpdatedAt:   time.Now(),
	}
	if len(snap.Book) > 0 {
		resp.PositionBook = snap.Book
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if archive, ok, err := journal.LoadArchive(ctx, a.store); err == nil && ok {
		resp.LastSession = &lastSession{
			Label:      archive.Label,
			FinishedAt: archive.FinishedAt,
			FinalPnL:   archive.FinalPnL,
			Rows:       len(archive.Entries),
		}
	}
	return resp
}

func statusText(snap strategy.Snapshot) string {
	switch snap.State {
	case strategy.StateIdle:
		return "waiting for entry conditions"
	case strategy.StateActive:
		return fmt.Sprintf("holding, P&L %.2f", snap.PnL)
	default:
		return "session closed"
	}
}

func (a *App) notify(ctx context.Context, message string) {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := a.alerts.Send(sendCtx, message); err != nil {
		a.log.Warn("alert send failed", zap.Error(err))
	}
}
