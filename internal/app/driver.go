package app

import (
	"context"
	"time"

	"condor-bot/internal/alerts"
	"condor-bot/internal/config"
	"condor-bot/internal/feed"
	"condor-bot/internal/journal"
	"condor-bot/internal/metrics"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

type notifier interface {
	Send(ctx context.Context, message string) error
}

// driver is the polling loop for one market day: fetch a quote, let the
// engine evaluate it, act on the event, sleep, repeat. It is strictly
// single-threaded; one cycle always runs to completion before the next.
type driver struct {
	feed     feed.Source
	engine   *strategy.Engine
	rec      *journal.Recorder
	pg       *journal.PostgresWriter
	notifier notifier
	metrics  *metrics.Metrics
	hub      *EventHub
	log      *zap.Logger

	label        string
	strikes      config.Strikes
	lotSize      float64
	interval     time.Duration
	fetchTimeout time.Duration
	marketOpen   config.DayTime
	marketClose  config.DayTime

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) bool
}

func newDriver(cfg *config.Config, src feed.Source, eng *strategy.Engine, rec *journal.Recorder, pg *journal.PostgresWriter, n notifier, m *metrics.Metrics, hub *EventHub, log *zap.Logger) *driver {
	return &driver{
		feed:         src,
		engine:       eng,
		rec:          rec,
		pg:           pg,
		notifier:     n,
		metrics:      m,
		hub:          hub,
		log:          log,
		label:        cfg.Strategy.Label,
		strikes:      cfg.Strategy.Strikes,
		lotSize:      cfg.Strategy.LotSize,
		interval:     cfg.Strategy.PollInterval,
		fetchTimeout: cfg.Feed.Timeout,
		marketOpen:   cfg.Market.Open,
		marketClose:  cfg.Market.Close,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// run executes one daily session and returns when it ends. A terminal
// lifecycle event, the market closing, or context cancellation all stop
// the loop; nothing re-arms it for the next day.
func (d *driver) run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := d.now()
		if !d.withinMarketHours(now) {
			return d.shutdownMarketClosed(ctx, now)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, d.fetchTimeout)
		q, err := d.feed.Fetch(fetchCtx)
		cancel()
		if err != nil {
			// Contract violation from the source; treat the cycle as
			// having no data rather than aborting the session.
			d.log.Warn("quote fetch failed", zap.Error(err))
			q = strategy.Quote{Time: now}
		}
		d.metrics.Cycles.Inc()

		ev, perr := d.engine.Evaluate(q)
		if perr != nil {
			d.log.Warn("trade state persistence failed", zap.Error(perr))
		}
		d.handle(ctx, ev, q)
		if ev.Kind.Terminal() {
			return nil
		}
		if !d.sleep(ctx, d.interval) {
			return ctx.Err()
		}
	}
}

func (d *driver) withinMarketHours(t time.Time) bool {
	return d.marketOpen.AtOrBefore(t) && !d.marketClose.Before(t)
}

func (d *driver) shutdownMarketClosed(ctx context.Context, now time.Time) error {
	ev, closed, err := d.engine.ForceClose(now)
	if err != nil {
		d.log.Warn("trade state persistence failed", zap.Error(err))
	}
	if closed {
		d.handle(ctx, ev, strategy.Quote{Time: now})
	} else {
		d.log.Info("market is closed, ending trading loop")
		d.notify(ctx, alerts.ShutdownMessage(false))
	}
	return nil
}

func (d *driver) handle(ctx context.Context, ev strategy.Event, q strategy.Quote) {
	if ev.Spot != 0 {
		d.metrics.Spot.Set(ev.Spot)
	}
	switch ev.Kind {
	case strategy.KindDataUnavailable:
		d.metrics.QuotesUnusable.Inc()
		d.log.Warn("missing quote data, skipping cycle", zap.Time("at", ev.Time))
	case strategy.KindWaiting:
		d.log.Debug("waiting", zap.Float64("spot", ev.Spot), zap.String("note", ev.Note))
	case strategy.KindEntered:
		d.metrics.Entries.Inc()
		rows := journal.EntryRows(ev, d.strikes)
		d.rec.Append(rows...)
		d.pg.Enqueue(rows...)
		d.log.Info("trade entered",
			zap.Float64("spot", ev.Spot),
			zap.Float64("net_credit", ev.NetCredit),
		)
		d.notify(ctx, alerts.EntryMessage(d.label, ev, d.strikes))
	case strategy.KindHolding:
		d.metrics.PnL.Set(ev.PnL)
		d.log.Info("holding",
			zap.Float64("spot", ev.Spot),
			zap.Float64("pnl", ev.PnL),
		)
	case strategy.KindRejected:
		d.metrics.Rejections.Inc()
		row := journal.RejectRow(ev, d.strikes)
		d.rec.Append(row)
		d.pg.Enqueue(row)
		d.log.Warn("trade rejected", zap.Float64("net_credit", ev.NetCredit))
		d.notify(ctx, alerts.RejectMessage(ev))
	case strategy.KindExited:
		d.metrics.Exits.Inc()
		d.metrics.PnL.Set(ev.PnL)
		rows := journal.ExitRows(ev, q, d.strikes, d.lotSize)
		d.rec.Append(rows...)
		d.pg.Enqueue(rows...)
		d.log.Info("trade exited",
			zap.String("reason", string(ev.Reason)),
			zap.Float64("pnl", ev.PnL),
		)
		d.notify(ctx, alerts.ExitMessage(ev))
	}
	d.hub.Publish(ev)
}

// notify sends best-effort. A canceled session context must not block the
// final messages, so sends get their own short deadline.
func (d *driver) notify(ctx context.Context, message string) {
	if d.notifier == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := d.notifier.Send(sendCtx, message); err != nil {
		d.log.Warn("alert send failed", zap.Error(err))
	}
}
