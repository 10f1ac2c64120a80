package backtest

import (
	"time"

	"condor-bot/internal/config"
	"condor-bot/internal/journal"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

// NopPersister satisfies the engine's persistence contract for replay
// sessions, which have nothing durable to restore.
type NopPersister struct{}

func (NopPersister) SaveActive(strategy.PositionBook) error { return nil }

func (NopPersister) Clear() error { return nil }

// Summary is the outcome of one replayed session.
type Summary struct {
	Entered   bool
	Rejected  bool
	EntryTime time.Time
	ExitTime  time.Time
	NetCredit float64
	FinalPnL  float64
	Reason    strategy.ExitReason
}

// Run replays the quote series through the engine, journaling lifecycle
// events, and stops at the first terminal event.
func Run(eng *strategy.Engine, quotes []strategy.Quote, rec *journal.Recorder, strikes config.Strikes, lotSize float64, log *zap.Logger) (Summary, error) {
	var summary Summary
	for _, q := range quotes {
		ev, err := eng.Evaluate(q)
		if err != nil {
			return summary, err
		}
		switch ev.Kind {
		case strategy.KindEntered:
			summary.Entered = true
			summary.EntryTime = ev.Time
			summary.NetCredit = ev.NetCredit
			rec.Append(journal.EntryRows(ev, strikes)...)
			log.Info("trade entered",
				zap.Time("at", ev.Time),
				zap.Float64("spot", ev.Spot),
				zap.Float64("net_credit", ev.NetCredit),
			)
		case strategy.KindRejected:
			summary.Rejected = true
			summary.ExitTime = ev.Time
			summary.NetCredit = ev.NetCredit
			rec.Append(journal.RejectRow(ev, strikes))
			log.Info("trade rejected", zap.Float64("net_credit", ev.NetCredit))
			return summary, nil
		case strategy.KindExited:
			summary.ExitTime = ev.Time
			summary.FinalPnL = ev.PnL
			summary.Reason = ev.Reason
			rec.Append(journal.ExitRows(ev, q, strikes, lotSize)...)
			log.Info("trade exited",
				zap.Time("at", ev.Time),
				zap.String("reason", string(ev.Reason)),
				zap.Float64("pnl", ev.PnL),
			)
			return summary, nil
		}
	}
	return summary, nil
}
