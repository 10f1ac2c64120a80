// Command backtest replays one synthesized market day through the trade
// engine: per-leg daily OHLC CSVs are interpolated into a minute feed, the
// engine applies the credit-fraction exit policy, and the session log is
// written out the same way the live bot writes it.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"condor-bot/internal/backtest"
	"condor-bot/internal/config"
	"condor-bot/internal/journal"
	"condor-bot/internal/logging"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

var legFiles = map[strategy.LegRole]string{
	strategy.LegShortCall: "sell_ce_data.csv",
	strategy.LegLongCall:  "buy_ce_data.csv",
	strategy.LegShortPut:  "sell_pe_data.csv",
	strategy.LegLongPut:   "buy_pe_data.csv",
}

func main() {
	dataDir := flag.String("data", "test_case_1", "directory with per-leg OHLC CSVs")
	dateStr := flag.String("date", "", "session date (YYYY-MM-DD)")
	spotOpen := flag.Float64("spot-open", 0, "index open price")
	spotClose := flag.Float64("spot-close", 0, "index close price")
	outPath := flag.String("out", "backtest_log.csv", "trade log output path")
	entryStart := flag.String("entry", "09:45", "entry window start")
	squareOff := flag.String("square-off", "15:10", "end-of-day exit cutoff")
	targetPct := flag.Float64("target-pct", 0.40, "profit target as fraction of net credit")
	stopPct := flag.Float64("stop-pct", 0.80, "stop loss as fraction of net credit")
	shortCall := flag.Int("short-call", 0, "sold call strike (journal label only)")
	longCall := flag.Int("long-call", 0, "bought call strike (journal label only)")
	shortPut := flag.Int("short-put", 0, "sold put strike (journal label only)")
	longPut := flag.Int("long-put", 0, "bought put strike (journal label only)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.New(config.LoggingConfig{Level: *logLevel})

	if *dateStr == "" || *spotOpen <= 0 || *spotClose <= 0 {
		fmt.Fprintln(os.Stderr, "usage: backtest -date YYYY-MM-DD -spot-open N -spot-close N [-data DIR]")
		os.Exit(2)
	}
	date, err := time.Parse("2006-01-02", *dateStr)
	if err != nil {
		fatal(log, "invalid date", err)
	}
	entryAt, err := config.ParseDayTime(*entryStart)
	if err != nil {
		fatal(log, "invalid entry time", err)
	}
	squareOffAt, err := config.ParseDayTime(*squareOff)
	if err != nil {
		fatal(log, "invalid square-off time", err)
	}

	legs := make(map[strategy.LegRole]backtest.LegOHLC, 4)
	for role, name := range legFiles {
		path := filepath.Join(*dataDir, name)
		ohlc, err := backtest.LoadLegCSV(path)
		if err != nil {
			fatal(log, "failed to load leg data", err)
		}
		log.Info("loaded leg data",
			zap.String("file", path),
			zap.Float64("open", ohlc.Open),
			zap.Float64("close", ohlc.Close),
		)
		legs[role] = ohlc
	}

	quotes, err := backtest.Synthesize(backtest.FeedSpec{
		Date:      date,
		SpotOpen:  *spotOpen,
		SpotClose: *spotClose,
		Legs:      legs,
	})
	if err != nil {
		fatal(log, "failed to synthesize feed", err)
	}

	// The replay reports unscaled per-unit P&L, so the lot multiplier is 1.
	engine, err := strategy.NewEngine(strategy.EngineConfig{
		EntryStart:  entryAt,
		SquareOff:   squareOffAt,
		MarketClose: config.MustDayTime("15:30"),
		LotSize:     1,
		Gate:        strategy.TimeOnlyGate{},
		Thresholds:  strategy.CreditFraction{TargetPct: *targetPct, StopPct: *stopPct},
	}, backtest.NopPersister{})
	if err != nil {
		fatal(log, "failed to build engine", err)
	}

	strikes := config.Strikes{
		ShortCall: *shortCall,
		LongCall:  *longCall,
		ShortPut:  *shortPut,
		LongPut:   *longPut,
	}
	rec := journal.NewRecorder()
	summary, err := backtest.Run(engine, quotes, rec, strikes, 1, log)
	if err != nil {
		fatal(log, "backtest failed", err)
	}

	if rec.Len() > 0 {
		if err := rec.FlushCSV(*outPath); err != nil {
			fatal(log, "failed to save trade log", err)
		}
		log.Info("trade log saved", zap.String("path", *outPath))
	}

	fmt.Println("--- Backtest Summary ---")
	fmt.Printf("Session date: %s\n", date.Format("2006-01-02"))
	switch {
	case summary.Rejected:
		fmt.Printf("Trade REJECTED: net credit %.2f\n", summary.NetCredit)
	case summary.Entered && summary.Reason != "":
		fmt.Printf("Entry time:   %s\n", summary.EntryTime.Format("15:04"))
		fmt.Printf("Exit time:    %s\n", summary.ExitTime.Format("15:04"))
		fmt.Printf("Exit reason:  %s\n", summary.Reason)
		fmt.Printf("Net credit:   %.2f\n", summary.NetCredit)
		fmt.Printf("Total P&L:    %.2f\n", summary.FinalPnL)
	case summary.Entered:
		fmt.Println("Trade entered but never exited; check session bounds.")
	default:
		fmt.Println("No trade was executed.")
	}
}

func fatal(log *zap.Logger, msg string, err error) {
	log.Error(msg, zap.Error(err))
	os.Exit(1)
}
