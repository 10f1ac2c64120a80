package alerts

import (
	"fmt"
	"strings"

	"condor-bot/internal/config"
	"condor-bot/internal/strategy"
)

// Message builders for the operator channel. Kept together so the wording
// stays consistent between startup, entry, exit and failure paths.

func StartupMessage(label, index string) string {
	return fmt.Sprintf("Trading bot initialized\nStrategy: %s\nWatching %s.", label, index)
}

func RestartMessage() string {
	return "Bot restarted. Loading existing trade state..."
}

func MorningMessage(cfg config.StrategyConfig, index string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good morning. %s session plan for %s\n", cfg.Label, index)
	fmt.Fprintf(&b, "Strikes: SELL CE %d / BUY CE %d / SELL PE %d / BUY PE %d\n",
		cfg.Strikes.ShortCall, cfg.Strikes.LongCall, cfg.Strikes.ShortPut, cfg.Strikes.LongPut)
	if cfg.EntryGate == config.GateSpotRange {
		fmt.Fprintf(&b, "Entry range: %.2f - %.2f from %s", cfg.EntryRange.Min, cfg.EntryRange.Max, cfg.EntryStart)
	} else {
		fmt.Fprintf(&b, "Entry from %s", cfg.EntryStart)
	}
	return b.String()
}

func EntryMessage(label string, ev strategy.Event, strikes config.Strikes) string {
	var b strings.Builder
	b.WriteString("--- TRADE ENTERED ---\n")
	fmt.Fprintf(&b, "Strategy: %s\n", label)
	fmt.Fprintf(&b, "Spot price: %.2f\n", ev.Spot)
	fmt.Fprintf(&b, "Net credit: %.2f\n\n", ev.NetCredit)
	b.WriteString("Positions entered:\n")
	fmt.Fprintf(&b, "- SELL CE %d @ %.2f\n", strikes.ShortCall, ev.Book[strategy.LegShortCall])
	fmt.Fprintf(&b, "- BUY CE %d @ %.2f\n", strikes.LongCall, ev.Book[strategy.LegLongCall])
	fmt.Fprintf(&b, "- SELL PE %d @ %.2f\n", strikes.ShortPut, ev.Book[strategy.LegShortPut])
	fmt.Fprintf(&b, "- BUY PE %d @ %.2f", strikes.LongPut, ev.Book[strategy.LegLongPut])
	return b.String()
}

func ExitMessage(ev strategy.Event) string {
	return fmt.Sprintf("--- TRADE EXITED ---\nReason: %s\nFinal P&L: %.2f\nSpot price: %.2f",
		ev.Reason, ev.PnL, ev.Spot)
}

func RejectMessage(ev strategy.Event) string {
	return fmt.Sprintf("--- TRADE REJECTED ---\nNet credit %.2f is not positive; no position taken.", ev.NetCredit)
}

func ShutdownMessage(tradeActive bool) string {
	if tradeActive {
		return "Market is closed. Open position squared off; bot shutting down."
	}
	return "Market is closed. Trading bot shutting down."
}

func CriticalMessage(err error) string {
	return fmt.Sprintf("CRITICAL: %v. Shutting down.", err)
}
