// Package journal collects the append-only trade log for one session. Rows
// accumulate in memory and are flushed to CSV when the session ends; an
// optional Postgres sink mirrors rows as they are appended.
package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"condor-bot/internal/config"
	"condor-bot/internal/strategy"
)

// Entry is one observational row. The engine never reads these back.
type Entry struct {
	Time       time.Time `json:"timestamp" msgpack:"timestamp"`
	Event      string    `json:"event" msgpack:"event"`
	Instrument string    `json:"instrument" msgpack:"instrument"`
	Price      float64   `json:"price" msgpack:"price"`
	PnL        float64   `json:"pnl" msgpack:"pnl"`
	Commentary string    `json:"commentary" msgpack:"commentary"`
}

type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Append(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// FlushCSV writes all rows to path. Called once at session end.
func (r *Recorder) FlushCSV(path string) error {
	entries := r.Entries()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"timestamp", "event", "instrument", "price", "pnl", "commentary"}); err != nil {
		return err
	}
	for _, e := range entries {
		row := []string{
			e.Time.Format(time.RFC3339),
			e.Event,
			e.Instrument,
			strconv.FormatFloat(e.Price, 'f', 2, 64),
			strconv.FormatFloat(e.PnL, 'f', 2, 64),
			e.Commentary,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// InstrumentName builds the journal identifier for a leg, e.g. SELL_CE_23300.
func InstrumentName(role strategy.LegRole, strikes config.Strikes) string {
	return fmt.Sprintf("%s_%d", role, strikeFor(role, strikes))
}

func strikeFor(role strategy.LegRole, strikes config.Strikes) int {
	switch role {
	case strategy.LegShortCall:
		return strikes.ShortCall
	case strategy.LegLongCall:
		return strikes.LongCall
	case strategy.LegShortPut:
		return strikes.ShortPut
	case strategy.LegLongPut:
		return strikes.LongPut
	}
	return 0
}

// EntryRows expands an Entered event into one row per leg at its entry price.
func EntryRows(ev strategy.Event, strikes config.Strikes) []Entry {
	comment := fmt.Sprintf("Trade entered. Spot at %.2f, net credit %.2f", ev.Spot, ev.NetCredit)
	rows := make([]Entry, 0, 4)
	for _, role := range strategy.Legs() {
		rows = append(rows, Entry{
			Time:       ev.Time,
			Event:      "ENTER",
			Instrument: InstrumentName(role, strikes),
			Price:      ev.Book[role],
			Commentary: comment,
		})
	}
	return rows
}

// ExitRows expands an Exited event into one row per leg with its last price
// and lot-scaled contribution. The quote may be unusable when the exit was
// forced; missing leg prices fall back to the entry price.
func ExitRows(ev strategy.Event, q strategy.Quote, strikes config.Strikes, lotSize float64) []Entry {
	comment := fmt.Sprintf("Exit: %s. Final P&L %.2f", ev.Reason, ev.PnL)
	rows := make([]Entry, 0, 4)
	for _, role := range strategy.Legs() {
		entry := ev.Book[role]
		current := entry
		if q.Legs[role] != nil {
			current = *q.Legs[role]
		}
		rows = append(rows, Entry{
			Time:       ev.Time,
			Event:      "EXIT",
			Instrument: InstrumentName(role, strikes),
			Price:      current,
			PnL:        strategy.LegPnL(role, entry, current) * lotSize,
			Commentary: comment,
		})
	}
	return rows
}

// RejectRow records a terminal entry rejection.
func RejectRow(ev strategy.Event, strikes config.Strikes) Entry {
	return Entry{
		Time:       ev.Time,
		Event:      "REJECTED",
		Instrument: InstrumentName(strategy.LegShortCall, strikes),
		Price:      ev.Spot,
		PnL:        0,
		Commentary: fmt.Sprintf("Trade rejected: net credit %.2f", ev.NetCredit),
	}
}
