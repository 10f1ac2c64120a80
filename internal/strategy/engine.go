package strategy

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"condor-bot/internal/config"
)

// Persister is the durable-state contract the engine drives: SaveActive the
// instant the position opens, Clear the instant it closes. Implementations
// must replace the record atomically.
type Persister interface {
	SaveActive(book PositionBook) error
	Clear() error
}

// EngineConfig parameterizes the differences between the backtest and live
// deployments; the transition rules themselves are shared.
type EngineConfig struct {
	EntryStart  config.DayTime
	SquareOff   config.DayTime // end-of-day exit cutoff
	MarketClose config.DayTime
	LotSize     float64
	Gate        EntryGate
	Thresholds  ThresholdPolicy
	// StopBand, when set, exits with StopLoss once spot leaves the band
	// (live variant). Nil disables the rule.
	StopBand *config.Range
}

// Engine is the trade lifecycle state machine. One instance handles one
// session; Evaluate is safe for concurrent use with Snapshot so status
// readers never observe a half-updated book.
type Engine struct {
	mu      sync.Mutex
	cfg     EngineConfig
	persist Persister

	state      State
	book       PositionBook
	thresholds Thresholds
	netCredit  float64
	lastPnL    float64
	lastSpot   float64
}

func NewEngine(cfg EngineConfig, persist Persister) (*Engine, error) {
	if cfg.LotSize <= 0 {
		return nil, errors.New("lot size must be > 0")
	}
	if cfg.Gate == nil || cfg.Thresholds == nil {
		return nil, errors.New("entry gate and threshold policy are required")
	}
	if persist == nil {
		return nil, errors.New("persister is required")
	}
	return &Engine{cfg: cfg, persist: persist, state: StateIdle}, nil
}

// Resume restores an Active position from persisted state. A book missing
// any leg is refused so a partial record can never be trusted.
func (e *Engine) Resume(book PositionBook) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateIdle {
		return fmt.Errorf("cannot resume from state %s", e.state)
	}
	if !book.Complete() {
		return errors.New("position book is incomplete")
	}
	credit := NetCredit(book)
	th, ok := e.cfg.Thresholds.Derive(credit)
	if !ok {
		return fmt.Errorf("persisted book derives no thresholds (net credit %.2f)", credit)
	}
	e.book = book.Clone()
	e.netCredit = credit
	e.thresholds = th
	e.state = StateActive
	return nil
}

// Evaluate consumes one quote and returns the lifecycle event it produced.
// The returned error is a persistence failure; the transition itself has
// already happened and the event reflects it.
func (e *Engine) Evaluate(q Quote) (Event, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !q.Usable() {
		return Event{Kind: KindDataUnavailable, Time: q.Time}, nil
	}
	switch e.state {
	case StateIdle:
		return e.tryEnter(q)
	case StateActive:
		return e.monitor(q)
	default:
		return Event{Kind: KindWaiting, Time: q.Time, Note: "session closed"}, nil
	}
}

func (e *Engine) tryEnter(q Quote) (Event, error) {
	spot := *q.Spot
	e.lastSpot = spot
	if e.cfg.EntryStart.After(q.Time) {
		return Event{
			Kind: KindWaiting,
			Time: q.Time,
			Spot: spot,
			Note: fmt.Sprintf("waiting for entry window %s", e.cfg.EntryStart),
		}, nil
	}
	if !e.cfg.Gate.Allow(spot) {
		return Event{
			Kind: KindWaiting,
			Time: q.Time,
			Spot: spot,
			Note: "spot outside entry range",
		}, nil
	}

	book := make(PositionBook, 4)
	for _, role := range Legs() {
		book[role] = *q.Legs[role]
	}
	credit := NetCredit(book)
	th, ok := e.cfg.Thresholds.Derive(credit)
	if !ok {
		e.state = StateClosed
		return Event{
			Kind:      KindRejected,
			Time:      q.Time,
			Spot:      spot,
			NetCredit: credit,
			Note:      fmt.Sprintf("non-positive net credit %.2f", credit),
		}, nil
	}

	e.book = book
	e.netCredit = credit
	e.thresholds = th
	e.state = StateActive
	err := e.persist.SaveActive(book.Clone())
	return Event{
		Kind:      KindEntered,
		Time:      q.Time,
		Spot:      spot,
		NetCredit: credit,
		Book:      book.Clone(),
	}, err
}

func (e *Engine) monitor(q Quote) (Event, error) {
	spot := *q.Spot
	pnl := MarkToMarket(e.book, q) * e.cfg.LotSize
	e.lastPnL = pnl
	e.lastSpot = spot

	reason := e.exitReason(q.Time, spot, pnl)
	if reason == "" {
		return Event{
			Kind:      KindHolding,
			Time:      q.Time,
			Spot:      spot,
			PnL:       pnl,
			NetCredit: e.netCredit,
		}, nil
	}
	return e.close(q.Time, spot, pnl, reason)
}

// exitReason evaluates the exit rules in strict priority order.
func (e *Engine) exitReason(now time.Time, spot, pnl float64) ExitReason {
	switch {
	case pnl >= e.thresholds.ProfitTarget:
		return ExitProfitTarget
	case pnl <= -e.thresholds.StopLoss:
		return ExitStopLoss
	case e.cfg.StopBand != nil && !e.cfg.StopBand.Contains(spot):
		return ExitStopLoss
	case e.cfg.SquareOff.AtOrBefore(now):
		return ExitEndOfDay
	case e.cfg.MarketClose.AtOrBefore(now):
		return ExitMarketClosed
	}
	return ""
}

func (e *Engine) close(now time.Time, spot, pnl float64, reason ExitReason) (Event, error) {
	e.state = StateClosed
	err := e.persist.Clear()
	return Event{
		Kind:      KindExited,
		Time:      now,
		Spot:      spot,
		PnL:       pnl,
		NetCredit: e.netCredit,
		Reason:    reason,
		Book:      e.book.Clone(),
	}, err
}

// ForceClose terminates an open position without a quote, used when the
// market closes before any exit rule fired. The final P&L is the last
// mark-to-market figure. Returns closed=false when nothing was open.
func (e *Engine) ForceClose(now time.Time) (Event, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateActive {
		if e.state == StateIdle {
			e.state = StateClosed
		}
		return Event{}, false, nil
	}
	ev, err := e.close(now, e.lastSpot, e.lastPnL, ExitMarketClosed)
	return ev, true, err
}

// Snapshot is a consistent read-only view for the status surface.
type Snapshot struct {
	State      State
	Book       PositionBook
	NetCredit  float64
	PnL        float64
	Spot       float64
	Thresholds Thresholds
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:      e.state,
		Book:       e.book.Clone(),
		NetCredit:  e.netCredit,
		PnL:        e.lastPnL,
		Spot:       e.lastSpot,
		Thresholds: e.thresholds,
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}
