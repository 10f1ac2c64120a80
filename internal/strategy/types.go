package strategy

import "time"

// LegRole identifies one of the four legs of the condor. The set is fixed;
// the string values double as journal instrument prefixes and as keys in
// the persisted position book.
type LegRole string

const (
	LegShortCall LegRole = "SELL_CE"
	LegLongCall  LegRole = "BUY_CE"
	LegShortPut  LegRole = "SELL_PE"
	LegLongPut   LegRole = "BUY_PE"
)

// Legs returns the four roles in journal order.
func Legs() [4]LegRole {
	return [4]LegRole{LegShortCall, LegLongCall, LegShortPut, LegLongPut}
}

// IsShort reports whether the role is a sold leg.
func (r LegRole) IsShort() bool {
	return r == LegShortCall || r == LegShortPut
}

// Quote is one decision cycle's snapshot of the market. Spot and the leg
// prices are pointers so the feed can represent fields it failed to resolve.
type Quote struct {
	Time time.Time
	Spot *float64
	Legs map[LegRole]*float64
}

// Usable reports whether every field the engine needs is present.
func (q Quote) Usable() bool {
	if q.Spot == nil {
		return false
	}
	for _, role := range Legs() {
		if q.Legs[role] == nil {
			return false
		}
	}
	return true
}

// PositionBook holds the entry price per leg, captured once at entry.
type PositionBook map[LegRole]float64

// Complete reports whether all four legs are present.
func (b PositionBook) Complete() bool {
	for _, role := range Legs() {
		if _, ok := b[role]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy so snapshots never alias engine state.
func (b PositionBook) Clone() PositionBook {
	if b == nil {
		return nil
	}
	out := make(PositionBook, len(b))
	for role, price := range b {
		out[role] = price
	}
	return out
}

type State string

const (
	StateIdle   State = "IDLE"
	StateActive State = "ACTIVE"
	StateClosed State = "CLOSED"
)

type EventKind string

const (
	// KindWaiting means the entry gate has not opened; no transition.
	KindWaiting EventKind = "WAITING"
	// KindDataUnavailable means the quote was unusable; no transition.
	KindDataUnavailable EventKind = "DATA_UNAVAILABLE"
	KindEntered         EventKind = "ENTERED"
	KindRejected        EventKind = "REJECTED"
	KindHolding         EventKind = "HOLDING"
	KindExited          EventKind = "EXITED"
)

// Terminal reports whether the event ends the session.
func (k EventKind) Terminal() bool {
	return k == KindRejected || k == KindExited
}

type ExitReason string

const (
	ExitProfitTarget ExitReason = "PROFIT_TARGET"
	ExitStopLoss     ExitReason = "STOP_LOSS"
	ExitEndOfDay     ExitReason = "END_OF_DAY"
	ExitMarketClosed ExitReason = "MARKET_CLOSED"
)

// Event is the engine's verdict for one quote.
type Event struct {
	Kind      EventKind
	Time      time.Time
	Spot      float64
	PnL       float64
	NetCredit float64
	Reason    ExitReason
	Book      PositionBook
	Note      string
}
