package strategy

import (
	"fmt"

	"condor-bot/internal/config"
)

// Thresholds is the precomputed exit pair the engine compares P&L against.
// Deriving it is a policy decision made once, at entry; the engine itself
// never recomputes thresholds.
type Thresholds struct {
	ProfitTarget float64
	StopLoss     float64
}

// ThresholdPolicy derives the exit thresholds from the net credit captured
// at entry. ok=false rejects the trade outright.
type ThresholdPolicy interface {
	Derive(netCredit float64) (th Thresholds, ok bool)
}

// CreditFraction expresses both thresholds as fractions of net credit and
// rejects trades whose net credit is not strictly positive.
type CreditFraction struct {
	TargetPct float64
	StopPct   float64
}

func (p CreditFraction) Derive(netCredit float64) (Thresholds, bool) {
	if netCredit <= 0 {
		return Thresholds{}, false
	}
	return Thresholds{
		ProfitTarget: netCredit * p.TargetPct,
		StopLoss:     netCredit * p.StopPct,
	}, true
}

// PerLot uses fixed currency thresholds against lot-scaled P&L and never
// rejects at entry.
type PerLot struct {
	ProfitTarget float64
	StopLoss     float64
}

func (p PerLot) Derive(float64) (Thresholds, bool) {
	return Thresholds{ProfitTarget: p.ProfitTarget, StopLoss: p.StopLoss}, true
}

// EntryGate decides whether the spot price may open a position. The time
// gate (entry-start) applies before any EntryGate is consulted.
type EntryGate interface {
	Allow(spot float64) bool
}

// TimeOnlyGate admits any spot once the entry window is open.
type TimeOnlyGate struct{}

func (TimeOnlyGate) Allow(float64) bool { return true }

// SpotRangeGate admits entry only while spot lies inside the band.
type SpotRangeGate struct {
	Band config.Range
}

func (g SpotRangeGate) Allow(spot float64) bool { return g.Band.Contains(spot) }

// GateFromConfig maps the configured entry-gate policy name.
func GateFromConfig(cfg config.StrategyConfig) (EntryGate, error) {
	switch cfg.EntryGate {
	case config.GateTimeOnly:
		return TimeOnlyGate{}, nil
	case config.GateSpotRange:
		return SpotRangeGate{Band: cfg.EntryRange}, nil
	default:
		return nil, fmt.Errorf("unknown entry gate %q", cfg.EntryGate)
	}
}

// ThresholdsFromConfig maps the configured threshold-derivation policy.
func ThresholdsFromConfig(cfg config.ThresholdConfig) (ThresholdPolicy, error) {
	switch cfg.Mode {
	case config.ThresholdCreditFraction:
		return CreditFraction{TargetPct: cfg.TargetPct, StopPct: cfg.StopPct}, nil
	case config.ThresholdPerLot:
		return PerLot{ProfitTarget: cfg.ProfitTarget, StopLoss: cfg.StopLoss}, nil
	default:
		return nil, fmt.Errorf("unknown threshold mode %q", cfg.Mode)
	}
}
