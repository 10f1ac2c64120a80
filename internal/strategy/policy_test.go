package strategy

import (
	"testing"

	"condor-bot/internal/config"
)

func TestCreditFractionDerive(t *testing.T) {
	p := CreditFraction{TargetPct: 0.40, StopPct: 0.80}
	th, ok := p.Derive(115)
	if !ok {
		t.Fatal("positive credit should derive thresholds")
	}
	if th.ProfitTarget != 46 || th.StopLoss != 92 {
		t.Fatalf("thresholds = %+v, want 46/92", th)
	}
	if _, ok := p.Derive(0); ok {
		t.Fatal("zero credit must be rejected")
	}
	if _, ok := p.Derive(-10); ok {
		t.Fatal("negative credit must be rejected")
	}
}

func TestPerLotDerive(t *testing.T) {
	p := PerLot{ProfitTarget: 2000, StopLoss: 3000}
	th, ok := p.Derive(-5)
	if !ok {
		t.Fatal("per-lot policy never rejects at entry")
	}
	if th.ProfitTarget != 2000 || th.StopLoss != 3000 {
		t.Fatalf("thresholds = %+v, want 2000/3000", th)
	}
}

func TestSpotRangeGate(t *testing.T) {
	g := SpotRangeGate{Band: config.Range{Min: 22900, Max: 23100}}
	for _, tc := range []struct {
		spot float64
		want bool
	}{
		{23000, true},
		{22900, true},
		{23100, true},
		{22899.95, false},
		{23500, false},
	} {
		if got := g.Allow(tc.spot); got != tc.want {
			t.Fatalf("Allow(%.2f) = %v, want %v", tc.spot, got, tc.want)
		}
	}
}

func TestGateFromConfig(t *testing.T) {
	g, err := GateFromConfig(config.StrategyConfig{EntryGate: config.GateTimeOnly})
	if err != nil {
		t.Fatalf("GateFromConfig: %v", err)
	}
	if _, ok := g.(TimeOnlyGate); !ok {
		t.Fatalf("gate = %T, want TimeOnlyGate", g)
	}

	g, err = GateFromConfig(config.StrategyConfig{
		EntryGate:  config.GateSpotRange,
		EntryRange: config.Range{Min: 1, Max: 2},
	})
	if err != nil {
		t.Fatalf("GateFromConfig: %v", err)
	}
	if _, ok := g.(SpotRangeGate); !ok {
		t.Fatalf("gate = %T, want SpotRangeGate", g)
	}

	if _, err := GateFromConfig(config.StrategyConfig{EntryGate: "bogus"}); err == nil {
		t.Fatal("expected error for unknown gate")
	}
}

func TestThresholdsFromConfig(t *testing.T) {
	p, err := ThresholdsFromConfig(config.ThresholdConfig{
		Mode: config.ThresholdCreditFraction, TargetPct: 0.5, StopPct: 1,
	})
	if err != nil {
		t.Fatalf("ThresholdsFromConfig: %v", err)
	}
	if _, ok := p.(CreditFraction); !ok {
		t.Fatalf("policy = %T, want CreditFraction", p)
	}

	p, err = ThresholdsFromConfig(config.ThresholdConfig{
		Mode: config.ThresholdPerLot, ProfitTarget: 2000, StopLoss: 3000,
	})
	if err != nil {
		t.Fatalf("ThresholdsFromConfig: %v", err)
	}
	if _, ok := p.(PerLot); !ok {
		t.Fatalf("policy = %T, want PerLot", p)
	}

	if _, err := ThresholdsFromConfig(config.ThresholdConfig{Mode: "bogus"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
