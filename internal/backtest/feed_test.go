package backtest

import (
	"testing"
	"time"

	"condor-bot/internal/strategy"
)

func fullLegs(sc, lc, sp, lp LegOHLC) map[strategy.LegRole]LegOHLC {
	return map[strategy.LegRole]LegOHLC{
		strategy.LegShortCall: sc,
		strategy.LegLongCall:  lc,
		strategy.LegShortPut:  sp,
		strategy.LegLongPut:   lp,
	}
}

func TestSynthesizeFullSession(t *testing.T) {
	date := time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC)
	quotes, err := Synthesize(FeedSpec{
		Date:      date,
		SpotOpen:  23000,
		SpotClose: 23100,
		Legs: fullLegs(
			LegOHLC{Open: 100, Close: 60},
			LegOHLC{Open: 40, Close: 30},
			LegOHLC{Open: 90, Close: 50},
			LegOHLC{Open: 35, Close: 25},
		),
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	// 09:15 through 15:30 inclusive is 376 one-minute quotes.
	if len(quotes) != 376 {
		t.Fatalf("got %d quotes, want 376", len(quotes))
	}

	first, last := quotes[0], quotes[len(quotes)-1]
	if got := first.Time.Format("15:04"); got != "09:15" {
		t.Fatalf("first quote at %s, want 09:15", got)
	}
	if got := last.Time.Format("15:04"); got != "15:30" {
		t.Fatalf("last quote at %s, want 15:30", got)
	}
	if *first.Spot != 23000 || *last.Spot != 23100 {
		t.Fatalf("spot endpoints = %.2f/%.2f, want 23000/23100", *first.Spot, *last.Spot)
	}
	if *first.Legs[strategy.LegShortCall] != 100 || *last.Legs[strategy.LegShortCall] != 60 {
		t.Fatalf("short call endpoints = %.2f/%.2f, want 100/60",
			*first.Legs[strategy.LegShortCall], *last.Legs[strategy.LegShortCall])
	}
	for _, q := range quotes {
		if !q.Usable() {
			t.Fatalf("synthesized quote at %s is not usable", q.Time)
		}
	}
	// Minute spacing throughout.
	for i := 1; i < len(quotes); i++ {
		if quotes[i].Time.Sub(quotes[i-1].Time) != time.Minute {
			t.Fatalf("gap at index %d: %s", i, quotes[i].Time.Sub(quotes[i-1].Time))
		}
	}
}

func TestSynthesizeCustomBounds(t *testing.T) {
	quotes, err := Synthesize(FeedSpec{
		Date:      time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		SpotOpen:  100,
		SpotClose: 110,
		Legs: fullLegs(
			LegOHLC{Open: 10, Close: 10},
			LegOHLC{Open: 5, Close: 5},
			LegOHLC{Open: 10, Close: 10},
			LegOHLC{Open: 5, Close: 5},
		),
		StartHour: 10, StartMinute: 0,
		EndHour: 10, EndMinute: 10,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(quotes) != 11 {
		t.Fatalf("got %d quotes, want 11", len(quotes))
	}
	// Midpoint of an 11-step walk.
	if got := *quotes[5].Spot; got != 105 {
		t.Fatalf("midpoint spot = %.2f, want 105", got)
	}
}

func TestSynthesizeRejectsMissingLeg(t *testing.T) {
	legs := fullLegs(LegOHLC{}, LegOHLC{}, LegOHLC{}, LegOHLC{})
	delete(legs, strategy.LegLongPut)
	_, err := Synthesize(FeedSpec{
		Date:      time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		SpotOpen:  100,
		SpotClose: 110,
		Legs:      legs,
	})
	if err == nil {
		t.Fatal("expected error for missing leg")
	}
}

func TestSynthesizeRejectsInvertedSession(t *testing.T) {
	_, err := Synthesize(FeedSpec{
		Date:      time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		SpotOpen:  100,
		SpotClose: 110,
		Legs:      fullLegs(LegOHLC{}, LegOHLC{}, LegOHLC{}, LegOHLC{}),
		StartHour: 12, StartMinute: 0,
		EndHour: 11, EndMinute: 0,
	})
	if err == nil {
		t.Fatal("expected error for end before start")
	}
}

func TestInterpolate(t *testing.T) {
	if got := interpolate(100, 200, 0, 5); got != 100 {
		t.Fatalf("first point = %.2f, want 100", got)
	}
	if got := interpolate(100, 200, 4, 5); got != 200 {
		t.Fatalf("last point = %.2f, want 200", got)
	}
	if got := interpolate(100, 200, 2, 5); got != 150 {
		t.Fatalf("midpoint = %.2f, want 150", got)
	}
	if got := interpolate(100, 200, 0, 1); got != 100 {
		t.Fatalf("single step = %.2f, want open", got)
	}
}
