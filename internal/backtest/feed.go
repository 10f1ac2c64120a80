// Package backtest synthesizes an intraday quote feed from daily OHLC data
// and replays it through the trade engine. Each leg's price walks linearly
// from its session open to its session close, one quote per minute.
package backtest

import (
	"errors"
	"time"

	"condor-bot/internal/strategy"
)

// LegOHLC is the slice of a daily bar the synthesizer needs.
type LegOHLC struct {
	Open  float64
	Close float64
}

// FeedSpec describes one synthesized session.
type FeedSpec struct {
	Date      time.Time
	SpotOpen  float64
	SpotClose float64
	Legs      map[strategy.LegRole]LegOHLC

	// Session bounds; defaults are the NSE cash session 09:15-15:30.
	StartHour, StartMinute int
	EndHour, EndMinute     int
}

func (s *FeedSpec) applyDefaults() {
	if s.StartHour == 0 && s.StartMinute == 0 {
		s.StartHour, s.StartMinute = 9, 15
	}
	if s.EndHour == 0 && s.EndMinute == 0 {
		s.EndHour, s.EndMinute = 15, 30
	}
}

// Synthesize builds the minute-by-minute quote series, endpoints inclusive.
func Synthesize(spec FeedSpec) ([]strategy.Quote, error) {
	spec.applyDefaults()
	for _, role := range strategy.Legs() {
		if _, ok := spec.Legs[role]; !ok {
			return nil, errors.New("all four legs need OHLC data")
		}
	}
	start := time.Date(spec.Date.Year(), spec.Date.Month(), spec.Date.Day(),
		spec.StartHour, spec.StartMinute, 0, 0, spec.Date.Location())
	end := time.Date(spec.Date.Year(), spec.Date.Month(), spec.Date.Day(),
		spec.EndHour, spec.EndMinute, 0, 0, spec.Date.Location())
	if !end.After(start) {
		return nil, errors.New("session end must be after start")
	}
	steps := int(end.Sub(start)/time.Minute) + 1

	quotes := make([]strategy.Quote, 0, steps)
	for i := 0; i < steps; i++ {
		spot := interpolate(spec.SpotOpen, spec.SpotClose, i, steps)
		q := strategy.Quote{
			Time: start.Add(time.Duration(i) * time.Minute),
			Spot: &spot,
			Legs: make(map[strategy.LegRole]*float64, 4),
		}
		for _, role := range strategy.Legs() {
			ohlc := spec.Legs[role]
			price := interpolate(ohlc.Open, ohlc.Close, i, steps)
			q.Legs[role] = &price
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}

// interpolate walks open→close over steps points, endpoints exact.
func interpolate(open, close float64, i, steps int) float64 {
	if steps <= 1 {
		return open
	}
	return open + (close-open)*float64(i)/float64(steps-1)
}
