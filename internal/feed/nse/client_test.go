package nse

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"condor-bot/internal/config"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

var testStrikes = config.Strikes{
	ShortCall: 23300, LongCall: 23400,
	ShortPut: 22800, LongPut: 22700,
}

const chainJSON = `{"filtered":{"data":[
	{"strikePrice":22700,"CE":{"lastPrice":310.0},"PE":{"lastPrice":35.0}},
	{"strikePrice":22800,"CE":{"lastPrice":250.5},"PE":{"lastPrice":90.0}},
	{"strikePrice":23300,"CE":{"lastPrice":100.0},"PE":{"lastPrice":280.0}},
	{"strikePrice":23400,"CE":{"lastPrice":40.0},"PE":null}
]}}`

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(config.FeedConfig{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
		Index:   "NIFTY 50",
		Symbol:  "NIFTY",
	}, testStrikes, zap.NewNop())
	return c, srv
}

func TestFetchBuildsQuote(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/equity-stockIndices"):
			if got := r.URL.Query().Get("index"); got != "NIFTY 50" {
				t.Errorf("index param = %q", got)
			}
			fmt.Fprint(w, `{"data":[{"lastPrice":23012.35}]}`)
		case strings.HasPrefix(r.URL.Path, "/api/option-chain-indices"):
			if got := r.URL.Query().Get("symbol"); got != "NIFTY" {
				t.Errorf("symbol param = %q", got)
			}
			fmt.Fprint(w, chainJSON)
		default:
			http.NotFound(w, r)
		}
	}))
	fixed := time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	q, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !q.Time.Equal(fixed) {
		t.Fatalf("quote time = %s, want %s", q.Time, fixed)
	}
	if q.Spot == nil || *q.Spot != 23012.35 {
		t.Fatalf("spot = %v, want 23012.35", q.Spot)
	}
	if !q.Usable() {
		t.Fatalf("quote should be usable: %+v", q)
	}
	if *q.Legs[strategy.LegShortCall] != 100.0 {
		t.Fatalf("short call = %.2f, want 100", *q.Legs[strategy.LegShortCall])
	}
	if *q.Legs[strategy.LegLongCall] != 40.0 {
		t.Fatalf("long call = %.2f, want 40", *q.Legs[strategy.LegLongCall])
	}
	if *q.Legs[strategy.LegShortPut] != 90.0 {
		t.Fatalf("short put = %.2f, want 90", *q.Legs[strategy.LegShortPut])
	}
	if *q.Legs[strategy.LegLongPut] != 35.0 {
		t.Fatalf("long put = %.2f, want 35", *q.Legs[strategy.LegLongPut])
	}
}

func TestFetchPartialFailureLeavesFieldsNil(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/equity-stockIndices") {
			http.Error(w, "upstream busy", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chainJSON)
	}))

	q, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch should not fail on a transient upstream error: %v", err)
	}
	if q.Spot != nil {
		t.Fatal("spot should be nil when the index endpoint fails")
	}
	if q.Usable() {
		t.Fatal("quote without spot must not be usable")
	}
	if q.Legs[strategy.LegShortCall] == nil {
		t.Fatal("leg prices should still resolve")
	}
}

func TestFetchMissingStrikeLeavesLegNil(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/equity-stockIndices") {
			fmt.Fprint(w, `{"data":[{"lastPrice":23000}]}`)
			return
		}
		// Chain without the 23400 strike; its PE is null at 23400 anyway.
		fmt.Fprint(w, `{"filtered":{"data":[
			{"strikePrice":23300,"CE":{"lastPrice":100.0},"PE":null}
		]}}`)
	}))

	q, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if q.Legs[strategy.LegLongCall] != nil {
		t.Fatal("absent strike should leave the leg nil")
	}
	if q.Usable() {
		t.Fatal("quote with missing legs must not be usable")
	}
}

func TestWarmup(t *testing.T) {
	var warmed bool
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		warmed = true
		if r.Header.Get("User-Agent") == "" {
			t.Error("warmup request missing browser headers")
		}
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "session"})
	}))
	if err := c.Warmup(context.Background()); err != nil {
		t.Fatalf("Warmup: %v", err)
	}
	if !warmed {
		t.Fatal("warmup never hit the server")
	}
}

func TestWarmupFailure(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	if err := c.Warmup(context.Background()); err == nil {
		t.Fatal("expected warmup error on http 403")
	}
}
