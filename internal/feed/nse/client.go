// Package nse polls the public NSE endpoints for the index spot price and
// the option-chain LTPs of the four configured strikes. The API fronts a
// browser site, so the client keeps a cookie jar and performs a warm-up
// request before the first fetch.
package nse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"condor-bot/internal/config"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
)

type Client struct {
	baseURL string
	index   string
	symbol  string
	strikes config.Strikes
	http    *http.Client
	log     *zap.Logger
	now     func() time.Time
}

func New(cfg config.FeedConfig, strikes config.Strikes, log *zap.Logger) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: cfg.BaseURL,
		index:   cfg.Index,
		symbol:  cfg.Symbol,
		strikes: strikes,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Jar:     jar,
		},
		log: log,
		now: time.Now,
	}
}

// Warmup establishes the session cookies. A failure here is fatal for the
// session; transient failures later are handled per fetch.
func (c *Client) Warmup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	setBrowserHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("feed warmup: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("feed warmup: http %d", resp.StatusCode)
	}
	return nil
}

// Fetch builds the cycle's quote. Any field it cannot resolve stays nil.
func (c *Client) Fetch(ctx context.Context) (strategy.Quote, error) {
	q := strategy.Quote{
		Time: c.now(),
		Legs: make(map[strategy.LegRole]*float64, 4),
	}
	if spot, err := c.fetchSpot(ctx); err != nil {
		c.log.Warn("spot fetch failed", zap.Error(err))
	} else {
		q.Spot = &spot
	}
	if err := c.fetchLegs(ctx, &q); err != nil {
		c.log.Warn("option chain fetch failed", zap.Error(err))
	}
	return q, nil
}

type indexQuoteResponse struct {
	Data []struct {
		LastPrice float64 `json:"lastPrice"`
	} `json:"data"`
}

func (c *Client) fetchSpot(ctx context.Context) (float64, error) {
	path := "/api/equity-stockIndices?index=" + url.QueryEscape(c.index)
	var out indexQuoteResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return 0, err
	}
	if len(out.Data) == 0 {
		return 0, fmt.Errorf("no data for index %q", c.index)
	}
	return out.Data[0].LastPrice, nil
}

type optionChainResponse struct {
	Filtered struct {
		Data []struct {
			StrikePrice int          `json:"strikePrice"`
			CE          *optionQuote `json:"CE"`
			PE          *optionQuote `json:"PE"`
		} `json:"data"`
	} `json:"filtered"`
}

type optionQuote struct {
	LastPrice float64 `json:"lastPrice"`
}

func (c *Client) fetchLegs(ctx context.Context, q *strategy.Quote) error {
	path := "/api/option-chain-indices?symbol=" + url.QueryEscape(c.symbol)
	var out optionChainResponse
	if err := c.getJSON(ctx, path, &out); err != nil {
		return err
	}
	for _, row := range out.Filtered.Data {
		if row.CE != nil {
			switch row.StrikePrice {
			case c.strikes.ShortCall:
				price := row.CE.LastPrice
				q.Legs[strategy.LegShortCall] = &price
			case c.strikes.LongCall:
				price := row.CE.LastPrice
				q.Legs[strategy.LegLongCall] = &price
			}
		}
		if row.PE != nil {
			switch row.StrikePrice {
			case c.strikes.ShortPut:
				price := row.PE.LastPrice
				q.Legs[strategy.LegShortPut] = &price
			case c.strikes.LongPut:
				price := row.PE.LastPrice
				q.Legs[strategy.LegLongPut] = &price
			}
		}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	setBrowserHeaders(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
}
