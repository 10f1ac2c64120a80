package app

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"condor-bot/internal/config"
	"condor-bot/internal/strategy"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

// statusResponse is the read-only session view served at /status. The
// engine is the sole writer; everything here comes from a consistent
// snapshot, never from live engine internals.
type statusResponse struct {
	State        strategy.State               `json:"state"`
	TradeActive  bool                         `json:"trade_active"`
	PositionBook map[strategy.LegRole]float64 `json:"position_book,omitempty"`
	PnL          float64                      `json:"pnl"`
	NetCredit    float64                      `json:"net_credit"`
	Spot         float64                      `json:"spot"`
	Status       string                       `json:"status"`
	UpdatedAt    time.Time                    `json:"updated_at"`
	LastSession  *lastSession                 `json:"last_session,omitempty"`
}

type lastSession struct {
	Label      string    `json:"label"`
	FinishedAt time.Time `json:"finished_at"`
	FinalPnL   float64   `json:"final_pnl"`
	Rows       int       `json:"rows"`
}

// StatusServer exposes the monitoring surface: health, session snapshot,
// metrics, and a websocket event stream.
type StatusServer struct {
	server   *http.Server
	hub      *EventHub
	snapshot func() statusResponse
	log      *zap.Logger
}

func NewStatusServer(cfg config.StatusConfig, snapshot func() statusResponse, metricsHandler http.Handler, hub *EventHub, log *zap.Logger) *StatusServer {
	s := &StatusServer{
		hub:      hub,
		snapshot: snapshot,
		log:      log,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/ws", s.handleWS)
	if metricsHandler != nil {
		mux.Handle("/metrics", metricsHandler)
	}
	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *StatusServer) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("status server terminated", zap.Error(err))
		}
	}()
}

func (s *StatusServer) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.snapshot()); err != nil {
		s.log.Warn("status encode failed", zap.Error(err))
	}
}

// handleWS streams lifecycle events as JSON text frames until the client
// goes away.
func (s *StatusServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.log.Warn("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	events, cancel := s.hub.Subscribe()
	defer cancel()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-events:
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}
}
