package app

import (
	"encoding/json"
	"sync"
	"time"

	"condor-bot/internal/strategy"
)

// wireEvent is the JSON shape pushed to websocket subscribers.
type wireEvent struct {
	Kind      string    `json:"kind"`
	Time      time.Time `json:"time"`
	Spot      float64   `json:"spot,omitempty"`
	PnL       float64   `json:"pnl,omitempty"`
	NetCredit float64   `json:"net_credit,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// EventHub fans lifecycle events out to status-stream subscribers. Slow
// subscribers lose events instead of stalling the polling loop.
type EventHub struct {
	mu   sync.Mutex
	subs map[chan []byte]struct{}
}

func NewEventHub() *EventHub {
	return &EventHub{subs: make(map[chan []byte]struct{})}
}

func (h *EventHub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	cancel := func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
	return ch, cancel
}

func (h *EventHub) Publish(ev strategy.Event) {
	if h == nil {
		return
	}
	payload, err := json.Marshal(wireEvent{
		Kind:      string(ev.Kind),
		Time:      ev.Time,
		Spot:      ev.Spot,
		PnL:       ev.PnL,
		NetCredit: ev.NetCredit,
		Reason:    string(ev.Reason),
		Note:      ev.Note,
	})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- payload:
		default:
		}
	}
}
