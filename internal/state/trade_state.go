package state

import (
	"context"
	"encoding/json"
	"fmt"

	"condor-bot/internal/strategy"
)

const TradeStateKey = "trade:state"

// TradeState is the durable record that survives restarts mid-trade.
type TradeState struct {
	TradeActive  bool                         `json:"trade_active"`
	PositionBook map[strategy.LegRole]float64 `json:"position_book"`
}

// LoadTradeState reads the persisted record. ok is true only for a
// well-formed active record with all four legs; a malformed record returns
// ok=false with a non-nil error so the caller can warn and start Idle.
func LoadTradeState(ctx context.Context, store Store) (strategy.PositionBook, bool, error) {
	raw, found, err := store.Get(ctx, TradeStateKey)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}
	var ts TradeState
	if err := json.Unmarshal(raw, &ts); err != nil {
		return nil, false, fmt.Errorf("unreadable trade state: %w", err)
	}
	if !ts.TradeActive {
		return nil, false, nil
	}
	book := strategy.PositionBook(ts.PositionBook)
	if !book.Complete() {
		return nil, false, fmt.Errorf("trade state has %d of 4 legs", len(book))
	}
	return book, true, nil
}

// TradeStateStore adapts a Store to the engine's Persister contract.
type TradeStateStore struct {
	store Store
}

func NewTradeStateStore(store Store) *TradeStateStore {
	return &TradeStateStore{store: store}
}

func (s *TradeStateStore) SaveActive(book strategy.PositionBook) error {
	payload, err := json.Marshal(TradeState{TradeActive: true, PositionBook: book})
	if err != nil {
		return err
	}
	return s.store.Set(context.Background(), TradeStateKey, payload)
}

func (s *TradeStateStore) Clear() error {
	return s.store.Delete(context.Background(), TradeStateKey)
}
