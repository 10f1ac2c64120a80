package journal

import (
	"context"
	"time"

	"condor-bot/internal/state"

	"github.com/vmihailenco/msgpack/v5"
)

const SessionArchiveKey = "journal:last_session"

// SessionArchive is the finished session's trade log, kept in the kv store
// so the status surface can show the previous session after a restart.
type SessionArchive struct {
	Label      string    `msgpack:"label"`
	StartedAt  time.Time `msgpack:"started_at"`
	FinishedAt time.Time `msgpack:"finished_at"`
	FinalPnL   float64   `msgpack:"final_pnl"`
	Entries    []Entry   `msgpack:"entries"`
}

func SaveArchive(ctx context.Context, store state.Store, archive SessionArchive) error {
	payload, err := msgpack.Marshal(archive)
	if err != nil {
		return err
	}
	return store.Set(ctx, SessionArchiveKey, payload)
}

func LoadArchive(ctx context.Context, store state.Store) (SessionArchive, bool, error) {
	raw, ok, err := store.Get(ctx, SessionArchiveKey)
	if err != nil || !ok {
		return SessionArchive{}, false, err
	}
	var archive SessionArchive
	if err := msgpack.Unmarshal(raw, &archive); err != nil {
		return SessionArchive{}, false, err
	}
	return archive, true, nil
}
