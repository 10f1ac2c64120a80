package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"condor-bot/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// PostgresWriter mirrors journal rows into a trade_log table. Inserts run
// on a background goroutine; a full queue drops rows rather than stalling
// the polling loop.
type PostgresWriter struct {
	db      *sql.DB
	log     *zap.Logger
	schema  string
	rows    chan Entry
	started atomic.Bool
	dropped atomic.Uint64
}

// NewPostgres returns (nil, nil) when the sink is disabled.
func NewPostgres(cfg config.PostgresConfig, log *zap.Logger) (*PostgresWriter, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	schema := strings.TrimSpace(cfg.Schema)
	if schema == "" {
		schema = "public"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	w := &PostgresWriter{
		db:     db,
		log:    log,
		schema: schema,
		rows:   make(chan Entry, queueSize),
	}
	if err := w.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return w, nil
}

func (w *PostgresWriter) Start(ctx context.Context) {
	if w == nil {
		return
	}
	if !w.started.CompareAndSwap(false, true) {
		return
	}
	go w.run(ctx)
}

func (w *PostgresWriter) Close() error {
	if w == nil || w.db == nil {
		return nil
	}
	return w.db.Close()
}

func (w *PostgresWriter) Enqueue(entries ...Entry) {
	if w == nil {
		return
	}
	for _, e := range entries {
		select {
		case w.rows <- e:
		default:
			if w.dropped.Add(1) == 1 && w.log != nil {
				w.log.Warn("trade log queue full")
			}
		}
	}
}

func (w *PostgresWriter) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case row := <-w.rows:
			w.writeRow(context.Background(), row)
		}
	}
}

// drain flushes whatever is still queued at shutdown, best effort.
func (w *PostgresWriter) drain() {
	for {
		select {
		case row := <-w.rows:
			w.writeRow(context.Background(), row)
		default:
			return
		}
	}
}

func (w *PostgresWriter) ensureSchema(ctx context.Context) error {
	if w.db == nil {
		return errors.New("postgres db not initialized")
	}
	if w.schema != "public" {
		if err := w.exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", w.schema)); err != nil {
			return err
		}
	}
	return w.exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		ts TIMESTAMPTZ NOT NULL,
		event TEXT NOT NULL,
		instrument TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		pnl DOUBLE PRECISION NOT NULL,
		commentary TEXT NOT NULL DEFAULT ''
	)`, w.table("trade_log")))
}

func (w *PostgresWriter) writeRow(ctx context.Context, row Entry) {
	if w.db == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	query := fmt.Sprintf(`INSERT INTO %s (ts, event, instrument, price, pnl, commentary)
		VALUES ($1,$2,$3,$4,$5,$6)`, w.table("trade_log"))
	if _, err := w.db.ExecContext(ctx, query,
		row.Time,
		row.Event,
		row.Instrument,
		row.Price,
		row.PnL,
		row.Commentary,
	); err != nil && w.log != nil {
		w.log.Warn("trade log insert failed", zap.Error(err))
	}
}

func (w *PostgresWriter) exec(ctx context.Context, query string) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_, err := w.db.ExecContext(ctx, query)
	return err
}

func (w *PostgresWriter) table(name string) string {
	return w.schema + "." + name
}
