// Package feed defines the quote source contract the polling driver runs
// against.
package feed

import (
	"context"

	"condor-bot/internal/strategy"
)

// Source produces one Quote per decision cycle. Transient transport or
// parse failures must surface as a Quote with missing fields, never as an
// error; the error return is reserved for unrecoverable misuse.
type Source interface {
	Fetch(ctx context.Context) (strategy.Quote, error)
}
