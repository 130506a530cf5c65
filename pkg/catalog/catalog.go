// Package catalog persists enumeration results per junction.
//
// A catalog keeps a history of results; lookups return the most recent
// entry for a junction. The HTTP server records every enumeration it serves
// so that downstream controllers can fetch a junction's phase set by ID
// without resubmitting the matrix.
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/safephase/pkg/errors"
	"github.com/matzehuels/safephase/pkg/phase"
)

// Entry is one stored enumeration result.
type Entry struct {
	ID        string        `json:"id" bson:"_id"`
	Junction  string        `json:"junction" bson:"junction"`
	Type      string        `json:"type,omitempty" bson:"type,omitempty"`
	Result    *phase.Result `json:"result" bson:"result"`
	CacheKey  string        `json:"cache_key,omitempty" bson:"cache_key,omitempty"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

// Store persists entries.
type Store interface {
	// Put stores e. A missing ID or CreatedAt is filled in; the stored
	// entry is returned.
	Put(ctx context.Context, e Entry) (Entry, error)

	// Get returns the latest entry for a junction, or an error with code
	// errors.ErrCodeNotFound.
	Get(ctx context.Context, junction string) (Entry, error)

	// List returns the latest entry of every junction, ordered by junction.
	List(ctx context.Context) ([]Entry, error)

	Close(ctx context.Context) error
}

// prepare validates e and fills in generated fields.
func prepare(e Entry, now time.Time) (Entry, error) {
	if err := errors.ValidateJunctionID(e.Junction); err != nil {
		return Entry{}, err
	}
	if e.Result == nil {
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "entry for %q has no result", e.Junction)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	} else if _, err := uuid.Parse(e.ID); err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "entry id")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Millisecond)
	return e, nil
}

func notFound(junction string) error {
	return errors.New(errors.ErrCodeNotFound, "no catalog entry for junction %q", junction)
}
