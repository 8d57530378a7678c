// Package store defines the Collection capability the resource services are
// written against. Implementations live in store/memory and in storage
// (SQLite).
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"haushalt/internal/core"
)

// ErrInvalidID is returned for identifiers that cannot be coerced into the
// collection's identifier type.
var ErrInvalidID = errors.New("invalid identifier")

// Filter is an exact-match equality filter keyed by field name.
type Filter map[string]string

// Collection is a document collection of entries.
type Collection interface {
	// Find returns all entries matching filter, ordered ascending by the
	// given fields.
	Find(ctx context.Context, filter Filter, sortBy ...string) ([]core.Entry, error)
	// InsertOne stores doc under a freshly assigned identifier. doc.ID is
	// ignored.
	InsertOne(ctx context.Context, doc core.Entry) (id string, err error)
	// FindOne returns the entry with the given id, or found == false.
	FindOne(ctx context.Context, id string) (e core.Entry, found bool, err error)
	// UpdateOne sets the given fields on the entry and returns the number
	// of matched entries.
	UpdateOne(ctx context.Context, id string, set map[string]string) (matched int64, err error)
	// DeleteOne removes the entry and returns the number of deleted entries.
	DeleteOne(ctx context.Context, id string) (deleted int64, err error)
}

// Database hands out named collections. It is opened once at startup and
// passed to every service.
type Database interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close() error
}

// NewID returns a fresh collection identifier.
func NewID() string {
	return uuid.NewString()
}

// ParseID coerces s into the canonical identifier form.
func ParseID(s string) (string, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", ErrInvalidID
	}
	return id.String(), nil
}

// Matches reports whether e satisfies every condition of f. A condition on
// an unknown field never matches.
func Matches(e core.Entry, f Filter) bool {
	for name, want := range f {
		got, ok := e.Field(name)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// SortEntries orders entries ascending by the given fields. The sort is
// stable so ties keep insertion order.
func SortEntries(entries []core.Entry, fields ...string) {
	if len(fields) == 0 {
		return
	}
	sort.SliceStable(entries, func(i, j int) bool {
		for _, f := range fields {
			a, _ := entries[i].Field(f)
			b, _ := entries[j].Field(f)
			if a != b {
				return a < b
			}
		}
		return false
	})
}
