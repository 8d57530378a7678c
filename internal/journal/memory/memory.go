// Package memory keeps journal rows in process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"haushalt/internal/journal"
)

type Journal struct {
	mu   sync.Mutex
	rows []journal.Row
	// Fail, when set, is returned by Append instead of writing.
	Fail error
}

var _ journal.Writer = (*Journal)(nil)

func New() *Journal {
	return &Journal{}
}

func (j *Journal) Append(ctx context.Context, row journal.Row) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Fail != nil {
		return "", j.Fail
	}
	j.rows = append(j.rows, row)
	return fmt.Sprintf("row:%d", len(j.rows)), nil
}

// Rows returns a copy of the rows written so far.
func (j *Journal) Rows() []journal.Row {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Row(nil), j.rows...)
}
