// Package journal records committed entry changes as rows of an append-only
// log, one row per change.
package journal

import (
	"context"
	"time"
)

// TimeLayout is how row timestamps are written.
const TimeLayout = time.RFC3339

// Header names the journal columns in order.
var Header = []string{"timestamp", "resource", "op", "id", "name", "details", "amount", "prio"}

// Row is one journal line.
type Row struct {
	Time     time.Time
	Resource string
	Op       string
	ID       string
	Name     string
	Details  string
	Amount   string
	Prio     string
}

// Values returns the cells of the row in Header order.
func (r Row) Values() []string {
	return []string{
		r.Time.UTC().Format(TimeLayout),
		r.Resource,
		r.Op,
		r.ID,
		r.Name,
		r.Details,
		r.Amount,
		r.Prio,
	}
}

// Writer appends rows to a journal and returns a reference to the written
// row.
type Writer interface {
	Append(ctx context.Context, row Row) (ref string, err error)
}
