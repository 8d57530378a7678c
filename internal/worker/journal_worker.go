// Package worker mirrors committed entry changes into the journal.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"haushalt/internal/amqp"
	"haushalt/internal/journal"
	"haushalt/internal/log"
)

// ErrNilEvent is returned by HandleChange for a nil event.
var ErrNilEvent = errors.New("nil change event")

// ChangeSource delivers change events to a handler until ctx ends.
// *amqp.Client implements it.
type ChangeSource interface {
	ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeEvent) error) error
}

var _ ChangeSource = (*amqp.Client)(nil)

// JournalWorker forwards change events to a journal writer.
type JournalWorker struct {
	writer journal.Writer
	logger *log.Logger
	now    func() time.Time

	processed atomic.Int64
	failed    atomic.Int64
}

func NewJournalWorker(writer journal.Writer, logger *log.Logger) *JournalWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &JournalWorker{
		writer: writer,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// Row converts ev into a journal row. Events without a timestamp are
// stamped with the current time.
func (w *JournalWorker) Row(ev *amqp.ChangeEvent) journal.Row {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = w.now()
	}
	e := ev.EntryOf()
	return journal.Row{
		Time:     ts,
		Resource: ev.Resource.String(),
		Op:       string(ev.Op),
		ID:       e.ID,
		Name:     e.Name,
		Details:  e.Details,
		Amount:   e.Amount,
		Prio:     e.Prio,
	}
}

// HandleChange appends one journal row for ev. A returned error makes the
// consumer requeue the delivery.
func (w *JournalWorker) HandleChange(ctx context.Context, ev *amqp.ChangeEvent) error {
	if ev == nil {
		return ErrNilEvent
	}

	ref, err := w.writer.Append(ctx, w.Row(ev))
	if err != nil {
		w.failed.Add(1)
		return fmt.Errorf("journal %s %s %s: %w", ev.Resource, ev.Op, ev.ID, err)
	}
	w.processed.Add(1)

	w.logger.InfoContext(ctx, "Change journaled",
		log.FieldResource, ev.Resource.String(),
		log.FieldOperation, string(ev.Op),
		log.FieldEntryID, ev.ID,
		"ref", ref)
	return nil
}

// Stats reports how many events were journaled and how many failed.
func (w *JournalWorker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// Run consumes source until ctx ends, logging progress every statsInterval
// (zero disables it). It returns nil on cancellation.
func (w *JournalWorker) Run(ctx context.Context, source ChangeSource, statsInterval time.Duration) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return source.ConsumeChanges(ctx, w.HandleChange)
	})

	if statsInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(statsInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					processed, failed := w.Stats()
					w.logger.InfoContext(ctx, "Journal worker stats",
						log.FieldCount, processed,
						"failed", failed)
				}
			}
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
