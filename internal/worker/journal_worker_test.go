package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"haushalt/internal/amqp"
	"haushalt/internal/core"
	"haushalt/internal/journal"
	"haushalt/internal/journal/memory"
)

func TestHandleChange(t *testing.T) {
	fixed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	entry := core.Entry{ID: "e1", Name: "Book", Details: "paper", Amount: "12", Prio: "2"}

	tests := []struct {
		name string
		ev   *amqp.ChangeEvent
		want journal.Row
	}{
		{
			name: "create carries the entry",
			ev:   &amqp.ChangeEvent{Resource: core.KindExpense, Op: amqp.OpCreate, ID: "e1", Entry: &amqp.EntryPayload{Name: "Book", Details: "paper", Amount: "12", Prio: "2"}, Timestamp: fixed},
			want: journal.Row{Time: fixed, Resource: "expense", Op: "create", ID: "e1", Name: "Book", Details: "paper", Amount: "12", Prio: "2"},
		},
		{
			name: "delete has only the id",
			ev:   &amqp.ChangeEvent{Resource: core.KindIncome, Op: amqp.OpDelete, ID: "e1", Timestamp: fixed},
			want: journal.Row{Time: fixed, Resource: "income", Op: "delete", ID: "e1"},
		},
		{
			name: "missing timestamp is stamped",
			ev: func() *amqp.ChangeEvent {
				ev := amqp.NewChangeEvent(core.KindExpense, amqp.OpUpdate, entry)
				ev.Timestamp = time.Time{}
				return ev
			}(),
			want: journal.Row{Time: fixed, Resource: "expense", Op: "update", ID: "e1", Name: "Book", Details: "paper", Amount: "12", Prio: "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j := memory.New()
			w := NewJournalWorker(j, nil)
			w.now = func() time.Time { return fixed }

			require.NoError(t, w.HandleChange(context.Background(), tt.ev))
			assert.Equal(t, []journal.Row{tt.want}, j.Rows())

			processed, failed := w.Stats()
			assert.Equal(t, int64(1), processed)
			assert.Zero(t, failed)
		})
	}
}

func TestHandleChangeFailures(t *testing.T) {
	j := memory.New()
	w := NewJournalWorker(j, nil)

	assert.ErrorIs(t, w.HandleChange(context.Background(), nil), ErrNilEvent)

	j.Fail = errors.New("quota exceeded")
	ev := amqp.NewChangeEvent(core.KindExpense, amqp.OpDelete, core.Entry{ID: "x"})
	err := w.HandleChange(context.Background(), ev)
	require.ErrorIs(t, err, j.Fail)
	assert.Contains(t, err.Error(), "journal expense delete x")

	_, failed := w.Stats()
	assert.Equal(t, int64(1), failed)
	assert.Empty(t, j.Rows())
}

type fakeSource struct {
	events []*amqp.ChangeEvent
	errs   []error
}

func (s *fakeSource) ConsumeChanges(ctx context.Context, handler func(context.Context, *amqp.ChangeEvent) error) error {
	for _, ev := range s.events {
		s.errs = append(s.errs, handler(ctx, ev))
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRunConsumesUntilCancelled(t *testing.T) {
	j := memory.New()
	w := NewJournalWorker(j, nil)
	source := &fakeSource{events: []*amqp.ChangeEvent{
		amqp.NewChangeEvent(core.KindExpense, amqp.OpCreate, core.Entry{ID: "1", Name: "a"}),
		amqp.NewChangeEvent(core.KindIncome, amqp.OpCreate, core.Entry{ID: "2", Name: "b"}),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, source, time.Millisecond) }()

	require.Eventually(t, func() bool { return len(j.Rows()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type brokenSource struct{}

func (brokenSource) ConsumeChanges(context.Context, func(context.Context, *amqp.ChangeEvent) error) error {
	return errors.New("message channel closed")
}

func TestRunReturnsSourceFailure(t *testing.T) {
	w := NewJournalWorker(memory.New(), nil)
	err := w.Run(context.Background(), brokenSource{}, time.Hour)
	assert.EqualError(t, err, "message channel closed")
}
