package services

import (
	"context"
	"fmt"

	"haushalt/internal/amqp"
	"haushalt/internal/core"
	"haushalt/internal/log"
	"haushalt/internal/store"
)

// Publisher announces committed writes. *amqp.Client satisfies it.
type Publisher interface {
	PublishChange(ctx context.Context, ev *amqp.ChangeEvent) error
}

// searchOrder is the fixed ordering of search results.
var searchOrder = []string{core.FieldName, core.FieldDetails}

// ResourceService implements the CRUD policy for one resource kind over its
// collection and publishes change events for committed writes.
type ResourceService struct {
	kind       core.Kind
	collection store.Collection
	publisher  Publisher
	logger     *log.Logger
	audit      *log.StructuredLogger
}

// NewResourceService binds a service to kind's collection in db. publisher
// may be nil.
func NewResourceService(kind core.Kind, db store.Database, publisher Publisher, logger *log.Logger) *ResourceService {
	if logger == nil {
		logger = log.Discard()
	}
	return &ResourceService{
		kind:       kind,
		collection: db.Collection(kind.Collection()),
		publisher:  publisher,
		logger:     logger.WithComponent(log.ComponentService).With(log.FieldResource, kind.String()),
		audit:      log.NewStructuredLogger(logger),
	}
}

func (s *ResourceService) Kind() core.Kind {
	return s.kind
}

// Search returns every entry matching filter, ordered by name then details.
func (s *ResourceService) Search(ctx context.Context, filter store.Filter) ([]core.Entry, error) {
	entries, err := s.collection.Find(ctx, filter, searchOrder...)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", s.kind, err)
	}
	if entries == nil {
		entries = []core.Entry{}
	}
	s.logger.DebugContext(ctx, "Search completed", log.FieldOperation, log.OpSearch, log.FieldCount, len(entries))
	return entries, nil
}

// Create stores a new entry. Missing fields default to the empty string.
// The stored record is re-read so the caller sees what the collection holds.
func (s *ResourceService) Create(ctx context.Context, in core.Input) (core.Entry, error) {
	doc := core.Entry{
		Name:    in.Name,
		Details: in.Details,
		Amount:  in.Amount,
		Prio:    in.Prio,
	}

	id, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		return core.Entry{}, fmt.Errorf("create %s: %w", s.kind, err)
	}

	created, found, err := s.collection.FindOne(ctx, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("reload %s %s: %w", s.kind, id, err)
	}
	if !found {
		return core.Entry{}, fmt.Errorf("reload %s %s: inserted entry vanished", s.kind, id)
	}

	s.audit.LogEntryChanged(ctx, log.OpCreate, s.kind.String(), created.ID, created.Name)
	s.publish(ctx, amqp.OpCreate, created)
	return created, nil
}

// Read returns the entry with the given id. A well-formed but unknown id is
// reported as found == false, a malformed one as store.ErrInvalidID.
func (s *ResourceService) Read(ctx context.Context, id string) (core.Entry, bool, error) {
	e, found, err := s.collection.FindOne(ctx, id)
	if err != nil {
		return core.Entry{}, false, fmt.Errorf("read %s %s: %w", s.kind, id, err)
	}
	return e, found, nil
}

// Update overwrites the non-empty fields of patch on the stored entry and
// returns the reloaded record. Empty patch fields leave the stored value
// untouched, so a field can never be cleared through Update.
func (s *ResourceService) Update(ctx context.Context, id string, patch core.Input) (core.Entry, bool, error) {
	existing, found, err := s.Read(ctx, id)
	if err != nil || !found {
		return core.Entry{}, found, err
	}

	set := patch.Values()
	if len(set) > 0 {
		if _, err := s.collection.UpdateOne(ctx, existing.ID, set); err != nil {
			return core.Entry{}, false, fmt.Errorf("update %s %s: %w", s.kind, id, err)
		}
	}

	updated, found, err := s.Read(ctx, existing.ID)
	if err != nil || !found {
		return core.Entry{}, found, err
	}

	s.audit.LogEntryChanged(ctx, log.OpUpdate, s.kind.String(), updated.ID, updated.Name)
	s.publish(ctx, amqp.OpUpdate, updated)
	return updated, true, nil
}

// Delete removes the entry and returns how many entries were deleted.
// Deleting an absent entry is not an error.
func (s *ResourceService) Delete(ctx context.Context, id string) (int64, error) {
	n, err := s.collection.DeleteOne(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	if n > 0 {
		canonical, _ := store.ParseID(id)
		s.audit.LogEntryChanged(ctx, log.OpDelete, s.kind.String(), canonical, "")
		s.publish(ctx, amqp.OpDelete, core.Entry{ID: canonical})
	}
	return n, nil
}

// publish never fails the caller: the write is already committed.
func (s *ResourceService) publish(ctx context.Context, op amqp.Op, e core.Entry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishChange(ctx, amqp.NewChangeEvent(s.kind, op, e)); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish change event",
			log.FieldOperation, log.OpPublish,
			log.FieldEntryID, e.ID,
			log.FieldError, err)
	}
}
