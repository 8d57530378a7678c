package memory

import (
	"context"
	"sync"

	"haushalt/internal/core"
	"haushalt/internal/store"
)

// Database is an in-memory store.Database. Each instance is isolated, which
// makes it the default for tests and for the memory backend.
type Database struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

var _ store.Database = (*Database)(nil)

func New() *Database {
	return &Database{collections: make(map[string]*Collection)}
}

// Collection returns the named collection, creating it on first use.
func (d *Database) Collection(name string) store.Collection {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.collections[name]
	if !ok {
		c = NewCollection()
		d.collections[name] = c
	}
	return c
}

func (d *Database) Ping(context.Context) error { return nil }

func (d *Database) Close() error { return nil }

// Collection keeps entries in insertion order.
type Collection struct {
	mu    sync.RWMutex
	order []string
	docs  map[string]core.Entry
}

var _ store.Collection = (*Collection)(nil)

func NewCollection() *Collection {
	return &Collection{docs: make(map[string]core.Entry)}
}

func (c *Collection) Find(_ context.Context, filter store.Filter, sortBy ...string) ([]core.Entry, error) {
	c.mu.RLock()
	out := make([]core.Entry, 0, len(c.order))
	for _, id := range c.order {
		if e := c.docs[id]; store.Matches(e, filter) {
			out = append(out, e)
		}
	}
	c.mu.RUnlock()

	store.SortEntries(out, sortBy...)
	return out, nil
}

func (c *Collection) InsertOne(_ context.Context, doc core.Entry) (string, error) {
	doc.ID = store.NewID()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.ID] = doc
	c.order = append(c.order, doc.ID)
	return doc.ID, nil
}

func (c *Collection) FindOne(_ context.Context, id string) (core.Entry, bool, error) {
	id, err := store.ParseID(id)
	if err != nil {
		return core.Entry{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.docs[id]
	return e, ok, nil
}

func (c *Collection) UpdateOne(_ context.Context, id string, set map[string]string) (int64, error) {
	id, err := store.ParseID(id)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.docs[id]
	if !ok {
		return 0, nil
	}
	for name, v := range set {
		e.Set(name, v)
	}
	c.docs[id] = e
	return 1, nil
}

func (c *Collection) DeleteOne(_ context.Context, id string) (int64, error) {
	id, err := store.ParseID(id)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return 0, nil
	}
	delete(c.docs, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return 1, nil
}

// Len returns the number of stored entries.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
