package memory

import (
	"context"
	"testing"

	"haushalt/internal/core"
	"haushalt/internal/store"
)

func TestCollectionCRUD(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()

	id, err := c.InsertOne(ctx, core.Entry{ID: "ignored", Name: "PS5", Amount: "500"})
	if err != nil {
		t.Fatalf("InsertOne: %v", err)
	}
	if id == "ignored" || id == "" {
		t.Fatalf("collection must assign the id, got %q", id)
	}

	e, found, err := c.FindOne(ctx, id)
	if err != nil || !found || e.Name != "PS5" || e.ID != id {
		t.Fatalf("FindOne = %+v found=%v err=%v", e, found, err)
	}

	n, err := c.UpdateOne(ctx, id, map[string]string{"details": "console", "_id": "x"})
	if err != nil || n != 1 {
		t.Fatalf("UpdateOne = %d, %v", n, err)
	}
	e, _, _ = c.FindOne(ctx, id)
	if e.Details != "console" || e.ID != id {
		t.Fatalf("after update: %+v", e)
	}

	if n, _ := c.DeleteOne(ctx, id); n != 1 {
		t.Fatalf("first delete = %d", n)
	}
	if n, _ := c.DeleteOne(ctx, id); n != 0 {
		t.Fatalf("second delete = %d", n)
	}
	if c.Len() != 0 {
		t.Fatalf("Len = %d", c.Len())
	}
}

func TestCollectionMissingAndInvalidIDs(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()

	_, found, err := c.FindOne(ctx, store.NewID())
	if err != nil || found {
		t.Fatalf("absent id: found=%v err=%v", found, err)
	}
	if n, err := c.UpdateOne(ctx, store.NewID(), map[string]string{"name": "x"}); err != nil || n != 0 {
		t.Fatalf("update absent = %d, %v", n, err)
	}
	if _, _, err := c.FindOne(ctx, "42"); err != store.ErrInvalidID {
		t.Fatalf("malformed id err = %v", err)
	}
}

func TestFindFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	c := NewCollection()
	for _, e := range []core.Entry{
		{Name: "Netto", Details: "b", Prio: "hoch"},
		{Name: "Gym", Prio: "hoch"},
		{Name: "Netto", Details: "a", Prio: "hoch"},
		{Name: "PS5", Prio: "mittel"},
	} {
		if _, err := c.InsertOne(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	got, err := c.Find(ctx, store.Filter{"prio": "hoch"}, "name", "details")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Gym/", "Netto/a", "Netto/b"}
	if len(got) != len(want) {
		t.Fatalf("got %d entries", len(got))
	}
	for i, e := range got {
		if e.Name+"/"+e.Details != want[i] {
			t.Errorf("entry %d = %s/%s, want %s", i, e.Name, e.Details, want[i])
		}
	}

	none, _ := c.Find(ctx, store.Filter{"color": "red"})
	if none == nil || len(none) != 0 {
		t.Fatalf("unknown field should yield empty non-nil slice, got %#v", none)
	}
}

func TestDatabaseCollectionsAreSeparate(t *testing.T) {
	db := New()
	if db.Collection("expenses") != db.Collection("expenses") {
		t.Fatal("same name must return the same collection")
	}
	if db.Collection("expenses") == db.Collection("income") {
		t.Fatal("different names must not share storage")
	}
}
