package spa

import (
	"context"
	"errors"
	"testing"
	"time"
)

const (
	timeout = time.Second
	tick    = time.Millisecond
)

func TestLifecycleTransitions(t *testing.T) {
	var lc Lifecycle
	if lc.State() != StateConstructed {
		t.Fatalf("zero value state = %s", lc.State())
	}

	steps := []State{StateInitializing, StateReady, StateMounted, StateUnmounted}
	for _, s := range steps {
		if err := lc.transition(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	if err := lc.transition(StateMounted); err == nil {
		t.Error("an unmounted page cannot be mounted again")
	}
}

func TestViewControlsAndActions(t *testing.T) {
	v := NewView()
	v.AddControl("name", "Book")
	v.AddControl("amount", "")

	if err := v.SetControl("amount", "20"); err != nil {
		t.Fatal(err)
	}
	if err := v.SetControl("colour", "red"); !errors.Is(err, ErrUnknownControl) {
		t.Errorf("SetControl(colour) error = %v", err)
	}
	if got, _ := v.Control("amount"); got != "20" {
		t.Errorf("amount = %q", got)
	}
	if got := v.Controls(); len(got) != 2 || got[0] != "name" {
		t.Errorf("Controls() = %v", got)
	}

	called := false
	v.OnAction("save", func(context.Context) error { called = true; return nil })
	if err := v.Trigger(context.Background(), "save"); err != nil || !called {
		t.Errorf("Trigger(save) = %v, called %v", err, called)
	}
	if err := v.Trigger(context.Background(), "nope"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Trigger(nope) error = %v", err)
	}
}

func TestViewRemoveAction(t *testing.T) {
	v := NewView()
	v.OnAction("edit:1", func(context.Context) error { return nil })
	v.OnAction("reload", func(context.Context) error { return nil })

	v.RemoveAction("edit:1")
	v.RemoveAction("edit:2")

	if got := v.Actions(); len(got) != 1 || got[0] != "reload" {
		t.Errorf("Actions() = %v", got)
	}
	if err := v.Trigger(context.Background(), "edit:1"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("Trigger(edit:1) error = %v", err)
	}
}

func TestValidationError(t *testing.T) {
	var err error = &ValidationError{Field: "name", Message: "name is required"}
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "name" || err.Error() != "name is required" {
		t.Errorf("unexpected validation error %v", err)
	}
}
