package spa

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Page is one screen of the application.
type Page interface {
	// Init loads the template and any remote data. It may block on I/O.
	Init(ctx context.Context) error
	Title() string
	Stylesheet() string
	Root() *View
	Lifecycle() *Lifecycle
}

// Action is a handler wired to a named control such as a save button.
type Action func(ctx context.Context) error

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrUnknownAction  = errors.New("unknown action")
)

// ValidationError blocks an action before any network call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// View is the rendered root of a page: a text body plus named input
// controls and named actions.
type View struct {
	mu       sync.RWMutex
	body     string
	controls map[string]string
	order    []string
	actions  map[string]Action
}

func NewView() *View {
	return &View{
		controls: make(map[string]string),
		actions:  make(map[string]Action),
	}
}

func (v *View) SetBody(body string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.body = body
}

func (v *View) Body() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.body
}

// AddControl declares an input control with its initial value.
func (v *View) AddControl(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.controls[name]; !exists {
		v.order = append(v.order, name)
	}
	v.controls[name] = value
}

// SetControl changes the value of an existing control, as a user would.
func (v *View) SetControl(name, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.controls[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownControl, name)
	}
	v.controls[name] = value
	return nil
}

func (v *View) Control(name string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	value, ok := v.controls[name]
	return value, ok
}

// Controls returns the control names in declaration order.
func (v *View) Controls() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.order...)
}

func (v *View) OnAction(name string, fn Action) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.actions[name] = fn
}

// RemoveAction drops the named action. Unknown names are ignored.
func (v *View) RemoveAction(name string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.actions, name)
}

// Actions returns the action names sorted.
func (v *View) Actions() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	names := make([]string, 0, len(v.actions))
	for name := range v.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Trigger runs the named action.
func (v *View) Trigger(ctx context.Context, name string) error {
	v.mu.RLock()
	fn, ok := v.actions[name]
	v.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	return fn(ctx)
}
