package spa

import (
	"fmt"
	"sync"
)

// State is a page's position in its lifecycle.
type State int

const (
	StateConstructed State = iota
	StateInitializing
	StateReady
	StateMounted
	StateUnmounted
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	case StateMounted:
		return "mounted"
	case StateUnmounted:
		return "unmounted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// allowed lists the legal transitions. A page that fails to initialise or
// is superseded before mounting goes straight to unmounted.
var allowed = map[State][]State{
	StateConstructed:  {StateInitializing},
	StateInitializing: {StateReady, StateUnmounted},
	StateReady:        {StateMounted, StateUnmounted},
	StateMounted:      {StateUnmounted},
}

// Lifecycle tracks the state of one page. The zero value is a constructed
// page.
type Lifecycle struct {
	mu    sync.Mutex
	state State
}

// BasePage is embedded by page types to carry their lifecycle.
type BasePage struct {
	lifecycle Lifecycle
}

func (b *BasePage) Lifecycle() *Lifecycle {
	return &b.lifecycle
}

// State is shorthand for Lifecycle().State().
func (b *BasePage) State() State {
	return b.lifecycle.State()
}

func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Lifecycle) transition(to State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range allowed[l.state] {
		if s == to {
			l.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal page transition %s -> %s", l.state, to)
}
