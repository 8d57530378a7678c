package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"haushalt/internal/core"
)

// Op is the kind of change carried by a ChangeEvent.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

func (o Op) Valid() bool {
	switch o {
	case OpCreate, OpUpdate, OpDelete:
		return true
	default:
		return false
	}
}

// EntryPayload is the entry snapshot attached to create and update events.
type EntryPayload struct {
	Name    string `json:"name"`
	Details string `json:"details"`
	Amount  string `json:"amount"`
	Prio    string `json:"prio"`
}

// ChangeEvent announces a committed write to one of the collections.
// Delete events carry no entry.
type ChangeEvent struct {
	Resource  core.Kind     `json:"resource"`
	Op        Op            `json:"op"`
	ID        string        `json:"id"`
	Entry     *EntryPayload `json:"entry,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// NewChangeEvent builds an event for entry e of the given kind.
func NewChangeEvent(kind core.Kind, op Op, e core.Entry) *ChangeEvent {
	ev := &ChangeEvent{
		Resource:  kind,
		Op:        op,
		ID:        e.ID,
		Timestamp: time.Now().UTC(),
	}
	if op != OpDelete {
		ev.Entry = &EntryPayload{Name: e.Name, Details: e.Details, Amount: e.Amount, Prio: e.Prio}
	}
	return ev
}

// ToJSON converts the message to JSON bytes
func (m *ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeEventFromJSON decodes and validates a message body.
func ChangeEventFromJSON(data []byte) (*ChangeEvent, error) {
	var msg ChangeEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Resource.Valid() {
		return nil, fmt.Errorf("invalid resource %q", msg.Resource)
	}
	if !msg.Op.Valid() {
		return nil, fmt.Errorf("invalid op %q", msg.Op)
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	return &msg, nil
}

// EntryOf reconstructs the entry carried by the event.
func (m *ChangeEvent) EntryOf() core.Entry {
	e := core.Entry{ID: m.ID}
	if m.Entry != nil {
		e.Name, e.Details, e.Amount, e.Prio = m.Entry.Name, m.Entry.Details, m.Entry.Amount, m.Entry.Prio
	}
	return e
}
