package core

import (
	"errors"
	"strings"
)

// Kind identifies one of the bookkeeping resources.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Kinds lists every resource kind in registration order.
var Kinds = []Kind{KindExpense, KindIncome}

var ErrUnknownKind = errors.New("unknown resource kind")

// ParseKind resolves a kind from its name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", ErrUnknownKind
	}
	return k, nil
}

func (k Kind) Valid() bool {
	switch k {
	case KindExpense, KindIncome:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}

// Prefix is the collection-level URL of the resource, e.g. "/expense".
func (k Kind) Prefix() string {
	return "/" + string(k)
}

// Collection is the name of the backing collection.
func (k Kind) Collection() string {
	if k == KindExpense {
		return "expenses"
	}
	return string(k)
}

// Field names as they appear on the wire and in filters.
const (
	FieldID      = "_id"
	FieldName    = "name"
	FieldDetails = "details"
	FieldAmount  = "amount"
	FieldPrio    = "prio"
)

// Fields are the user-editable fields of an entry, in display order.
var Fields = []string{FieldName, FieldDetails, FieldAmount, FieldPrio}

type (
	// Entry is a stored expense or income record. Amount and Prio are
	// free-form strings; nothing interprets them numerically.
	Entry struct {
		ID      string
		Name    string
		Details string
		Amount  string
		Prio    string
	}

	// Input carries the user-editable fields of a create or update request.
	// An empty field means "not provided".
	Input struct {
		Name    string
		Details string
		Amount  string
		Prio    string
	}
)

// Field returns the value of the named field.
func (e Entry) Field(name string) (string, bool) {
	switch name {
	case FieldID:
		return e.ID, true
	case FieldName:
		return e.Name, true
	case FieldDetails:
		return e.Details, true
	case FieldAmount:
		return e.Amount, true
	case FieldPrio:
		return e.Prio, true
	default:
		return "", false
	}
}

// Set overwrites the named user-editable field. It reports false for
// unknown names and for the identifier.
func (e *Entry) Set(name, value string) bool {
	switch name {
	case FieldName:
		e.Name = value
	case FieldDetails:
		e.Details = value
	case FieldAmount:
		e.Amount = value
	case FieldPrio:
		e.Prio = value
	default:
		return false
	}
	return true
}

// Input returns the editable part of the entry.
func (e Entry) Input() Input {
	return Input{Name: e.Name, Details: e.Details, Amount: e.Amount, Prio: e.Prio}
}

// Values returns the provided (non-empty) fields keyed by field name.
func (in Input) Values() map[string]string {
	out := make(map[string]string, len(Fields))
	for name, v := range map[string]string{
		FieldName:    in.Name,
		FieldDetails: in.Details,
		FieldAmount:  in.Amount,
		FieldPrio:    in.Prio,
	} {
		if v != "" {
			out[name] = v
		}
	}
	return out
}

// IsKnownField reports whether name can be used as a filter key.
func IsKnownField(name string) bool {
	_, ok := Entry{}.Field(name)
	return ok
}
