package pages

import (
	"context"
	"fmt"
	"strings"

	"haushalt/internal/core"
	"haushalt/internal/log"
	"haushalt/internal/spa"
)

// ActionSave is the action wired to the save button of the edit page.
const ActionSave = "save"

// EditPage creates a new entry or edits an existing one.
type EditPage struct {
	spa.BasePage

	deps  Deps
	kind  core.Kind
	id    string
	entry core.Entry
	title string
	root  *spa.View
}

// NewEditPage edits entry id of kind, or creates one when id is empty.
func NewEditPage(deps Deps, kind core.Kind, id string) *EditPage {
	return &EditPage{deps: deps, kind: kind, id: id}
}

type editField struct {
	Label string
	Value string
}

// Init loads the template and, for an existing entry, the entry itself.
// Nothing is sent to the API until save is triggered.
func (p *EditPage) Init(ctx context.Context) error {
	if p.id != "" {
		res, err := p.deps.API.Get(ctx, p.kind, p.id)
		if err != nil {
			return fmt.Errorf("load %s %s: %w", p.kind, p.id, err)
		}
		p.entry = res.Entry()
		p.title = p.entry.Name
	} else {
		p.title = "add " + p.kind.String()
	}

	data := struct {
		Heading string
		Fields  []editField
	}{Heading: p.title}
	for _, name := range core.Fields {
		value, _ := p.entry.Field(name)
		data.Fields = append(data.Fields, editField{Label: name, Value: value})
	}

	body, err := p.deps.Templates.Render("edit", data)
	if err != nil {
		return err
	}

	p.root = spa.NewView()
	p.root.SetBody(body)
	for _, f := range data.Fields {
		p.root.AddControl(f.Label, f.Value)
	}
	p.root.OnAction(ActionSave, p.save)
	return nil
}

func (p *EditPage) Title() string      { return p.title }
func (p *EditPage) Stylesheet() string { return p.deps.Templates.Stylesheet("edit") }
func (p *EditPage) Root() *spa.View    { return p.root }

// Kind and ID identify the edited entry; ID is empty on the create page.
func (p *EditPage) Kind() core.Kind { return p.kind }
func (p *EditPage) ID() string      { return p.id }

func (p *EditPage) input() core.Input {
	value := func(name string) string {
		v, _ := p.root.Control(name)
		return strings.TrimSpace(v)
	}
	return core.Input{
		Name:    value(core.FieldName),
		Details: value(core.FieldDetails),
		Amount:  value(core.FieldAmount),
		Prio:    value(core.FieldPrio),
	}
}

func (p *EditPage) validate(in core.Input) error {
	if in.Name == "" {
		return &spa.ValidationError{Field: core.FieldName, Message: fmt.Sprintf("enter a name for the %s first", p.kind)}
	}
	if in.Amount == "" {
		return &spa.ValidationError{Field: core.FieldAmount, Message: fmt.Sprintf("enter an amount for the %s", p.kind)}
	}
	return nil
}

// save validates the controls, stores the entry and returns to the list.
// Failures are alerted and leave the page mounted.
func (p *EditPage) save(ctx context.Context) error {
	in := p.input()
	if err := p.validate(in); err != nil {
		p.deps.App.Alert(err.Error())
		return err
	}

	var err error
	if p.id != "" {
		_, err = p.deps.API.Replace(ctx, p.kind, p.id, in)
	} else {
		_, err = p.deps.API.Create(ctx, p.kind, in)
	}
	if err != nil {
		if p.deps.Logger != nil {
			p.deps.Logger.ErrorContext(ctx, "Save failed",
				log.FieldResource, p.kind.String(),
				log.FieldEntryID, p.id,
				log.FieldError, err)
		}
		p.deps.App.Alert(err.Error())
		return err
	}

	p.deps.App.Navigate(ListFragment(p.kind))
	return nil
}
