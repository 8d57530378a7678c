package pages

import (
	"context"
	"fmt"
	"strings"

	"haushalt/internal/core"
	"haushalt/internal/spa"
)

// Action names of the list page. Row actions are suffixed with ":<id>".
const (
	ActionNew    = "new"
	ActionReload = "reload"
	ActionEdit   = "edit"
	ActionDelete = "delete"
)

// ListPage shows every entry of one kind.
type ListPage struct {
	spa.BasePage

	deps    Deps
	kind    core.Kind
	entries []core.Entry
	root    *spa.View
}

func NewListPage(deps Deps, kind core.Kind) *ListPage {
	return &ListPage{deps: deps, kind: kind}
}

type listRow struct {
	core.Entry
	EditFragment string
}

func (p *ListPage) Init(ctx context.Context) error {
	p.root = spa.NewView()
	p.root.OnAction(ActionNew, func(context.Context) error {
		p.deps.App.Navigate(NewFragment(p.kind))
		return nil
	})
	p.root.OnAction(ActionReload, func(ctx context.Context) error {
		if err := p.reload(ctx); err != nil {
			p.deps.App.Alert(err.Error())
			return err
		}
		return nil
	})
	return p.reload(ctx)
}

// reload fetches the entries and rebuilds the body and row actions.
func (p *ListPage) reload(ctx context.Context) error {
	res, err := p.deps.API.List(ctx, p.kind, nil)
	if err != nil {
		return fmt.Errorf("list %s: %w", p.kind, err)
	}

	entries := make([]core.Entry, 0, len(res))
	rows := make([]listRow, 0, len(res))
	for _, r := range res {
		e := r.Entry()
		entries = append(entries, e)
		rows = append(rows, listRow{Entry: e, EditFragment: EditFragment(p.kind, e.ID)})
	}

	body, err := p.deps.Templates.Render("list", struct {
		Heading string
		Rows    []listRow
	}{Heading: p.Title(), Rows: rows})
	if err != nil {
		return err
	}

	for _, e := range p.entries {
		for _, action := range RowActions(e.ID) {
			p.root.RemoveAction(action)
		}
	}
	p.entries = entries
	p.root.SetBody(body)
	for _, e := range entries {
		id := e.ID
		p.root.OnAction(ActionEdit+":"+id, func(context.Context) error {
			p.deps.App.Navigate(EditFragment(p.kind, id))
			return nil
		})
		p.root.OnAction(ActionDelete+":"+id, func(ctx context.Context) error {
			return p.remove(ctx, id)
		})
	}
	return nil
}

// remove deletes entry id and reloads. Errors are alerted.
func (p *ListPage) remove(ctx context.Context, id string) error {
	if err := p.deps.API.Delete(ctx, p.kind, id); err != nil {
		p.deps.App.Alert(err.Error())
		return err
	}
	if err := p.reload(ctx); err != nil {
		p.deps.App.Alert(err.Error())
		return err
	}
	return nil
}

func (p *ListPage) Title() string {
	if p.kind == core.KindIncome {
		return "income"
	}
	return "expenses"
}

func (p *ListPage) Stylesheet() string { return p.deps.Templates.Stylesheet("list") }
func (p *ListPage) Root() *spa.View    { return p.root }
func (p *ListPage) Kind() core.Kind    { return p.kind }

// Entries returns the entries shown, in API order.
func (p *ListPage) Entries() []core.Entry {
	return append([]core.Entry(nil), p.entries...)
}

// RowActions returns the row action names for entry id.
func RowActions(id string) []string {
	return []string{ActionEdit + ":" + id, ActionDelete + ":" + id}
}

// ParseRowAction splits "delete:<id>" into its parts.
func ParseRowAction(action string) (name, id string, ok bool) {
	name, id, ok = strings.Cut(action, ":")
	return name, id, ok && id != ""
}
