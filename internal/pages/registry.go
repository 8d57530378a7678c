package pages

import (
	"context"
	"regexp"

	"haushalt/internal/client"
	"haushalt/internal/core"
	"haushalt/internal/log"
	"haushalt/internal/spa"
)

// Deps are the collaborators every page is built with.
type Deps struct {
	App       *spa.App
	API       *client.Client
	Templates *Templates
	Logger    *log.Logger
}

// Factory builds a page from the route submatches.
type Factory func(deps Deps, matches []string) spa.Page

// Definition is one entry of the static route registry.
type Definition struct {
	// Name is the route name and the menu item highlighted while the page
	// is mounted.
	Name    string
	Pattern string
	Factory Factory
}

// Route names.
const (
	RouteList       = "list"
	RouteNew        = "new"
	RouteEdit       = "edit"
	RouteIncomeList = "income_list"
	RouteIncomeNew  = "income_new"
	RouteIncomeEdit = "income_edit"
)

// Registry is the route table in precedence order. The trailing catch-all
// shows the income list.
var Registry = []Definition{
	{RouteList, `^/list/$`, listFactory(core.KindExpense)},
	{RouteNew, `^/new/$`, editFactory(core.KindExpense)},
	{RouteEdit, `^/edit/(.*)$`, editFactory(core.KindExpense)},
	{RouteIncomeList, `^/income_list/$`, listFactory(core.KindIncome)},
	{RouteIncomeNew, `^/income_new/$`, editFactory(core.KindIncome)},
	{RouteIncomeEdit, `^/income_edit/(.*)$`, editFactory(core.KindIncome)},
	{RouteIncomeList, `.*`, listFactory(core.KindIncome)},
}

// Menu is the navigation shown by the shell.
var Menu = []string{RouteList, RouteNew, RouteIncomeList, RouteIncomeNew}

func listFactory(kind core.Kind) Factory {
	return func(deps Deps, _ []string) spa.Page {
		return NewListPage(deps, kind)
	}
}

func editFactory(kind core.Kind) Factory {
	return func(deps Deps, matches []string) spa.Page {
		id := ""
		if len(matches) > 1 {
			id = matches[1]
		}
		return NewEditPage(deps, kind, id)
	}
}

// Routes turns the registry into router entries. Activation loads the page
// on its own goroutine through the shell.
func Routes(deps Deps) []spa.Route {
	routes := make([]spa.Route, 0, len(Registry))
	for _, def := range Registry {
		def := def
		routes = append(routes, spa.Route{
			Name:    def.Name,
			Pattern: regexp.MustCompile(def.Pattern),
			Activate: func(ctx context.Context, matches []string) {
				deps.App.Load(ctx, def.Name, func() spa.Page {
					return def.Factory(deps, matches)
				})
			},
		})
	}
	return routes
}

// NewRouter builds the router for the registry.
func NewRouter(deps Deps) (*spa.Router, error) {
	return spa.NewRouter(deps.Logger, Routes(deps)...)
}

// ListFragment is the fragment of kind's list page.
func ListFragment(kind core.Kind) string {
	if kind == core.KindIncome {
		return "/income_list/"
	}
	return "/list/"
}

// NewFragment is the fragment of kind's create page.
func NewFragment(kind core.Kind) string {
	if kind == core.KindIncome {
		return "/income_new/"
	}
	return "/new/"
}

// EditFragment is the fragment of the edit page for entry id.
func EditFragment(kind core.Kind, id string) string {
	if kind == core.KindIncome {
		return "/income_edit/" + id
	}
	return "/edit/" + id
}
