// Package spa is a small single-page application runtime: a fragment
// router, a page contract with an explicit lifecycle, and the App shell that
// keeps exactly one page mounted.
package spa

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"haushalt/internal/log"
)

// ErrStaleNavigation is returned by Show when a newer navigation started
// while the page was initialising. The page is discarded.
var ErrStaleNavigation = errors.New("navigation superseded")

// AlertSink receives blocking user-facing messages.
type AlertSink interface {
	Alert(msg string)
}

// AlertFunc adapts a function to AlertSink.
type AlertFunc func(msg string)

func (f AlertFunc) Alert(msg string) { f(msg) }

// AppConfig configures the shell.
type AppConfig struct {
	BaseTitle string
	// Menu lists the navigation items in display order.
	Menu   []string
	Alerts AlertSink
	Logger *log.Logger
}

// App is the shell hosting the mounted page.
type App struct {
	baseTitle string
	menu      []string
	alerts    AlertSink
	logger    *log.Logger

	generation atomic.Uint64
	loads      sync.WaitGroup

	mu         sync.Mutex
	active     string
	title      string
	mounted    Page
	navigate   func(fragment string)
	onMount    func(name string, p Page)
	stylesheet string
}

func NewApp(cfg AppConfig) *App {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	alerts := cfg.Alerts
	if alerts == nil {
		alerts = AlertFunc(func(string) {})
	}
	return &App{
		baseTitle: cfg.BaseTitle,
		menu:      append([]string(nil), cfg.Menu...),
		alerts:    alerts,
		logger:    logger.WithComponent(log.ComponentRouter),
		title:     cfg.BaseTitle,
	}
}

// SetNavigator installs the function pages use to change the fragment,
// typically a send on the router's fragment channel.
func (a *App) SetNavigator(fn func(fragment string)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.navigate = fn
}

// OnMount registers a callback run after each successful mount.
func (a *App) OnMount(fn func(name string, p Page)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onMount = fn
}

// Navigate asks the router to move to fragment.
func (a *App) Navigate(fragment string) {
	a.mu.Lock()
	fn := a.navigate
	a.mu.Unlock()
	if fn == nil {
		a.logger.Warn("Navigation requested without a navigator", log.FieldFragment, fragment)
		return
	}
	fn(fragment)
}

// Alert surfaces a blocking message to the user.
func (a *App) Alert(msg string) {
	a.alerts.Alert(msg)
}

// Show initialises page and, if no newer navigation started meanwhile,
// mounts it in place of the current page under menu item name.
func (a *App) Show(ctx context.Context, name string, page Page) error {
	return a.show(ctx, a.generation.Add(1), name, page)
}

// show runs the lifecycle for the navigation numbered gen. The number is
// taken by the caller when the navigation starts, not when Init begins.
func (a *App) show(ctx context.Context, gen uint64, name string, page Page) error {
	lc := page.Lifecycle()

	if err := lc.transition(StateInitializing); err != nil {
		return err
	}
	if err := page.Init(ctx); err != nil {
		_ = lc.transition(StateUnmounted)
		a.logger.ErrorContext(ctx, "Page initialisation failed",
			log.FieldRoute, name,
			log.FieldGeneration, gen,
			log.FieldError, err)
		if a.generation.Load() == gen {
			a.Alert(err.Error())
		}
		return fmt.Errorf("init %s: %w", name, err)
	}
	if err := lc.transition(StateReady); err != nil {
		return err
	}

	return a.mount(ctx, gen, name, page)
}

func (a *App) mount(ctx context.Context, gen uint64, name string, page Page) error {
	a.mu.Lock()
	if current := a.generation.Load(); current != gen {
		a.mu.Unlock()
		_ = page.Lifecycle().transition(StateUnmounted)
		a.logger.DebugContext(ctx, "Discarded stale page",
			log.FieldRoute, name,
			log.FieldGeneration, gen)
		return ErrStaleNavigation
	}

	if err := page.Lifecycle().transition(StateMounted); err != nil {
		a.mu.Unlock()
		return err
	}
	if a.mounted != nil {
		_ = a.mounted.Lifecycle().transition(StateUnmounted)
	}

	a.mounted = page
	a.active = name
	a.stylesheet = page.Stylesheet()
	a.title = a.baseTitle
	if t := page.Title(); t != "" {
		a.title = a.baseTitle + " – " + t
	}
	onMount := a.onMount
	a.mu.Unlock()

	a.logger.DebugContext(ctx, "Page mounted",
		log.FieldRoute, name,
		log.FieldGeneration, gen)
	if onMount != nil {
		onMount(name, page)
	}
	return nil
}

// Load starts a navigation and initialises the page on its own goroutine
// so a slow Init never blocks the router. The navigation is numbered before
// Load returns, so of two loads the later call always wins. Errors are
// logged and alerted by show.
func (a *App) Load(ctx context.Context, name string, factory func() Page) {
	gen := a.generation.Add(1)
	a.loads.Add(1)
	go func() {
		defer a.loads.Done()
		_ = a.show(ctx, gen, name, factory())
	}()
}

// Wait blocks until every Load started so far has finished.
func (a *App) Wait() {
	a.loads.Wait()
}

// Mounted returns the active menu item and the mounted page, if any.
func (a *App) Mounted() (string, Page) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active, a.mounted
}

// Title is the document title.
func (a *App) Title() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.title
}

// Menu returns the navigation items with the active one flagged.
func (a *App) Menu() []MenuItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	items := make([]MenuItem, len(a.menu))
	for i, name := range a.menu {
		items[i] = MenuItem{Name: name, Active: name == a.active}
	}
	return items
}

// MenuItem is one navigation entry.
type MenuItem struct {
	Name   string
	Active bool
}

// Stylesheet is the stylesheet of the mounted page.
func (a *App) Stylesheet() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stylesheet
}

// Generation is the number of navigations started so far.
func (a *App) Generation() uint64 {
	return a.generation.Load()
}
