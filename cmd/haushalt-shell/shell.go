package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"haushalt/internal/client"
	"haushalt/internal/log"
	"haushalt/internal/pages"
	"haushalt/internal/spa"
)

const help = `commands:
  #<fragment>            navigate, e.g. #/list/ or #/edit/<id>
  set <control> <value>  fill a control of the current page
  do <action>            trigger an action, e.g. do save or do delete:<id>
  show                   print the current page again
  help                   this text
  quit                   leave`

// shell drives the page runtime from a line-oriented terminal.
type shell struct {
	in     io.Reader
	out    io.Writer
	outMu  sync.Mutex
	app    *spa.App
	router *spa.Router
	nav    chan string
	logger *log.Logger

	// navigated is set when an action asked for another page.
	navigated atomic.Bool
}

func newShell(in io.Reader, out io.Writer, api *client.Client, templates *pages.Templates, logger *log.Logger) *shell {
	if logger == nil {
		logger = log.Discard()
	}
	sh := &shell{in: in, out: out, nav: make(chan string, 16), logger: logger}
	sh.app = spa.NewApp(spa.AppConfig{
		BaseTitle: "Haushalt",
		Menu:      pages.Menu,
		Alerts:    spa.AlertFunc(func(msg string) { sh.printf("! %s\n", msg) }),
		Logger:    logger,
	})
	sh.app.SetNavigator(func(fragment string) {
		sh.navigated.Store(true)
		sh.nav <- fragment
	})
	sh.app.OnMount(func(string, spa.Page) { sh.render() })

	router, err := pages.NewRouter(pages.Deps{App: sh.app, API: api, Templates: templates, Logger: logger})
	if err != nil {
		// The registry is static and ends in a catch-all.
		panic(err)
	}
	sh.router = router
	return sh
}

func (sh *shell) printf(format string, args ...any) {
	sh.outMu.Lock()
	defer sh.outMu.Unlock()
	fmt.Fprintf(sh.out, format, args...)
}

// render prints the title, the menu and the mounted page.
func (sh *shell) render() {
	_, page := sh.app.Mounted()

	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", sh.app.Title())
	for _, item := range sh.app.Menu() {
		marker := " "
		if item.Active {
			marker = "*"
		}
		fmt.Fprintf(&b, "[%s%s] ", marker, item.Name)
	}
	b.WriteString("\n\n")
	if page != nil {
		root := page.Root()
		b.WriteString(root.Body())
		for _, name := range root.Controls() {
			value, _ := root.Control(name)
			fmt.Fprintf(&b, "  > %s = %q\n", name, value)
		}
		if actions := root.Actions(); len(actions) > 0 {
			fmt.Fprintf(&b, "  actions: %s\n", strings.Join(actions, ", "))
		}
	}
	sh.printf("%s", b.String())
}

// Run starts the router on initial and processes commands until the input
// ends, quit is entered or ctx is done.
func (sh *shell) Run(ctx context.Context, initial string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	routerDone := make(chan error, 1)
	go func() { routerDone <- sh.router.Start(ctx, initial, sh.nav) }()

	scanner := bufio.NewScanner(sh.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		if quit := sh.exec(ctx, strings.TrimSpace(scanner.Text())); quit {
			break
		}
	}

	cancel()
	<-routerDone
	sh.app.Wait()
	return scanner.Err()
}

// exec runs one command line and reports whether the shell should stop.
func (sh *shell) exec(ctx context.Context, line string) bool {
	if line == "" {
		return false
	}
	if strings.HasPrefix(line, "#") {
		sh.nav <- line
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		sh.printf("%s\n", help)
	case "show":
		sh.render()
	case "set":
		name, value, _ := strings.Cut(rest, " ")
		page := sh.mounted()
		if page == nil {
			return false
		}
		if err := page.Root().SetControl(name, value); err != nil {
			sh.printf("! %v\n", err)
		}
	case "do":
		page := sh.mounted()
		if page == nil {
			return false
		}
		sh.navigated.Store(false)
		err := page.Root().Trigger(ctx, strings.TrimSpace(rest))
		switch {
		case errors.Is(err, spa.ErrUnknownAction):
			sh.printf("! %v\n", err)
		case err == nil && !sh.navigated.Load():
			sh.render()
		}
	default:
		sh.printf("! unknown command %q, try help\n", cmd)
	}
	return false
}

func (sh *shell) mounted() spa.Page {
	_, page := sh.app.Mounted()
	if page == nil {
		sh.printf("! no page mounted yet\n")
	}
	return page
}
