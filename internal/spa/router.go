package spa

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"haushalt/internal/log"
)

// ErrNoCatchAll is returned by NewRouter when the last route does not match
// every fragment.
var ErrNoCatchAll = errors.New("router: last route must be a catch-all")

// Route binds a fragment pattern to an activator. Patterns should be
// anchored; the first match wins.
type Route struct {
	Name     string
	Pattern  *regexp.Regexp
	Activate func(ctx context.Context, matches []string)
}

// Router maps location fragments to route activations.
type Router struct {
	routes []Route
	logger *log.Logger
}

// probes are fragments a catch-all has to accept.
var probes = []string{"", "/", "/no/such/route/", "\x00"}

// NewRouter validates the route table. The last route must match any
// fragment so every navigation activates exactly one route.
func NewRouter(logger *log.Logger, routes ...Route) (*Router, error) {
	if len(routes) == 0 {
		return nil, ErrNoCatchAll
	}
	last := routes[len(routes)-1].Pattern
	for _, p := range probes {
		if last == nil || !last.MatchString(p) {
			return nil, ErrNoCatchAll
		}
	}
	for _, r := range routes {
		if r.Pattern == nil || r.Activate == nil {
			return nil, errors.New("router: route " + r.Name + " needs a pattern and an activator")
		}
	}

	if logger == nil {
		logger = log.Discard()
	}
	return &Router{
		routes: append([]Route(nil), routes...),
		logger: logger.WithComponent(log.ComponentRouter),
	}, nil
}

// Routes returns the route table in precedence order.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Match returns the route for fragment and its submatches. Index 0 of the
// submatches is the whole fragment. A leading "#" is ignored.
func (r *Router) Match(fragment string) (Route, []string) {
	fragment = strings.TrimPrefix(fragment, "#")
	for _, route := range r.routes {
		if m := route.Pattern.FindStringSubmatch(fragment); m != nil {
			return route, m
		}
	}
	// unreachable: NewRouter guarantees a catch-all
	last := r.routes[len(r.routes)-1]
	return last, []string{fragment}
}

// Navigate activates the route matching fragment and returns its name.
func (r *Router) Navigate(ctx context.Context, fragment string) string {
	route, matches := r.Match(fragment)
	r.logger.DebugContext(ctx, "Route activated",
		log.FieldOperation, log.OpNavigate,
		log.FieldFragment, fragment,
		log.FieldRoute, route.Name)
	route.Activate(ctx, matches)
	return route.Name
}

// Start activates initial and then every fragment received, in order,
// until ctx is done or fragments is closed.
func (r *Router) Start(ctx context.Context, initial string, fragments <-chan string) error {
	r.Navigate(ctx, initial)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-fragments:
			if !ok {
				return nil
			}
			r.Navigate(ctx, f)
		}
	}
}
