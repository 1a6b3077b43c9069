// Package router maps view paths to routes and decides, from the in-memory session alone,
// whether a navigation may proceed or must be redirected.
package router

import (
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/models"
	"github.com/desertthunder/watchlist/internal/session"
)

// Meta carries the access rules of a route.
type Meta struct {
	RequiresAuth  bool
	RequiresGuest bool
	Title         string
}

// Route is a named view reachable by path.
type Route struct {
	Name string
	Path string
	Meta Meta
}

var (
	LoginRoute    = Route{Name: "login", Path: "/login", Meta: Meta{RequiresGuest: true, Title: "Anmelden"}}
	RegisterRoute = Route{Name: "register", Path: "/register", Meta: Meta{RequiresGuest: true, Title: "Registrieren"}}
	HomeRoute     = Route{Name: "home", Path: "/", Meta: Meta{RequiresAuth: true, Title: "Home"}}
	AboutRoute    = Route{Name: "about", Path: "/about", Meta: Meta{RequiresAuth: true, Title: "Eintrag erstellen"}}
	AccountRoute  = Route{Name: "account", Path: "/account", Meta: Meta{RequiresAuth: true, Title: "Account"}}
)

// DefaultRoutes returns the application's route table.
func DefaultRoutes() []Route {
	return []Route{LoginRoute, RegisterRoute, HomeRoute, AboutRoute, AccountRoute}
}

// Guard decides where a navigation to `to` ends up. It returns the destination and whether it differs from `to`.
//
// Protected routes send unauthenticated users to [LoginRoute]; guest-only routes send authenticated users to
// [HomeRoute]. Everything else proceeds.
func Guard(to Route, authenticated bool) (Route, bool) {
	switch {
	case to.Meta.RequiresAuth && !authenticated:
		return LoginRoute, true
	case to.Meta.RequiresGuest && authenticated:
		return HomeRoute, true
	default:
		return to, false
	}
}

// Session is the part of [session.Store] the router reads.
type Session interface {
	IsAuthenticated() bool
	Subscribe(l session.Listener) func()
}

// Navigation is the outcome of [Router.Navigate].
type Navigation struct {
	Requested  string
	Route      Route
	Redirected bool
}

// Router tracks the current route and re-guards it whenever the session changes.
type Router struct {
	mu          sync.RWMutex
	routes      []Route
	byPath      map[string]Route
	current     Route
	session     Session
	logger      *log.Logger
	unsubscribe func()
}

// New builds a router over routes (nil means [DefaultRoutes]) and subscribes to s.
// The initial route is the guarded home route.
func New(s Session, routes []Route, logger *log.Logger) *Router {
	if routes == nil {
		routes = DefaultRoutes()
	}
	if logger == nil {
		logger = log.Default()
	}

	r := &Router{
		routes: routes,
		byPath: make(map[string]Route, len(routes)),
		logger: logger.WithPrefix("router"),
	}
	for _, route := range routes {
		r.byPath[route.Path] = route
	}

	r.session = s
	r.current, _ = Guard(HomeRoute, s.IsAuthenticated())
	r.unsubscribe = s.Subscribe(func(*models.User) { r.reguard() })
	return r
}

// Routes returns the route table.
func (r *Router) Routes() []Route {
	return append([]Route(nil), r.routes...)
}

// Resolve finds the route for path. Unknown paths fall through to [HomeRoute]; found reports an exact match.
func (r *Router) Resolve(path string) (route Route, found bool) {
	route, found = r.byPath[normalize(path)]
	if !found {
		return HomeRoute, false
	}
	return route, true
}

// Navigate resolves path, applies [Guard] and makes the destination current.
func (r *Router) Navigate(path string) Navigation {
	to, _ := r.Resolve(path)
	dest, redirected := Guard(to, r.session.IsAuthenticated())
	if redirected {
		r.logger.Debug("navigation redirected", "from", to.Path, "to", dest.Path)
	}

	r.mu.Lock()
	r.current = dest
	r.mu.Unlock()

	return Navigation{Requested: path, Route: dest, Redirected: redirected}
}

// Current returns the route currently displayed.
func (r *Router) Current() Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Close stops following session changes.
func (r *Router) Close() {
	if r.unsubscribe != nil {
		r.unsubscribe()
	}
}

func (r *Router) reguard() {
	authenticated := r.session.IsAuthenticated()

	r.mu.Lock()
	from := r.current
	dest, redirected := Guard(from, authenticated)
	r.current = dest
	r.mu.Unlock()

	if redirected {
		r.logger.Debug("session changed, route redirected", "from", from.Path, "to", dest.Path)
	}
}

func normalize(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
