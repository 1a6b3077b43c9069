package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/watchlist/internal/forms"
	"github.com/desertthunder/watchlist/internal/router"
	"github.com/desertthunder/watchlist/internal/services"
	"github.com/desertthunder/watchlist/internal/shared"
)

// Session is what the TUI reads and the forms write.
type Session interface {
	forms.Session
	IsAuthenticated() bool
}

// Deps are the collaborators an [App] drives. OpenURL defaults to [shared.OpenURL].
type Deps struct {
	Session   Session
	Router    *router.Router
	Auth      services.AuthService
	Watchlist services.WatchlistService
	Logger    *log.Logger
	OpenURL   func(string) error
}

// confirmation is a pending yes/no question; onYes runs when it is accepted.
type confirmation struct {
	question string
	onYes    func() tea.Cmd
}

// App represents the TUI application state.
type App struct {
	ctx     context.Context
	session Session
	router  *router.Router
	logger  *log.Logger

	route    router.Route
	login    *loginView
	register *registerView
	home     *homeView
	entry    *entryView
	account  *accountView

	confirm *confirmation
	flash   forms.Status
	width   int
	height  int
	help    help.Model
	keys    keyMap
}

var _ tea.Model = (*App)(nil)

// NewApp creates the TUI. The router decides the first view.
func NewApp(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = log.Default()
	}
	openURL := deps.OpenURL
	if openURL == nil {
		openURL = shared.OpenURL
	}

	return &App{
		ctx:      ctx,
		session:  deps.Session,
		router:   deps.Router,
		logger:   logger.WithPrefix("ui"),
		login:    newLoginView(forms.NewLoginForm(deps.Auth, deps.Session, logger)),
		register: newRegisterView(forms.NewRegisterForm(deps.Auth, deps.Session, logger)),
		home:     newHomeView(forms.NewWatchlistTable(deps.Watchlist, deps.Session, logger), openURL),
		entry:    newEntryView(forms.NewEntryForm(deps.Watchlist, deps.Session, logger)),
		account:  newAccountView(forms.NewAccountForm(deps.Auth, deps.Session, logger)),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Route returns the route of the view being shown.
func (a *App) Route() router.Route { return a.route }

// Init shows the router's current route.
func (a *App) Init() tea.Cmd {
	return a.show(a.router.Current())
}

// Update handles incoming messages and then follows the router, which re-guards on every session change.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.follow())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		a.home.resize(msg.Width, msg.Height)
		return nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case Msg:
		return a.handleMsg(msg)
	}
	return nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, a.keys.quit) {
		return tea.Quit
	}

	if a.confirm != nil {
		c := a.confirm
		switch {
		case key.Matches(msg, a.keys.yes):
			a.confirm = nil
			return c.onYes()
		case key.Matches(msg, a.keys.no):
			a.confirm = nil
		}
		return nil
	}

	if a.session.IsAuthenticated() {
		switch {
		case key.Matches(msg, a.keys.home):
			return a.navigate(router.HomeRoute.Path)
		case key.Matches(msg, a.keys.create):
			return a.navigate(router.AboutRoute.Path)
		case key.Matches(msg, a.keys.account):
			return a.navigate(router.AccountRoute.Path)
		case key.Matches(msg, a.keys.logout):
			a.logout()
			return nil
		}
	} else if key.Matches(msg, a.keys.link) {
		if a.route.Name == router.RegisterRoute.Name {
			return a.navigate(router.LoginRoute.Path)
		}
		return a.navigate(router.RegisterRoute.Path)
	}

	switch a.route.Name {
	case router.LoginRoute.Name:
		return a.login.handleKey(a.ctx, a.keys, msg)
	case router.RegisterRoute.Name:
		return a.register.handleKey(a.ctx, a.keys, msg)
	case router.AboutRoute.Name:
		return a.entry.handleKey(a.ctx, a.keys, msg)
	case router.AccountRoute.Name:
		return a.account.handleKey(a.ctx, a.keys, msg)
	case router.HomeRoute.Name:
		cmd, confirm := a.home.handleKey(a.ctx, a.keys, msg)
		a.confirm = confirm
		return cmd
	}
	return nil
}

func (a *App) handleMsg(msg Msg) tea.Cmd {
	switch msg.kind {
	case MsgLoginCompleted:
		a.login.complete(msg.data.(forms.AuthOutcome))
	case MsgRegisterCompleted:
		if a.register.complete(msg.data.(forms.AuthOutcome)) {
			a.flash = a.register.form.Status()
		}
	case MsgEntrySaved:
		a.entry.complete(msg.data.(forms.SaveOutcome))
	case MsgAccountUpdated:
		a.account.complete(msg.data.(forms.UpdateOutcome))
	case MsgWatchlistLoaded, MsgRowSaved, MsgEntryDeleted, MsgPostersRefreshed:
		return a.home.complete(a.ctx, msg)
	case MsgPosterOpened:
		err, _ := msg.data.(error)
		if err != nil {
			a.logger.Warn("could not open poster", "error", err)
		}
		a.home.posterOpened(err)
	}
	return nil
}

// navigate asks the router for path and shows wherever it lands.
func (a *App) navigate(path string) tea.Cmd {
	nav := a.router.Navigate(path)
	a.flash = forms.Status{}
	return a.show(nav.Route)
}

// follow switches to the router's current route when a session change moved it.
func (a *App) follow() tea.Cmd {
	if cur := a.router.Current(); cur.Name != a.route.Name {
		return a.show(cur)
	}
	return nil
}

func (a *App) show(route router.Route) tea.Cmd {
	a.route = route
	a.confirm = nil

	switch route.Name {
	case router.LoginRoute.Name:
		return a.login.enter()
	case router.RegisterRoute.Name:
		return a.register.enter()
	case router.HomeRoute.Name:
		return a.home.enter(a.ctx)
	case router.AboutRoute.Name:
		return a.entry.enter()
	case router.AccountRoute.Name:
		return a.account.enter()
	}
	return nil
}

func (a *App) logout() {
	a.logger.Info("logging out")
	a.account.logout()
	a.home.clear()
	a.entry.clear()
	a.flash = forms.Status{}
}

// View renders the header and the current route's view.
func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.header())
	b.WriteString("\n")

	if s := styles.status(a.flash); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}

	b.WriteString(styles.title.Render(a.route.Meta.Title))
	b.WriteString("\n")

	var bindings []key.Binding
	switch a.route.Name {
	case router.LoginRoute.Name:
		b.WriteString(a.login.view(a.keys))
		bindings = append(a.keys.formHelp(), a.keys.link)
	case router.RegisterRoute.Name:
		b.WriteString(a.register.view(a.keys))
		bindings = append(a.keys.formHelp(), a.keys.link)
	case router.HomeRoute.Name:
		b.WriteString(a.home.view())
		bindings = a.home.help(a.keys)
	case router.AboutRoute.Name:
		b.WriteString(a.entry.view(a.keys))
		bindings = a.keys.formHelp()
	case router.AccountRoute.Name:
		b.WriteString(a.account.view(a.keys))
		bindings = append(a.keys.formHelp(), a.keys.logout)
	}

	if a.confirm != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.warn.Render(a.confirm.question))
		bindings = []key.Binding{a.keys.yes, a.keys.no}
	}

	b.WriteString("\n\n")
	b.WriteString(a.help.ShortHelpView(bindings))
	return b.String()
}

func (a *App) header() string {
	u := a.session.CurrentUser()
	if u == nil {
		return styles.title.Render("Watchlist")
	}

	greeting := styles.title.Render("Willkommen zu deiner persönlichen Watchlist, " + u.FirstName + "!")
	links := []struct {
		route router.Route
		label string
	}{
		{router.HomeRoute, "Home"},
		{router.AboutRoute, "Eintrag erstellen"},
		{router.AccountRoute, "Account"},
	}

	var nav strings.Builder
	for _, l := range links {
		if l.route.Name == a.route.Name {
			nav.WriteString(styles.active.Render(l.label))
		} else {
			nav.WriteString(styles.nav.Render(l.label))
		}
	}
	nav.WriteString(styles.nav.Render("Abmelden"))
	return greeting + "\n" + nav.String()
}
