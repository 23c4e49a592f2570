package service

import (
	"github.com/rs/zerolog"

	"github.com/FruitsAI/orange-client/internal/core/domain"
	"github.com/FruitsAI/orange-client/internal/core/ports"
)

// maxRedirectHops bounds chains of route-level redirects and guard
// redirects, so a misconfigured table cannot loop forever.
const maxRedirectHops = 8

// GuardConfig configures the navigation guard. Zero values get defaults.
type GuardConfig struct {
	LoginRoute   string
	LandingRoute string
	AppName      string
	DefaultTitle string
}

func (c GuardConfig) withDefaults() GuardConfig {
	if c.LoginRoute == "" {
		c.LoginRoute = "/login"
	}
	if c.LandingRoute == "" {
		c.LandingRoute = "/dashboard"
	}
	if c.AppName == "" {
		c.AppName = "Orange"
	}
	if c.DefaultTitle == "" {
		c.DefaultTitle = c.AppName + " - Project Payment Tracking"
	}
	return c
}

// NavigationGuard decides where a transition lands. The authentication state
// is read on every call.
type NavigationGuard struct {
	routes []domain.Route
	auth   ports.AuthChecker
	titles ports.TitleSink
	cfg    GuardConfig
	log    zerolog.Logger
}

// NewNavigationGuard builds a guard over routes. titles may be nil.
func NewNavigationGuard(routes []domain.Route, auth ports.AuthChecker, titles ports.TitleSink, cfg GuardConfig, log zerolog.Logger) *NavigationGuard {
	return &NavigationGuard{
		routes: routes,
		auth:   auth,
		titles: titles,
		cfg:    cfg.withDefaults(),
		log:    log,
	}
}

// Resolve guards a transition to target:
//   - a route that requires authentication, visited unauthenticated, goes to the login route;
//   - the login route, visited authenticated, goes to the landing route;
//   - anything else proceeds unchanged.
//
// Route-level redirects are followed and the result is guarded again.
func (g *NavigationGuard) Resolve(target string) domain.NavigationDecision {
	d := domain.NavigationDecision{Requested: target, Target: target}

	for hop := 0; ; hop++ {
		if hop == maxRedirectHops {
			g.log.Warn().Str("requested", target).Str("stopped_at", d.Target).Msg("redirect chain too long")
			break
		}
		next, ok := g.step(d.Target)
		if !ok {
			break
		}
		d.Target = next
		d.Redirected = true
	}

	d.Route, _ = g.match(d.Target)
	d.Title = g.title(d.Route)
	if g.titles != nil {
		g.titles.SetTitle(d.Title)
	}

	if d.Redirected {
		g.log.Debug().Str("requested", target).Str("target", d.Target).Msg("navigation redirected")
	}
	return d
}

// step returns the location path is redirected to, if any.
func (g *NavigationGuard) step(path string) (string, bool) {
	route, found := g.match(path)
	if found && route.Redirect != "" {
		return route.Redirect, true
	}

	authenticated := g.auth.IsAuthenticated()
	if found && route.RequiresAuth && !authenticated {
		return g.cfg.LoginRoute, true
	}
	if authenticated && g.isLogin(path) {
		return g.cfg.LandingRoute, true
	}
	return "", false
}

func (g *NavigationGuard) match(path string) (domain.Route, bool) {
	for _, r := range g.routes {
		if r.Match(path) {
			return r, true
		}
	}
	return domain.Route{}, false
}

func (g *NavigationGuard) isLogin(path string) bool {
	return domain.Route{Path: g.cfg.LoginRoute}.Match(path)
}

func (g *NavigationGuard) title(r domain.Route) string {
	if r.Title == "" {
		return g.cfg.DefaultTitle
	}
	return r.Title + " - " + g.cfg.AppName
}

// Routes returns the route table.
func (g *NavigationGuard) Routes() []domain.Route {
	return append([]domain.Route(nil), g.routes...)
}
