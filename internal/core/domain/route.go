package domain

import "strings"

// Route describes one navigable location. Routes are static configuration.
type Route struct {
	Path         string
	Name         string
	Title        string
	RequiresAuth bool
	// Redirect, when set, sends any visit of Path to another location.
	Redirect string
}

// Match reports whether path matches the route pattern. Pattern segments
// starting with ':' match any single non-empty segment.
func (r Route) Match(path string) bool {
	want := splitPath(r.Path)
	got := splitPath(path)
	if len(want) != len(got) {
		return false
	}
	for i, seg := range want {
		if strings.HasPrefix(seg, ":") {
			if got[i] == "" {
				return false
			}
			continue
		}
		if seg != got[i] {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// NavigationDecision is the outcome of guarding one transition.
type NavigationDecision struct {
	// Requested is the location the caller asked for.
	Requested string
	// Target is where navigation actually lands.
	Target string
	// Route is the matched descriptor of Target; zero when unknown.
	Route      Route
	Redirected bool
	Title      string
}

// DefaultRoutes is the route table of the Orange web client.
func DefaultRoutes() []Route {
	return []Route{
		{Path: "/", Redirect: "/login"},
		{Path: "/login", Name: "login", Title: "Login"},
		{Path: "/dashboard", Name: "dashboard", Title: "Dashboard", RequiresAuth: true},
		{Path: "/projects", Name: "projects", Title: "Projects", RequiresAuth: true},
		{Path: "/projects/create", Name: "project-create", Title: "New Project", RequiresAuth: true},
		{Path: "/projects/edit/:id", Name: "project-edit", Title: "Edit Project", RequiresAuth: true},
		{Path: "/projects/:id", Name: "project-detail", Title: "Project Details", RequiresAuth: true},
		{Path: "/projects/:id/payment/create", Name: "payment-create", Title: "Add Payment", RequiresAuth: true},
		{Path: "/payment/create", Name: "payment-create-global", Title: "Add Payment", RequiresAuth: true},
		{Path: "/calendar", Name: "calendar", Title: "Payment Calendar", RequiresAuth: true},
		{Path: "/analytics", Name: "analytics", Title: "Analytics", RequiresAuth: true},
		{Path: "/settings", Name: "settings", Title: "Settings", RequiresAuth: true},
	}
}
