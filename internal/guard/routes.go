package guard

import (
	"net/url"
	"strings"
)

// View names the page a resolved route renders.
type View string

const (
	ViewHome               View = "home"
	ViewFeatures           View = "features"
	ViewOnboarding         View = "onboarding"
	ViewAuth               View = "auth"
	ViewSignup             View = "signup"
	ViewDashboard          View = "dashboard"
	ViewMatches            View = "matches"
	ViewMessages           View = "messages"
	ViewRegions            View = "regions"
	ViewRegionDetail       View = "region-detail"
	ViewLegal              View = "legal"
	ViewPrivacy            View = "privacy"
	ViewProfile            View = "profile"
	ViewAdminLogin         View = "admin-login"
	ViewAdmin              View = "admin"
	ViewAdminUsers         View = "admin-users"
	ViewAdminRegions       View = "admin-regions"
	ViewAdminAnalytics     View = "admin-analytics"
	ViewAdminVerifications View = "admin-verifications"
	ViewAdminSettings      View = "admin-settings"
	ViewAdminSecurity      View = "admin-security"
	ViewAdminModeration    View = "admin-moderation"
	ViewAdminSuper         View = "admin-super"
	ViewDevTools           View = "dev-tools"
	ViewNotFound           View = "not-found"
)

// Route pairs a path pattern with its guards and target view. Pattern
// segments starting with ':' capture parameters.
type Route struct {
	Pattern string
	View    View
	Guards  []Guard
}

// Match is a resolved navigation: either a view with parameters, or a
// redirect the navigator must follow before anything renders.
type Match struct {
	View     View
	Params   map[string]string
	Redirect string
}

// Table is the application route table.
type Table struct {
	routes []Route
}

// DefaultTable builds the route table for the whole client.
func DefaultTable() *Table {
	return &Table{routes: []Route{
		{Pattern: "/", View: ViewHome},
		{Pattern: "/features", View: ViewFeatures},
		{Pattern: "/onboarding", View: ViewOnboarding},
		{Pattern: "/auth", View: ViewAuth, Guards: []Guard{RedirectIfAuthed}},
		{Pattern: "/signup", View: ViewSignup, Guards: []Guard{RedirectIfAuthed}},
		{Pattern: "/dashboard", View: ViewDashboard, Guards: []Guard{RequireAuth}},
		{Pattern: "/matches", View: ViewMatches, Guards: []Guard{RequireAuth}},
		{Pattern: "/messages/:id", View: ViewMessages, Guards: []Guard{RequireAuth}},
		{Pattern: "/messages", View: ViewMessages, Guards: []Guard{RequireAuth}},
		{Pattern: "/regions/:id", View: ViewRegionDetail},
		{Pattern: "/regions", View: ViewRegions},
		{Pattern: "/legal", View: ViewLegal},
		{Pattern: "/privacy", View: ViewPrivacy},
		{Pattern: "/terms", Guards: []Guard{To("/legal?tab=terms")}},
		{Pattern: "/safety", Guards: []Guard{To("/legal?tab=safety")}},
		{Pattern: "/profile", View: ViewProfile, Guards: []Guard{RequireAuth}},
		{Pattern: "/admin/login", View: ViewAdminLogin, Guards: []Guard{RedirectIfAdmin}},
		{Pattern: "/admin", View: ViewAdmin, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/users", View: ViewAdminUsers, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/regions", View: ViewAdminRegions, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/analytics", View: ViewAdminAnalytics, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/verifications", View: ViewAdminVerifications, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/settings", View: ViewAdminSettings, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/security", View: ViewAdminSecurity, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/moderation", View: ViewAdminModeration, Guards: []Guard{RequireAdmin}},
		{Pattern: "/admin/super", View: ViewAdminSuper, Guards: []Guard{RequireAdmin, RequireSuperAdmin}},
		{Pattern: "/dev-tools", View: ViewDevTools, Guards: []Guard{DevOnly}},
	}}
}

// Resolve matches a path against the table and runs the route's guards. The
// first denying guard wins and its redirect is returned with no view, so the
// caller never constructs the guarded page. Unknown paths yield ViewNotFound.
func (t *Table) Resolve(rawPath string, flags Flags) Match {
	path, query := splitQuery(rawPath)

	for _, route := range t.routes {
		params, ok := matchPattern(route.Pattern, path)
		if !ok {
			continue
		}
		for _, g := range route.Guards {
			if d := g(flags); !d.Allow {
				return Match{Redirect: d.RedirectTo}
			}
		}
		for k, v := range query {
			if _, taken := params[k]; !taken {
				params[k] = v
			}
		}
		return Match{View: route.View, Params: params}
	}
	return Match{View: ViewNotFound, Params: map[string]string{}}
}

// ResolveFollowing resolves a path and chases redirects until a view is
// reached, bounded to guard against cyclic tables.
func (t *Table) ResolveFollowing(rawPath string, flags Flags) (Match, string) {
	path := rawPath
	for i := 0; i < 5; i++ {
		m := t.Resolve(path, flags)
		if m.Redirect == "" {
			return m, path
		}
		path = m.Redirect
	}
	return Match{View: ViewNotFound, Params: map[string]string{}}, path
}

func splitQuery(rawPath string) (string, map[string]string) {
	query := map[string]string{}
	path := rawPath
	if idx := strings.IndexByte(rawPath, '?'); idx >= 0 {
		path = rawPath[:idx]
		if vals, err := url.ParseQuery(rawPath[idx+1:]); err == nil {
			for k := range vals {
				query[k] = vals.Get(k)
			}
		}
	}
	return path, query
}

func matchPattern(pattern, path string) (map[string]string, bool) {
	if pattern == path {
		return map[string]string{}, true
	}
	pSegs := strings.Split(strings.Trim(pattern, "/"), "/")
	aSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(pSegs) != len(aSegs) {
		return nil, false
	}
	params := map[string]string{}
	for i, seg := range pSegs {
		if strings.HasPrefix(seg, ":") {
			if aSegs[i] == "" {
				return nil, false
			}
			params[strings.TrimPrefix(seg, ":")] = aSegs[i]
			continue
		}
		if seg != aSegs[i] {
			return nil, false
		}
	}
	return params, true
}
