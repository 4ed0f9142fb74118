// Package guard decides, before a view is constructed, whether a route may
// proceed or must redirect. The decision happens in the navigator's resolve
// step, never as a side effect of rendering, so protected content cannot
// flash before a redirect.
package guard

// Flags is the synchronously known authentication state a guard evaluates.
type Flags struct {
	Authenticated bool
	Admin         bool
	SuperAdmin    bool
	DevMode       bool
}

// Decision is the outcome of one guard.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Proceed lets the route render.
func Proceed() Decision { return Decision{Allow: true} }

// Redirect sends the navigator elsewhere; the guarded view is never built.
func Redirect(to string) Decision { return Decision{RedirectTo: to} }

// Guard evaluates the flags for one route.
type Guard func(Flags) Decision

// RequireAuth gates member pages.
func RequireAuth(f Flags) Decision {
	if !f.Authenticated {
		return Redirect("/auth")
	}
	return Proceed()
}

// RedirectIfAuthed keeps logged-in users off the auth and signup forms.
func RedirectIfAuthed(f Flags) Decision {
	if f.Authenticated {
		return Redirect("/dashboard")
	}
	return Proceed()
}

// RequireAdmin gates the back-office namespace.
func RequireAdmin(f Flags) Decision {
	if !f.Admin {
		return Redirect("/admin/login")
	}
	return Proceed()
}

// RedirectIfAdmin keeps logged-in admins off the admin login form.
func RedirectIfAdmin(f Flags) Decision {
	if f.Admin {
		return Redirect("/admin")
	}
	return Proceed()
}

// RequireSuperAdmin gates the elevated back-office page. It stacks on
// RequireAdmin in the route table; a plain admin lands on the dashboard.
func RequireSuperAdmin(f Flags) Decision {
	if !f.SuperAdmin {
		return Redirect("/admin")
	}
	return Proceed()
}

// DevOnly hides development tooling outside dev mode.
func DevOnly(f Flags) Decision {
	if !f.DevMode {
		return Redirect("/")
	}
	return Proceed()
}

// To unconditionally redirects, for legacy path aliases.
func To(target string) Guard {
	return func(Flags) Decision { return Redirect(target) }
}
