package guard

import (
	"fmt"
	"net/url"
	"strings"
)

// Access is the level of authentication a route requires.
type Access int

const (
	Public Access = iota
	// Authenticated routes accept any signed in user, including admins and
	// users whose password has expired.
	Authenticated
	// User routes are for signed in, non-admin users with a fresh password.
	User
	Admin
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case User:
		return "user"
	case Admin:
		return "admin"
	default:
		return "unknown"
	}
}

// Well known paths.
const (
	PathHome           = "/"
	PathLogin          = "/login"
	PathRegister       = "/register"
	PathAdminLogin     = "/admin/login"
	PathAdmin          = "/admin"
	PathAdminAirlines  = "/admin/airlines"
	PathAdminFlights   = "/admin/flights"
	PathFlights        = "/flights"
	PathHistory        = "/history"
	PathBook           = "/book"
	PathCancel         = "/cancel"
	PathChangePassword = "/change-password"
)

// ReasonPasswordExpired is attached to the password change redirect.
const ReasonPasswordExpired = "password_expired"

// Routes maps each known path to the access it requires.
var Routes = map[string]Access{
	PathHome:           Public,
	PathLogin:          Public,
	PathRegister:       Public,
	PathAdminLogin:     Public,
	PathFlights:        Public,
	PathHistory:        User,
	PathBook:           User,
	PathCancel:         User,
	PathChangePassword: Authenticated,
	PathAdmin:          Admin,
	PathAdminAirlines:  Admin,
	PathAdminFlights:   Admin,
}

// SessionState is the read-only view of the session the guards consult.
type SessionState interface {
	IsAuthenticated() bool
	IsAdmin() bool
	RequiresPasswordChange() bool
}

// Decision is the outcome of a navigation attempt.
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   string
}

// Target renders the redirect as a URL with the reason as a query parameter.
func (d Decision) Target() string {
	if d.Allowed || d.Redirect == "" {
		return ""
	}
	if d.Reason == "" {
		return d.Redirect
	}
	return d.Redirect + "?" + url.Values{"reason": {d.Reason}}.Encode()
}

func allow() Decision {
	return Decision{Allowed: true}
}

func redirect(path, reason string) Decision {
	return Decision{Redirect: path, Reason: reason}
}

// Evaluate decides whether navigating to path is permitted. Unknown paths are
// treated as user routes.
func Evaluate(state SessionState, path string) Decision {
	access, ok := Routes[routePath(path)]
	if !ok {
		access = User
	}
	return Check(state, path, access)
}

// Check decides whether navigating to path with the given access is permitted.
func Check(state SessionState, path string, access Access) Decision {
	switch access {
	case Public:
		return allow()
	case Authenticated:
		if !state.IsAuthenticated() {
			return redirect(PathLogin, "")
		}
		return allow()
	case Admin:
		if !state.IsAuthenticated() {
			return redirect(PathAdminLogin, "")
		}
		if !state.IsAdmin() {
			return redirect(PathHome, "")
		}
		return allow()
	default:
		if d := authGuard(state); !d.Allowed {
			return d
		}
		return passwordFreshGuard(state, path)
	}
}

// authGuard lets through signed in users and sends admins to their console.
func authGuard(state SessionState) Decision {
	if state.IsAuthenticated() && !state.IsAdmin() {
		return allow()
	}
	if state.IsAdmin() {
		return redirect(PathAdmin, "")
	}
	return redirect(PathLogin, "")
}

// passwordFreshGuard sends non-admin users with an expired password to the
// password change page.
func passwordFreshGuard(state SessionState, path string) Decision {
	if !state.IsAuthenticated() || state.IsAdmin() {
		return allow()
	}

	if state.RequiresPasswordChange() && !strings.HasPrefix(path, PathChangePassword) {
		return redirect(PathChangePassword, ReasonPasswordExpired)
	}

	return allow()
}

func routePath(path string) string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

// RedirectError reports a navigation that the guards turned away.
type RedirectError struct {
	Path     string
	Decision Decision
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("navigation to %s redirected to %s", e.Path, e.Decision.Target())
}

// Enforce returns a *RedirectError when navigating to path is not permitted.
func Enforce(state SessionState, path string) error {
	d := Evaluate(state, path)
	if d.Allowed {
		return nil
	}
	return &RedirectError{Path: path, Decision: d}
}
