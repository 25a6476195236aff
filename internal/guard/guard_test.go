package guard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	authenticated bool
	admin         bool
	expired       bool
}

func (s state) IsAuthenticated() bool        { return s.authenticated }
func (s state) IsAdmin() bool                { return s.admin }
func (s state) RequiresPasswordChange() bool { return s.expired }

var (
	anonymous    = state{}
	freshUser    = state{authenticated: true}
	expiredUser  = state{authenticated: true, expired: true}
	admin        = state{authenticated: true, admin: true}
	expiredAdmin = state{authenticated: true, admin: true, expired: true}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		state  state
		path   string
		target string
	}{
		{name: "anonymous to history", state: anonymous, path: PathHistory, target: PathLogin},
		{name: "anonymous to book", state: anonymous, path: PathBook, target: PathLogin},
		{name: "admin to user route", state: admin, path: PathHistory, target: PathAdmin},
		{name: "expired user to history", state: expiredUser, path: PathHistory, target: "/change-password?reason=password_expired"},
		{name: "expired user to unknown route", state: expiredUser, path: "/somewhere", target: "/change-password?reason=password_expired"},
		{name: "fresh user to history", state: freshUser, path: PathHistory},
		{name: "fresh user to history with query", state: freshUser, path: "/history?email=a"},
		{name: "expired user to change password", state: expiredUser, path: PathChangePassword},
		{name: "expired user to change password with reason", state: expiredUser, path: "/change-password?reason=password_expired"},
		{name: "anonymous to change password", state: anonymous, path: PathChangePassword, target: PathLogin},
		{name: "expired admin to change password", state: expiredAdmin, path: PathChangePassword},
		{name: "anonymous to admin", state: anonymous, path: PathAdminAirlines, target: PathAdminLogin},
		{name: "user to admin", state: freshUser, path: PathAdminFlights, target: PathHome},
		{name: "admin to admin", state: admin, path: PathAdminFlights},
		{name: "expired admin to admin", state: expiredAdmin, path: PathAdmin},
		{name: "anonymous to home", state: anonymous, path: PathHome},
		{name: "expired user to flights", state: expiredUser, path: PathFlights},
		{name: "anonymous to login", state: anonymous, path: PathLogin},
		{name: "trailing slash", state: anonymous, path: "/history/", target: PathLogin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.state, tt.path)
			if tt.target == "" {
				assert.True(t, d.Allowed, "expected navigation to be allowed, got %s", d.Target())
				return
			}
			assert.False(t, d.Allowed)
			assert.Equal(t, tt.target, d.Target())
		})
	}
}

func TestDecision_Target(t *testing.T) {
	assert.Empty(t, allow().Target())
	assert.Equal(t, "/login", redirect(PathLogin, "").Target())
	assert.Equal(t, "/change-password?reason=password_expired", redirect(PathChangePassword, ReasonPasswordExpired).Target())
}

func TestEnforce(t *testing.T) {
	require.NoError(t, Enforce(freshUser, PathBook))

	err := Enforce(anonymous, PathBook)
	require.Error(t, err)

	var redirectErr *RedirectError
	require.True(t, errors.As(err, &redirectErr))
	assert.Equal(t, PathBook, redirectErr.Path)
	assert.Equal(t, PathLogin, redirectErr.Decision.Redirect)
	assert.Contains(t, err.Error(), "/login")
}

func TestAccess_String(t *testing.T) {
	assert.Equal(t, "public", Public.String())
	assert.Equal(t, "admin", Admin.String())
	assert.Equal(t, "unknown", Access(99).String())
}
