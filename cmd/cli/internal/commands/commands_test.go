package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/flightdesk/internal/config"
	"github.com/wolfeidau/flightdesk/internal/guard"
)

type fakeServer struct {
	t *testing.T

	mu       sync.Mutex
	requests []string
	bookings []map[string]any
	auth     []string
}

func (s *fakeServer) token(role string) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ann", "role": role}).
		SignedString([]byte("test-secret"))
	require.NoError(s.t, err)
	return token
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.Method+" "+r.URL.Path)
	s.auth = append(s.auth, r.Header.Get("Authorization"))
	s.mu.Unlock()

	writeJSON := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/auth/login":
		var req struct{ Username, Password string }
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.Username {
		case "root":
			writeJSON(http.StatusOK, map[string]any{"token": s.token("ROLE_ADMIN")})
		case "stale":
			writeJSON(http.StatusOK, map[string]any{"token": s.token("ROLE_USER"), "createdAt": "2020-01-01T00:00:00"})
		case "bad":
			writeJSON(http.StatusUnauthorized, map[string]any{"error": "Invalid credentials"})
		default:
			writeJSON(http.StatusOK, map[string]any{"token": s.token("ROLE_USER"), "createdAt": time.Now().UTC().Format(time.RFC3339)})
		}

	case r.Method == http.MethodGet && r.URL.Path == "/flight/api/flight/getAllFlights":
		writeJSON(http.StatusOK, []map[string]any{{
			"flightId":        "F1",
			"flightNumber":    "AI101",
			"airlineCode":     "AI",
			"sourceCity":      "Delhi",
			"destinationCity": "Mumbai",
			"departureDate":   "2026-11-01",
			"departureTime":   "09:30",
			"arrivalDate":     "2026-11-01",
			"arrivalTime":     "11:45",
			"totalSeats":      12,
			"price":           4999,
			"mealAvailable":   true,
		}})

	case r.Method == http.MethodGet && r.URL.Path == "/flight/api/flight/getAllAirlines":
		writeJSON(http.StatusOK, []map[string]any{{"airlineCode": "AI", "airlineName": "Air India"}})

	case r.Method == http.MethodPost && r.URL.Path == "/flight/api/flight/addAirline":
		writeJSON(http.StatusOK, map[string]any{"status": "ok"})

	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/booking/api/booking/history/"):
		writeJSON(http.StatusOK, []map[string]any{{
			"bookingId":        "B1",
			"tripType":         "one-way",
			"outboundFlightId": "F1",
			"pnrOutbound":      "PNR001",
			"status":           "CONFIRMED",
			"contactName":      "Ann",
			"contactEmail":     "ann@example.com",
			"passengers":       []map[string]any{{"name": "Ann", "age": 30, "gender": "F", "seatOutbound": "1A"}},
		}})

	case r.Method == http.MethodPost && r.URL.Path == "/booking/api/booking/F1":
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		s.bookings = append(s.bookings, req)
		s.mu.Unlock()
		writeJSON(http.StatusCreated, map[string]any{
			"bookingId":        "B2",
			"outboundFlightId": "F1",
			"pnrOutbound":      "PNR002",
			"passengers":       req["passengers"],
		})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/booking/api/booking/cancel/"):
		w.WriteHeader(http.StatusMethodNotAllowed)

	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/booking/api/booking/cancel/"):
		writeJSON(http.StatusOK, map[string]any{"message": "Booking cancelled"})

	default:
		http.NotFound(w, r)
	}
}

func (s *fakeServer) seen(req string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.requests {
		if r == req {
			return true
		}
	}
	return false
}

type harness struct {
	globals *Globals
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	server  *fakeServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	fake := &fakeServer{t: t}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		server: fake,
	}
	h.globals = &Globals{
		Version: "test",
		Settings: config.Settings{
			ServerURL: srv.URL,
			StateDir:  t.TempDir(),
			NoCache:   true,
			Timeout:   5 * time.Second,
		},
		Stdout: h.stdout,
		Stderr: h.stderr,
	}
	return h
}

func (h *harness) reset() {
	h.stdout.Reset()
	h.stderr.Reset()
}

func (h *harness) login(t *testing.T, username string) {
	t.Helper()
	cmd := &LoginCmd{Username: username, Email: "ann@example.com", Password: "Secret1!"}
	require.NoError(t, cmd.Run(context.Background(), h.globals))
	h.reset()
}

func TestLoginCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("success persists the session", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, (&LoginCmd{Username: "ann", Email: "ann@example.com", Password: "Secret1!"}).Run(ctx, h.globals))
		assert.Contains(t, h.stderr.String(), "Logged in successfully")

		h.reset()
		require.NoError(t, (&WhoamiCmd{}).Run(ctx, h.globals))
		out := h.stdout.String()
		assert.Contains(t, out, "Username:     ann")
		assert.Contains(t, out, "Email:        ann@example.com")
		assert.Contains(t, out, "Role:         ROLE_USER")
	})

	t.Run("invalid email issues no request", func(t *testing.T) {
		h := newHarness(t)
		err := (&LoginCmd{Username: "ann", Email: "nope", Password: "x"}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Please enter username, valid email, and password.")
		assert.False(t, h.server.seen("POST /auth/login"))
	})

	t.Run("rejected credentials", func(t *testing.T) {
		h := newHarness(t)
		err := (&LoginCmd{Username: "bad", Email: "bad@example.com", Password: "x"}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Invalid credentials")
	})

	t.Run("expired password", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, (&LoginCmd{Username: "stale", Email: "ann@example.com", Password: "x"}).Run(ctx, h.globals))
		assert.Contains(t, h.stdout.String(), "password change")

		h.reset()
		err := (&HistoryCmd{}).Run(ctx, h.globals)
		var redirect *guard.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, "/change-password?reason=password_expired", redirect.Decision.Target())
		assert.Contains(t, h.stderr.String(), "Your password has expired")
	})
}

func TestHistoryCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login", func(t *testing.T) {
		h := newHarness(t)
		err := (&HistoryCmd{}).Run(ctx, h.globals)
		var redirect *guard.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, guard.PathLogin, redirect.Decision.Redirect)
		assert.Contains(t, h.stderr.String(), "Please log in first")
	})

	t.Run("lists bookings with routes", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		require.NoError(t, (&HistoryCmd{}).Run(ctx, h.globals))
		out := h.stdout.String()
		assert.Contains(t, out, "B1")
		assert.Contains(t, out, "PNR001")
		assert.Contains(t, out, "Delhi → Mumbai")
		assert.True(t, h.server.seen("GET /booking/api/booking/history/ann@example.com"))
	})

	t.Run("prints ticket", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		require.NoError(t, (&HistoryCmd{Ticket: "pnr001"}).Run(ctx, h.globals))
		out := h.stdout.String()
		assert.Contains(t, out, "BOARDING PASS")
		assert.Contains(t, out, "Air India")
	})

	t.Run("admins are sent to the console", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "root")

		err := (&HistoryCmd{}).Run(ctx, h.globals)
		var redirect *guard.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, guard.PathAdmin, redirect.Decision.Redirect)
	})
}

func TestBookCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("seat already booked", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		err := (&BookCmd{
			FlightID:    "F1",
			TripType:    "one-way",
			ContactName: "Ann",
			Passengers:  []string{"Ann:30:F:1a"},
		}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Seat 1A is already booked")
		assert.Empty(t, h.server.bookings)
	})

	t.Run("duplicate seats within the form", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		err := (&BookCmd{
			FlightID:    "F1",
			TripType:    "one-way",
			ContactName: "Ann",
			Passengers:  []string{"Ann:30:F:2B", "Bob:31:M:2B"},
		}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Seat 2B is already selected by another passenger")
	})

	t.Run("books with session email", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		require.NoError(t, (&BookCmd{
			FlightID:    "F1",
			TripType:    "one-way",
			ContactName: "Ann",
			Passengers:  []string{"Ann:30:F:1B", "Bob:31:M:1C"},
			Ticket:      true,
		}).Run(ctx, h.globals))

		assert.Contains(t, h.stderr.String(), "Booking confirmed")
		assert.Contains(t, h.stdout.String(), "PNR002")
		assert.Contains(t, h.stdout.String(), "BOARDING PASS")

		require.Len(t, h.server.bookings, 1)
		req := h.server.bookings[0]
		assert.Equal(t, "ann@example.com", req["contactEmail"])
		passengers, ok := req["passengers"].([]any)
		require.True(t, ok)
		require.Len(t, passengers, 2)
		assert.Equal(t, "1B", passengers[0].(map[string]any)["seatOutbound"])
	})

	t.Run("unknown flight", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		err := (&BookCmd{FlightID: "F9", TripType: "one-way", ContactName: "Ann", Passengers: []string{"Ann:30:F:1B"}}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Flight not found.")
	})
}

func TestCancelCmd(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann")

	require.NoError(t, (&CancelCmd{PNR: "PNR001"}).Run(context.Background(), h.globals))
	assert.Contains(t, h.stderr.String(), "Booking cancelled")
	assert.True(t, h.server.seen("DELETE /booking/api/booking/cancel/PNR001"))
	assert.True(t, h.server.seen("POST /booking/api/booking/cancel/PNR001"))
}

func TestAdminLoginCmd(t *testing.T) {
	ctx := context.Background()

	t.Run("non admin is signed out again", func(t *testing.T) {
		h := newHarness(t)
		err := (&AdminLoginCmd{Username: "ann", Email: "ann@example.com", Password: "x"}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Admin access only. Try the user login instead.")

		h.reset()
		require.NoError(t, (&WhoamiCmd{}).Run(ctx, h.globals))
		assert.Contains(t, h.stdout.String(), "Not signed in.")
	})

	t.Run("admin reaches the console", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, (&AdminLoginCmd{Username: "root", Email: "root@example.com", Password: "x"}).Run(ctx, h.globals))
		assert.Contains(t, h.stderr.String(), "Admin login successful.")

		h.reset()
		require.NoError(t, (&AdminAirlinesListCmd{}).Run(ctx, h.globals))
		assert.Contains(t, h.stdout.String(), "Air India")

		h.reset()
		err := (&AdminAirlinesAddCmd{Code: "ai", Name: "Air India"}).Run(ctx, h.globals)
		require.Error(t, err)
		assert.Contains(t, h.stderr.String(), "Airline already exists")

		h.reset()
		require.NoError(t, (&AdminAirlinesAddCmd{Code: "uk", Name: "Vistara"}).Run(ctx, h.globals))
		assert.Contains(t, h.stdout.String(), "UK\tVistara")
		assert.True(t, h.server.seen("POST /flight/api/flight/addAirline"))
	})

	t.Run("users cannot reach the console", func(t *testing.T) {
		h := newHarness(t)
		h.login(t, "ann")

		err := (&AdminAirlinesListCmd{}).Run(ctx, h.globals)
		var redirect *guard.RedirectError
		require.ErrorAs(t, err, &redirect)
		assert.Equal(t, guard.PathHome, redirect.Decision.Redirect)
	})
}

func TestFlightsSearchCmd(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, (&FlightsSearchCmd{From: "del", To: "mum", Date: "2026-11-01", TripType: "one-way"}).Run(ctx, h.globals))
	out := h.stdout.String()
	assert.Contains(t, out, "AI101")
	assert.Contains(t, out, "Air India")

	h.reset()
	err := (&FlightsSearchCmd{From: "Delhi", To: "delhi", Date: "2026-11-01", TripType: "one-way"}).Run(ctx, h.globals)
	require.Error(t, err)
	assert.Contains(t, h.stderr.String(), "Source and destination cannot be the same.")

	h.reset()
	require.NoError(t, (&FlightsSuggestCmd{Query: "mu"}).Run(ctx, h.globals))
	assert.Equal(t, "Mumbai\n", h.stdout.String())
}

func TestSeatsCmd(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann")

	require.NoError(t, (&SeatsCmd{FlightID: "F1"}).Run(context.Background(), h.globals))
	out := h.stdout.String()
	assert.Contains(t, out, "11 of 12 seats free")
	assert.Contains(t, out, "  1  x . . . . . ")
}
