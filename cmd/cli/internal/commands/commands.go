package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/internal/client"
	"github.com/wolfeidau/flightdesk/internal/config"
	"github.com/wolfeidau/flightdesk/internal/form"
	"github.com/wolfeidau/flightdesk/internal/guard"
	"github.com/wolfeidau/flightdesk/internal/kv"
	"github.com/wolfeidau/flightdesk/internal/notify"
	"github.com/wolfeidau/flightdesk/internal/session"
)

type Globals struct {
	Debug    bool
	Version  string
	Settings config.Settings

	Stdout io.Writer
	Stderr io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr != nil {
		return g.Stderr
	}
	return os.Stderr
}

var errFlightNotFound = errors.New("flight not found")

// app is what every command works with: the API client, the persisted
// session and the notification line on stderr.
type app struct {
	api      *client.Client
	session  *session.Manager
	notifier *notify.Notifier
	out      io.Writer
}

func (g *Globals) open() (*app, error) {
	store, err := kv.NewFileStore(g.Settings.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize state store: %w", err)
	}

	api, err := client.New(client.Config{
		ServerURL: g.Settings.ServerURL,
		Timeout:   g.Settings.Timeout,
		CacheDir:  g.Settings.CacheDir,
		NoCache:   g.Settings.NoCache,
		Debug:     g.Debug,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	mgr, err := session.NewManager(store, api)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	api.SetTokenSource(mgr)

	mgr.Subscribe(func(s *session.Session) {
		if s == nil {
			log.Debug().Msg("signed out")
			return
		}
		log.Debug().
			Str("fingerprint", s.Fingerprint()).
			Bool("mustChangePassword", s.MustChangePassword).
			Msg("session updated")
	})

	n := notify.New()
	n.Subscribe(notify.WriterSink(g.stderr()))

	return &app{
		api:      api,
		session:  mgr,
		notifier: n,
		out:      g.stdout(),
	}, nil
}

// navigate runs the route guards for path.
func (a *app) navigate(path string) error {
	err := guard.Enforce(a.session, path)

	var redirect *guard.RedirectError
	if errors.As(err, &redirect) {
		msg := redirectMessage(redirect.Decision)
		a.notifier.Error(msg)
		return fmt.Errorf("%s: %w", msg, err)
	}

	return err
}

func redirectMessage(d guard.Decision) string {
	switch d.Redirect {
	case guard.PathLogin:
		return "Please log in first (flightdesk-cli login)"
	case guard.PathAdminLogin:
		return "Admin login required (flightdesk-cli admin login)"
	case guard.PathAdmin:
		return "Admins manage flights from the console (flightdesk-cli admin --help)"
	case guard.PathChangePassword:
		return "Your password has expired (flightdesk-cli password change)"
	case guard.PathHome:
		return "Admin access only"
	default:
		return "Navigation blocked, go to " + d.Target()
	}
}

// fail shows err as an error notification and returns it.
func (a *app) fail(err error, fallback string) error {
	a.notifier.Error(userMessage(err, fallback))
	return err
}

func userMessage(err error, fallback string) string {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message()
	case errors.Is(err, client.ErrNotAuthenticated):
		return "Please log in first."
	case errors.Is(err, form.ErrPending):
		return "Please wait for the current request to finish."
	case errors.Is(err, errFlightNotFound):
		return "Flight not found."
	default:
		return client.Message(err, fallback)
	}
}
