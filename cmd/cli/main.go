package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/flightdesk/cmd/cli/internal/commands"
	"github.com/wolfeidau/flightdesk/internal/config"
	"github.com/wolfeidau/flightdesk/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Sign in"`
		Register commands.RegisterCmd `cmd:"" help:"Create an account"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Sign out"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the current session"`
		Password commands.PasswordCmd `cmd:"" help:"Change or reset your password"`
		Flights  commands.FlightsCmd  `cmd:"" help:"Browse and search flights"`
		Seats    commands.SeatsCmd    `cmd:"" help:"Show the seat map of a flight"`
		Book     commands.BookCmd     `cmd:"" help:"Book a flight"`
		History  commands.HistoryCmd  `cmd:"" help:"List your bookings"`
		Cancel   commands.CancelCmd   `cmd:"" help:"Cancel a booking"`
		Admin    commands.AdminCmd    `cmd:"" help:"Admin console"`

		Server   string        `help:"Server URL" env:"FLIGHTDESK_SERVER"`
		StateDir string        `help:"Directory holding the session state" name:"state-dir" env:"FLIGHTDESK_STATE_DIR"`
		CacheDir string        `help:"Directory for cached responses" name:"cache-dir" env:"FLIGHTDESK_CACHE_DIR"`
		NoCache  bool          `help:"Disable response caching" name:"no-cache" env:"FLIGHTDESK_NO_CACHE"`
		Timeout  time.Duration `help:"Request timeout" env:"FLIGHTDESK_TIMEOUT"`
		Config   string        `help:"Config file (default ~/.flightdesk/config.yaml)" env:"FLIGHTDESK_CONFIG" type:"path"`
		Debug    bool          `help:"Enable debug mode." env:"FLIGHTDESK_DEBUG"`
		Version  kong.VersionFlag
	}
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Warn().Err(err).Msg("ignoring .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("flightdesk-cli"),
		kong.Description("Search, book and manage flights."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	settings, err := config.Resolve(cli.Config, config.Settings{
		ServerURL: cli.Server,
		StateDir:  cli.StateDir,
		CacheDir:  cli.CacheDir,
		NoCache:   cli.NoCache,
		Timeout:   cli.Timeout,
	})
	cmd.FatalIfErrorf(err)

	err = cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version, Settings: settings})
	cmd.FatalIfErrorf(err)
}
