// Package config resolves client settings from flags, environment, an
// optional YAML file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	DefaultServerURL = "http://localhost:9000"
	DefaultTimeout   = 30 * time.Second
	DirName          = ".flightdesk"
	FileName         = "config.yaml"
)

// Settings is the resolved configuration.
type Settings struct {
	ServerURL string        `yaml:"server"`
	StateDir  string        `yaml:"stateDir"`
	CacheDir  string        `yaml:"cacheDir"`
	Timeout   time.Duration `yaml:"timeout"`
	NoCache   bool          `yaml:"noCache"`
}

// Defaults returns the built-in settings rooted at home.
func Defaults(home string) Settings {
	stateDir := filepath.Join(home, DirName)
	return Settings{
		ServerURL: DefaultServerURL,
		StateDir:  stateDir,
		CacheDir:  filepath.Join(stateDir, "cache"),
		Timeout:   DefaultTimeout,
	}
}

// DefaultPath returns ~/.flightdesk/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, DirName, FileName), nil
}

// LoadDotEnv loads the named .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
		log.Debug().Str("path", p).Msg("loaded env file")
	}

	return nil
}

// ReadFile decodes the YAML file at path. A missing file yields zero settings.
func ReadFile(path string) (Settings, error) {
	var s Settings

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return s, nil
}

// Merge layers the non-zero fields of each settings value over base, later
// values winning.
func Merge(base Settings, layers ...Settings) Settings {
	out := base
	for _, l := range layers {
		if l.ServerURL != "" {
			out.ServerURL = l.ServerURL
		}
		if l.StateDir != "" {
			out.StateDir = l.StateDir
			if l.CacheDir == "" && out.CacheDir == filepath.Join(base.StateDir, "cache") {
				out.CacheDir = filepath.Join(l.StateDir, "cache")
			}
		}
		if l.CacheDir != "" {
			out.CacheDir = l.CacheDir
		}
		if l.Timeout > 0 {
			out.Timeout = l.Timeout
		}
		if l.NoCache {
			out.NoCache = true
		}
	}
	return out
}

// Resolve reads the config file at path (or the default location when empty)
// and applies overrides on top of it.
func Resolve(path string, overrides Settings) (Settings, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Settings{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	if path == "" {
		path = filepath.Join(home, DirName, FileName)
	}

	file, err := ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	s := Merge(Defaults(home), file, overrides)

	log.Debug().
		Str("config", path).
		Str("server", s.ServerURL).
		Str("stateDir", s.StateDir).
		Dur("timeout", s.Timeout).
		Msg("configuration resolved")

	return s, nil
}
