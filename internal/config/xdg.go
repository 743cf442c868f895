package config

import (
	"os"
	"path/filepath"
)

const appName = "quizmate"

func xdgHome(env string, fallback ...string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

// DefaultPath returns $XDG_CONFIG_HOME/quizmate/config.toml.
func DefaultPath() string {
	return filepath.Join(xdgHome("XDG_CONFIG_HOME", ".config"), appName, "config.toml")
}

// DefaultLogFile returns $XDG_STATE_HOME/quizmate/client.log.
func DefaultLogFile() string {
	return filepath.Join(xdgHome("XDG_STATE_HOME", ".local", "state"), appName, "client.log")
}

// DefaultDataDir returns $XDG_DATA_HOME/quizmate, where course files are
// looked up by default.
func DefaultDataDir() string {
	return filepath.Join(xdgHome("XDG_DATA_HOME", ".local", "share"), appName)
}
