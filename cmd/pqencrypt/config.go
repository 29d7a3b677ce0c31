package main

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read by the CLI. Flags take precedence.
const (
	envHome       = "PQENCRYPT_HOME"
	envLogLevel   = "PQENCRYPT_LOG_LEVEL"
	envPassphrase = "PQENCRYPT_PASSPHRASE"
)

// defaultHomeDir is created under the user's home directory.
const defaultHomeDir = ".CryptGuardKeys"

// Config holds the process-level inputs of a run.
type Config struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Getenv looks up environment variables.
	Getenv func(string) string
	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string
	// ReadPassword reads a passphrase without echo from a terminal. It
	// returns ok=false when stdin is not a terminal.
	ReadPassword func(prompt string) (pass []byte, ok bool, err error)
}

// DefaultConfig returns a Config bound to the process.
func DefaultConfig() Config {
	return Config{
		Stdin:        os.Stdin,
		Stdout:       os.Stdout,
		Stderr:       os.Stderr,
		Getenv:       os.Getenv,
		EnvFile:      ".env",
		ReadPassword: readTerminalPassword,
	}
}

// settings are the resolved values of environment and dotenv entries.
type settings struct {
	Home       string
	LogLevel   string
	Passphrase string
}

// loadSettings merges the process environment over the dotenv file.
func loadSettings(cfg Config) (settings, error) {
	dotenv := map[string]string{}
	if cfg.EnvFile != "" {
		m, err := godotenv.Read(cfg.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return settings{}, err
		}
	}

	lookup := func(key string) string {
		if cfg.Getenv != nil {
			if v := cfg.Getenv(key); v != "" {
				return v
			}
		}
		return dotenv[key]
	}

	s := settings{
		Home:       lookup(envHome),
		LogLevel:   lookup(envLogLevel),
		Passphrase: lookup(envPassphrase),
	}
	if s.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return settings{}, err
		}
		s.Home = filepath.Join(home, defaultHomeDir)
	}
	return s, nil
}
