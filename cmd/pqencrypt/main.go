// Command pqencrypt generates post-quantum keys, encrypts and decrypts
// envelopes, and signs and verifies payloads. Each invocation runs one
// workflow and exits non-zero on any error.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryptguard/pqencrypt"
	"github.com/cryptguard/pqencrypt/internal/logging"
)

// app carries state shared by the subcommands of one run.
type app struct {
	cfg      Config
	settings settings
	logger   *slog.Logger
	keychain *pqencrypt.Keychain
	opts     []pqencrypt.Option

	home    string
	verbose bool
}

func run(args []string, cfg Config, opts ...pqencrypt.Option) error {
	a := &app{cfg: cfg, opts: opts}
	root := a.rootCommand()
	if len(args) > 0 {
		args = args[1:]
	}
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pqencrypt",
		Short:         "Post-quantum key generation, envelope encryption and signatures",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.cfg.Stdin)
	root.SetOut(a.cfg.Stdout)
	root.SetErr(a.cfg.Stderr)

	root.PersistentFlags().StringVar(&a.home, "home", "", "key directory (default $"+envHome+" or ~/"+defaultHomeDir+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.keygenCommand(),
		a.encryptCommand(),
		a.decryptCommand(),
		a.signCommand(),
		a.verifyCommand(),
		a.listCommand(),
		a.showCommand(),
	)
	return root
}

func (a *app) setup() error {
	s, err := loadSettings(a.cfg)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.settings = s
	if a.home != "" {
		a.settings.Home = a.home
	}

	level := logging.ParseLevel(s.LogLevel)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = logging.NewText(a.cfg.Stderr, level)

	opts := append([]pqencrypt.Option{pqencrypt.WithLogger(a.logger)}, a.opts...)
	a.keychain = pqencrypt.NewKeychain(a.settings.Home, opts...)
	a.logger.Debug("configured", "home", a.settings.Home)
	return nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
