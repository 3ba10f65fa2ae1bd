// Package main is the entry point for musickit-token. It loads configuration,
// signs one Apple MusicKit developer token, and prints it with instructions
// for pasting it into the app's config source. Every failure exits with
// status 1 and prints no token.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dskow/musickit-token/internal/config"
	"github.com/dskow/musickit-token/internal/failure"
	"github.com/dskow/musickit-token/internal/logging"
	"github.com/dskow/musickit-token/internal/report"
	"github.com/dskow/musickit-token/internal/token"
)

type app struct {
	stdout io.Writer
	stderr io.Writer
	now    func() time.Time

	configPath string
	envFile    string
	logLevel   string
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, now: time.Now}
	os.Exit(execute(a, os.Args[1:]))
}

// execute runs the command tree and returns the process exit status.
func execute(a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		failure.Write(a.stdout, err)
		return failure.ExitCode
	}
	return 0
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "musickit-token",
		Short: "Generate an Apple MusicKit developer token (ES256 JWT, valid 180 days)",
		Long: "Reads the MusicKit private key (.p8), signs a developer token with the team ID\n" +
			"as issuer and the key ID in the header, and prints it to stdout.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.generate()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to YAML config file (default: built-in credentials)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file loaded before ${VAR} expansion in the config")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level: debug|info|warn|error")

	root.AddCommand(newVerifyCmd(a))
	return root
}

func newVerifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Check a developer token against the configured key, team ID and key ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.verify(args[0])
		},
	}
}

// setup loads configuration and builds the logger.
func (a *app) setup() (*config.Config, *slog.Logger, error) {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return nil, nil, failure.Wrap(failure.ConfigInvalid, fmt.Errorf("loading env file: %w", err))
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath == "" {
		cfg, err = config.Default()
	} else {
		cfg, err = config.Load(a.configPath)
	}
	if err != nil {
		return nil, nil, failure.Wrap(failure.ConfigInvalid, err)
	}

	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	logger, err := logging.New(a.stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, nil, failure.Wrap(failure.ConfigInvalid, err)
	}

	for _, w := range cfg.Warnings {
		logger.Warn("config warning", "message", w)
	}

	source := a.configPath
	if source == "" {
		source = "built-in"
	}
	logger.Debug("configuration loaded",
		"source", source,
		"team_id", cfg.Credentials.TeamID,
		"kid", cfg.Credentials.KeyID,
		"key_path", cfg.Credentials.PrivateKeyPath,
	)

	return cfg, logger, nil
}

func credentials(cfg *config.Config) token.Credentials {
	return token.Credentials{
		TeamID:         cfg.Credentials.TeamID,
		KeyID:          cfg.Credentials.KeyID,
		PrivateKeyPath: cfg.Credentials.PrivateKeyPath,
	}
}

func (a *app) generate() error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}

	g := token.New(credentials(cfg))
	g.Now = a.now

	tok, err := g.Generate()
	if err != nil {
		logger.Info("token generation failed", "error", err)
		return err
	}

	logger.Info("developer token signed",
		"kid", tok.KeyID,
		"iss", tok.Issuer,
		"expires_at", tok.ExpiresAt,
	)

	return report.Success(a.stdout, tok, cfg.Output)
}

func (a *app) verify(signed string) error {
	cfg, logger, err := a.setup()
	if err != nil {
		return err
	}

	v := token.NewVerifier(credentials(cfg))
	v.Now = a.now

	tok, err := v.VerifyWithKeyFile(signed)
	if err != nil {
		logger.Info("token verification failed", "error", err)
		return err
	}

	logger.Info("developer token verified", "kid", tok.KeyID, "expires_at", tok.ExpiresAt)
	return report.Verified(a.stdout, tok, a.now())
}
