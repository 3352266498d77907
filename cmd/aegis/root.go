package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/aegis-intel/aegis-console/internal/api"
	"github.com/aegis-intel/aegis-console/internal/config"
	"github.com/aegis-intel/aegis-console/internal/identity"
	"github.com/aegis-intel/aegis-console/internal/intel"
	"github.com/aegis-intel/aegis-console/internal/oplog"
	"github.com/aegis-intel/aegis-console/internal/session"
	"github.com/aegis-intel/aegis-console/internal/tui"
)

var (
	envFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aegis",
	Short: "Aegis - secure mission operations console",
	Long: `Aegis is the terminal console for the mission-intel platform.

It authenticates against the identity provider, then opens the
operations workspace; supervisory tiers additionally get the
administration board. Configuration comes from an optional .env file
and AEGIS_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runConsole,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func runConsole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.Identity.Username == "" || cfg.Identity.Password == "" {
		return errors.New("credentials missing: set AEGIS_USERNAME and AEGIS_PASSWORD")
	}

	logger, closeLog, err := openLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	auth := identity.New(
		cfg.Identity.URL,
		cfg.Identity.Realm,
		cfg.Identity.ClientID,
		cfg.Identity.Username,
		cfg.Identity.Password,
		identity.WithLogger(logger),
	)

	log := oplog.NewBuffer(oplog.DefaultCapacity)
	sess, err := session.Establish(ctx, auth, logger, log)
	if err != nil {
		return err
	}

	client := api.New(cfg.Backend.BaseURL, auth, api.WithLogger(logger))
	engine := intel.NewEngine(client, intel.WithLogger(logger))

	app := tui.New(ctx, sess, engine, log, logger)
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("console terminated: %w", err)
	}
	return nil
}

// openLogger opens the file-backed structured logger. The TUI owns the
// terminal, so slog never writes to stdout.
func openLogger(cfg config.LogConfig) (*slog.Logger, func(), error) {
	file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
	}

	level := parseLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(handler), func() { file.Close() }, nil
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
