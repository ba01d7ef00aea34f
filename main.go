package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/pipefit/internal/config"
	"github.com/sadopc/pipefit/internal/notify"
	"github.com/sadopc/pipefit/internal/store"
	"github.com/sadopc/pipefit/internal/tui"
)

var (
	configPath string
	dbPath     string
	rootCmd    = &cobra.Command{
		Use:   "pipefit",
		Short: "pipefit - workout interval timer for the terminal",
		Long: `pipefit plays timed workouts built from an exercise catalog: repetitions,
cycles, automatic rests and desktop notifications, with run history kept in
a local SQLite database.`,
		SilenceUsage: true,
		RunE:         runTUI,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command needs: the loaded config, an open store and a
// logger writing to the log file.
type env struct {
	cfg   *config.Config
	store *store.Store
	log   *slog.Logger

	logFile io.Closer
}

func (e *env) Close() {
	e.store.Close()
	if e.logFile != nil {
		e.logFile.Close()
	}
}

func setup() (*env, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}

	log, logFile, err := openLog(cfg.Log)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.Storage.DBPath)
	if err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}
	log.Debug("store opened", "path", cfg.Storage.DBPath)

	return &env{cfg: cfg, store: s, log: log, logFile: logFile}, nil
}

// openLog sets up a text logger on the configured file. The terminal
// belongs to the TUI, so nothing is logged to stderr. An empty path
// discards.
func openLog(lc config.LogConfig) (*slog.Logger, io.Closer, error) {
	level, err := lc.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	if lc.Path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(lc.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(lc.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	var sinks []notify.Sink
	if e.cfg.Notifications.Desktop {
		sinks = append(sinks, notify.NewDesktop(true))
	}

	app := tui.NewApp(e.store, tui.Options{
		TickInterval: e.cfg.Timer.TickInterval,
		Sinks:        sinks,
		Logger:       e.log,
	})
	e.log.Info("pipefit started", "db", e.cfg.Storage.DBPath, "tick", e.cfg.Timer.TickInterval)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
