package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/tasktrack/internal/config"
	"github.com/sadopc/tasktrack/internal/logging"
	"github.com/sadopc/tasktrack/internal/store"
	"github.com/sadopc/tasktrack/internal/tasks"
	"github.com/sadopc/tasktrack/internal/tui"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	flags.Apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, err := logging.New(logging.Options{
		File:        cfg.LogFile(),
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	s, err := store.Open(cfg.Backend, cfg.DataDir, log)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Backend, err)
	}
	defer s.Close()

	log.Info("starting",
		zap.String("backend", cfg.Backend),
		zap.String("data_dir", cfg.DataDir),
		zap.String("log_file", cfg.LogFile()),
		zap.String("policy", string(cfg.Policy())),
	)

	tr := tasks.NewTracker(s, tasks.WithPolicy(cfg.Policy()), tasks.WithLogger(log))
	app := tui.NewApp(tr, tui.Options{
		Profile:   cfg.Profile(),
		ExportDir: cfg.ExportDir,
		Logger:    log,
	})

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
