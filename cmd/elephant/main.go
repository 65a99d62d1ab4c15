package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"elephant/app"
	"elephant/config"
	"elephant/store"
	"elephant/tui"
)

var Version = "dev"

var (
	configPath string
	dataDir    string
	verbose    bool

	cfg    config.Config
	logger = zap.NewNop()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "elephant",
		Short: "Elephant - checklists with a rotating wellness list",
		Long: `Elephant keeps your work checklists next to a short list of wellness
activities. Completing a wellness task swaps it for a fresh one from the pool,
and completed tasks are cleared at the start of each day.

Run without arguments to open the interactive interface.`,
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
		RunE: runInteractive,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default $XDG_CONFIG_HOME/elephant/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "", "Directory holding the task documents")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(listsCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(addCmd())
	rootCmd.AddCommand(doneCmd())
	rootCmd.AddCommand(rolloverCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if err := cfg.EnsureDataDir(); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{cfg.LogPath()}
	zc.ErrorOutputPaths = []string{cfg.LogPath()}
	if verbose || cfg.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err = zc.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

func openStore() *app.Store {
	opts := []app.Option{
		app.WithLogger(logger),
		app.WithRotationDelay(cfg.RotationDelay),
	}
	if len(cfg.WellnessActivities) > 0 {
		opts = append(opts, app.WithWellnessActivities(cfg.WellnessActivities))
	}
	return app.New(store.NewFileBackend(cfg.DataDir, logger), opts...)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	s := openStore()
	m := tui.NewModel(s, tui.Options{
		FocusDuration: cfg.FocusDuration,
		BreakDuration: cfg.BreakDuration,
		Tokens:        app.NewTokenLedger(s, cfg.DailyTokenLimit),
		Log:           logger,
	})

	logger.Info("session started", zap.String("data_dir", cfg.DataDir))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
