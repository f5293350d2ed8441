package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docsmith/internal/analysis"
	"docsmith/internal/config"
	"docsmith/internal/correction"
	"docsmith/internal/generation"
	"docsmith/internal/logging"
	"docsmith/internal/pipeline"
	"docsmith/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Run flags
	flagProvider string
	flagModel    string
	flagTemp     float64
	flagJobs     int
	flagWrite    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docsmith",
	Short: "docsmith - structural docstring generation for Python code",
	Long: `docsmith analyzes Python source with a real parser, extracts a
structural fingerprint of each undocumented function or class (raises,
yields, mutable defaults, async), and asks an LLM to write a
Google-style docstring that is then validated against the fingerprint
and corrected until it conforms.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var runCmd *cobra.Command

func init() {
	runCmd = &cobra.Command{
		Use:   "run [path]",
		Short: "Document undocumented declarations under a file or directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			runner, ledger, err := buildRunner(ctx, cfg)
			if err != nil {
				return err
			}
			if ledger != nil {
				defer ledger.Close()
			}

			report, err := runner.Run(ctx, root)
			if report != nil {
				fmt.Print(report.Render())
			}
			return err
		},
	}
}

var watchCmd *cobra.Command

func init() {
	watchCmd = &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch a directory and document new code as it appears",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			pipe, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}

			w, err := pipeline.NewWatcher(pipe, flagWrite, logger)
			if err != nil {
				return err
			}
			err = w.Watch(ctx, root)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models available from the local Ollama server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		models := generation.ListOllamaModels(cmd.Context(), cfg.OllamaURL)
		if len(models) == 0 {
			fmt.Printf("no models found at %s (is Ollama running?)\n", cfg.OllamaURL)
			return nil
		}
		for _, m := range models {
			fmt.Println(m)
		}
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Show recent runs from the local run ledger",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ledger, err := store.Open(cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer ledger.Close()

		runs, err := ledger.Runs(cmd.Context(), 20)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %s/%s  %s  %d declaration(s)\n",
				r.StartedAt.Local().Format("2006-01-02 15:04"),
				r.ID[:8], r.Provider, r.Model, r.Root, r.Outcomes)
		}
		return nil
	},
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if cmdFlagChanged(runCmd, "temperature") || cmdFlagChanged(watchCmd, "temperature") {
		cfg.Temperature = &flagTemp
	}
	if flagJobs > 0 {
		cfg.Jobs = flagJobs
	}
	return cfg, nil
}

func cmdFlagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	gen, err := generation.NewFromConfig(ctx, cfg, logging.Named(logger, logging.CategoryGeneration))
	if err != nil {
		return nil, err
	}
	gen = generation.Gated(gen, generation.NewGate(cfg.MaxConcurrentCalls))

	table, err := analysis.LoadRecognizers(cfg.RecognizersPath)
	if err != nil {
		return nil, err
	}

	ctrl := correction.NewController(gen, cfg.MaxCorrectionPasses, logging.Named(logger, logging.CategoryCorrection))
	return pipeline.New(ctrl, analysis.NewExtractor(table), logger), nil
}

func buildRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, *store.Store, error) {
	gen, err := generation.NewFromConfig(ctx, cfg, logging.Named(logger, logging.CategoryGeneration))
	if err != nil {
		return nil, nil, err
	}
	provider, model := splitProviderModel(gen.Name())
	gen = generation.Gated(gen, generation.NewGate(cfg.MaxConcurrentCalls))

	table, err := analysis.LoadRecognizers(cfg.RecognizersPath)
	if err != nil {
		return nil, nil, err
	}

	ctrl := correction.NewController(gen, cfg.MaxCorrectionPasses, logging.Named(logger, logging.CategoryCorrection))
	pipe := pipeline.New(ctrl, analysis.NewExtractor(table), logger)

	ledger, err := store.Open(cfg.LedgerPath)
	if err != nil {
		logger.Warn("run ledger unavailable, continuing without history", zap.Error(err))
		ledger = nil
	}

	runner := pipeline.NewRunner(pipe, ledger, pipeline.RunnerOptions{
		Jobs:     cfg.Jobs,
		Write:    flagWrite,
		Provider: provider,
		Model:    model,
	}, logger)
	return runner, ledger, nil
}

func splitProviderModel(name string) (string, string) {
	if i := strings.IndexByte(name, ':'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default .docsmith/config.json)")

	for _, c := range []*cobra.Command{runCmd, watchCmd} {
		c.Flags().StringVar(&flagProvider, "provider", "", "LLM provider: auto, ollama, openai, gemini")
		c.Flags().StringVar(&flagModel, "model", "", "Model name (provider default if unset)")
		c.Flags().Float64Var(&flagTemp, "temperature", 0.1, "Sampling temperature")
		c.Flags().IntVar(&flagJobs, "jobs", 0, "Parallel file workers (config default if 0)")
		c.Flags().BoolVar(&flagWrite, "write", false, "Update files in place (default writes a .documented.py sibling)")
	}

	rootCmd.AddCommand(runCmd, watchCmd, modelsCmd, runsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
