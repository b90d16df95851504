package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marketbrief/marketbrief/internal/config"
	"github.com/marketbrief/marketbrief/internal/display"
	"github.com/marketbrief/marketbrief/internal/models"
	"github.com/marketbrief/marketbrief/internal/pipeline"
	"github.com/marketbrief/marketbrief/internal/report"
)

const version = "1.0.0"

// Execute runs the CLI and returns the process exit code: 0 full success,
// 2 partial success, 1 failure.
func Execute() int {
	exitCode := 0
	cfg := config.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:           "marketbrief",
		Short:         "marketbrief - daily multi-language financial market summaries",
		Long:          `marketbrief gathers the day's US financial news, summarizes it with an LLM, and distributes the summary to a Telegram channel in English, Arabic, Hindi and Hebrew.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runPipeline(cmd.Context(), cfg)
			exitCode = code
			return err
		},
	}

	rootCmd.AddCommand(newPreflightCmd(cfg))
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}
	return exitCode
}

func runPipeline(ctx context.Context, cfg *config.Config) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 1, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return 1, fmt.Errorf("prepare directories: %w", err)
	}

	logger, closeLog, err := buildLogger(cfg)
	if err != nil {
		return 1, err
	}
	defer closeLog()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return 1, err
	}

	if err := pipeline.Preflight(ctx, logger, a.checks); err != nil {
		return 1, err
	}

	runReport, runErr := a.pipeline.Run(ctx)

	if path, wErr := report.NewWriter(cfg.ResultsDir).Write(runReport); wErr != nil {
		logger.Errorf("write run report: %v", wErr)
	} else {
		logger.WithField("path", path).Info("run report written")
	}

	fmt.Println(display.RenderReport(runReport))

	if runErr != nil {
		return runReport.ExitCode(), fmt.Errorf("run failed: %w", runErr)
	}
	if runReport.State == models.StatePartialFailure {
		logger.Warn("run completed with partial failures")
	}
	return runReport.ExitCode(), nil
}

func newPreflightCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Validate configuration and connectivity without running the pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}

			logger, closeLog, err := buildLogger(cfg)
			if err != nil {
				return err
			}
			defer closeLog()

			a, err := buildApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			return pipeline.Preflight(cmd.Context(), logger, a.checks)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the marketbrief version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("marketbrief %s\n", version)
		},
	}
}
