package main

import (
	"context"
	"fmt"
	"io"

	"github.com/judwhite/go-svc"
	"github.com/spf13/cobra"

	"github.com/ferama/volumelog/internal/config"
	"github.com/ferama/volumelog/internal/logwriter"
	"github.com/ferama/volumelog/internal/metrics"
)

func newRootCmd() *cobra.Command {
	var metricsAddr string
	var diagLog string

	cmd := &cobra.Command{
		Use:   "volumelog",
		Short: "Append paced log entries to $LOG_PATH/log.txt",
		Long: `volumelog appends five numbered entries to log.txt inside the directory
named by LOG_PATH (default /app/logs), one per second, and reports the
file it wrote to. Mount a volume at LOG_PATH to keep entries across runs.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadFromEnv()
			cfg.MetricsAddr = metricsAddr
			cfg.DiagLog = diagLog
			return run(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address while running (e.g. :9090)")
	cmd.Flags().StringVar(&diagLog, "diag-log", "", "Also write diagnostics to this rotating file (default: stderr only)")
	return cmd
}

func run(cfg *config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	setupDiagLog(cfg.DiagLog)
	l := getLogger("volumelog")
	l.Printf("writing %d entries to %s", cfg.Entries, cfg.LogFile())

	if cfg.MetricsAddr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, getLogger("metrics")); err != nil {
				l.Printf("metrics endpoint stopped: %v", err)
			}
		}()
	}

	prg := newApp(logwriter.New(cfg, l, out))
	if err := svc.Run(prg); err != nil {
		return err
	}

	return prg.Err()
}
