package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/docwatch/internal/config"
	"github.com/aleister1102/docwatch/internal/logger"
	"github.com/aleister1102/docwatch/internal/monitor"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	pageURL    string
	keyword    string
	interval   int
	maxCycles  int
}

func buildRoot() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "docwatch",
		Short: "Watch a listing page for new documents, download them, and expire them after their TTL",
		Long: `docwatch polls a single listing page for newly published documents.
New documents are downloaded with bounded concurrency, deduplicated by
content, and deleted again once their time-to-live has elapsed. All state
survives restarts.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "path to the YAML/JSON configuration file")
	root.PersistentFlags().StringVar(&flags.pageURL, "url", "", "listing page URL (overrides config)")
	root.PersistentFlags().StringVarP(&flags.keyword, "keyword", "k", "", "only retrieve assets whose name or title contains this keyword")

	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the continuous monitoring loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, zLogger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(zLogger)
			defer stop()
			return svc.Run(ctx)
		},
	}
	monitorCmd.Flags().IntVarP(&flags.interval, "interval", "i", 0, "seconds between checks (overrides config)")
	monitorCmd.Flags().IntVar(&flags.maxCycles, "max-cycles", 0, "stop after this many cycles (0 = run forever)")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Run a single check cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, zLogger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(zLogger)
			defer stop()

			summary, err := svc.RunOnce(ctx)
			if err != nil {
				return err
			}
			printCycleSummary(summary)
			return nil
		},
	}

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Download every asset currently on the page, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, zLogger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(zLogger)
			defer stop()

			summary, err := svc.Backfill(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Backfill: %d downloaded, %d already present, %d duplicate content, %d failed (of %d on page)\n",
				summary.Downloaded, summary.SkippedExisting, summary.SkippedDuplicate, summary.Failed, summary.AssetsOnPage)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print the current monitoring state and active files",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := bootstrap(flags)
			if err != nil {
				return err
			}
			printStatus(svc.Status())
			return nil
		},
	}

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "Verify page access, extraction, and the persistence pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, zLogger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(zLogger)
			defer stop()

			results, ok := svc.SelfTest(ctx)
			for _, result := range results {
				mark := "PASS"
				if !result.Passed {
					mark = "FAIL"
				}
				fmt.Printf("[%s] %-24s %s\n", mark, result.Name, result.Detail)
			}
			if !ok {
				return fmt.Errorf("self-test failed")
			}
			return nil
		},
	}

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired files and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, zLogger, err := bootstrap(flags)
			if err != nil {
				return err
			}
			ctx, stop := signalContext(zLogger)
			defer stop()

			reaped, err := svc.Cleanup(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d expired file(s)\n", reaped)
			return nil
		},
	}

	root.AddCommand(monitorCmd, checkCmd, backfillCmd, statusCmd, selftestCmd, cleanupCmd)
	return root
}

// bootstrap loads configuration, applies flag overrides, and wires the
// service with its logger.
func bootstrap(flags *globalFlags) (*monitor.Service, zerolog.Logger, error) {
	gCfg, err := config.LoadGlobalConfig(flags.configPath)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("could not load configuration: %w", err)
	}

	if flags.pageURL != "" {
		gCfg.MonitorConfig.PageURL = flags.pageURL
	}
	if flags.keyword != "" {
		gCfg.MonitorConfig.FilterKeyword = flags.keyword
	}
	if flags.interval > 0 {
		gCfg.MonitorConfig.CheckIntervalSeconds = flags.interval
	}
	if flags.maxCycles > 0 {
		gCfg.MonitorConfig.MaxCycles = flags.maxCycles
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("could not initialize logger: %w", err)
	}

	svc, err := monitor.NewService(gCfg, zLogger)
	if err != nil {
		return nil, zLogger, err
	}
	return svc, zLogger, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(zLogger zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received signal, shutting down")
		cancel()
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}

func printCycleSummary(summary monitor.CycleSummary) {
	switch {
	case summary.Baseline:
		fmt.Printf("Baseline recorded: %d asset(s) on page, nothing downloaded\n", summary.AssetsOnPage)
	case summary.Changed:
		fmt.Printf("Page changed: %d new asset(s), %d downloaded, %d skipped, %d failed\n",
			summary.NewAssets, summary.Downloaded, summary.SkippedExisting+summary.SkippedDuplicate, summary.Failed)
	default:
		fmt.Println("No changes detected")
	}
	fmt.Printf("Active files: %d, expired files removed: %d, checks so far: %d\n",
		summary.ActiveFiles, summary.Reaped, summary.TotalChecks)
}

func printStatus(report monitor.StatusReport) {
	fmt.Printf("Page URL:        %s\n", report.PageURL)
	fmt.Printf("Download dir:    %s\n", report.DownloadDir)
	fmt.Printf("Check interval:  %s\n", report.CheckInterval)
	fmt.Printf("Baseline set:    %v\n", report.BaselineSet)
	fmt.Printf("Total checks:    %d\n", report.TotalChecks)
	fmt.Printf("New assets seen: %d\n", report.NewAssetsFound)
	fmt.Printf("Known assets:    %d\n", report.KnownAssets)
	if report.LastCheckedAt != nil {
		fmt.Printf("Last checked:    %s\n", report.LastCheckedAt.Format(time.RFC3339))
	} else {
		fmt.Println("Last checked:    never")
	}
	if report.Latest != nil {
		fmt.Printf("Latest asset:    %s (%s)\n", report.Latest.Filename, report.Latest.URL)
	}

	fmt.Printf("\nActive files (%d, %.1f KB total):\n", len(report.ActiveFiles), float64(report.TotalSizeBytes)/1024)
	if len(report.ActiveFiles) == 0 {
		fmt.Println("  none")
		return
	}
	for _, file := range report.ActiveFiles {
		note := ""
		if file.ExpiringSoon {
			note = "  (expiring soon)"
		}
		fmt.Printf("  %-50s %8.1f KB  expires in %s%s\n",
			file.Filename, float64(file.SizeBytes)/1024, file.TimeLeft.Round(time.Minute), note)
	}
}
