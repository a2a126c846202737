package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cijsubs/cijsubs/internal/client"
	"github.com/cijsubs/cijsubs/internal/config"
	"github.com/cijsubs/cijsubs/internal/idspec"
	"github.com/cijsubs/cijsubs/internal/metrics"
	"github.com/cijsubs/cijsubs/internal/services"
	"github.com/cijsubs/cijsubs/internal/store"
)

const sentryFlushTimeout = 2 * time.Second

// NewRootCmd builds the cijsubs command. Flags override CIJSUBS_* environment
// variables, which override config.yaml.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "cijsubs <ids|all>",
		Short: "Download video transcripts as WebVTT and plain text.",
		Long: `cijsubs downloads the transcripts of the selected videos into the output
directory, one WebVTT file and one plain-text file per video. Videos that are
already downloaded are skipped.

IDs are a comma-separated list of numbers and inclusive ranges, for example
"1-5,8,10-12". The keyword "all" selects every video of the catalog.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, cfgFile, args[0])
		},
	}

	flags := root.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	flags.String("output-dir", "transcripts", "directory the transcripts are written to")
	flags.String("base-url", "https://cijapanese.com", "base URL of the video site")
	flags.Duration("base-delay", time.Second, "wait before the first retry of a failed request")
	flags.Duration("max-delay", 30*time.Second, "upper bound of the wait between retries")
	flags.Duration("jitter", 250*time.Millisecond, "random shift applied to every retry wait, below half of --base-delay")
	flags.Int("max-attempts", 5, "attempts per request before giving up")
	flags.Duration("pause", 200*time.Millisecond, "wait before every transcript request")
	flags.Duration("client-timeout", 30*time.Second, "timeout of a single HTTP request")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent header sent with every request")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("metrics-file", "", "write Prometheus metrics to this file when the run ends")
	flags.String("sentry-dsn", "", "report failed videos to Sentry")

	return root
}

// Execute runs the root command and exits with status 1 on error
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, cfgFile, selector string) error {
	cfg, err := config.Load(viper.New(), cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	config.ConfigureLogger(cfg.LogLevel)
	logger := config.GetLogger()

	spec, err := idspec.Parse(selector)
	if err != nil {
		return err
	}

	logger.Info().
		Str("ids", selector).
		Str("output_dir", cfg.OutputDir).
		Str("base_url", cfg.BaseURL).
		Int("max_attempts", cfg.MaxAttempts).
		Dur("base_delay", cfg.BaseDelay).
		Dur("pause", cfg.Pause).
		Msg("Application started with configuration")

	st, err := store.New(cfg.OutputDir)
	if err != nil {
		return err
	}
	api, err := client.NewClient(cfg)
	if err != nil {
		return err
	}

	var opts []services.Option
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			logger.Warn().Err(err).Msg("Failed to initialize Sentry, failures will not be reported")
		} else {
			defer sentry.Flush(sentryFlushTimeout)
			opts = append(opts, services.WithFailureHook(reportFailure))
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	downloader := services.NewTranscriptDownloader(api, st, cfg, opts...)
	summary, runErr := downloader.Run(ctx, spec)

	if summary != nil {
		logger.Info().
			Int("downloaded", len(summary.Downloaded)).
			Int("skipped", len(summary.Skipped)).
			Int("unavailable", len(summary.Unavailable)).
			Int("failed", len(summary.Failed)).
			Msg("Run finished")
		for _, id := range summary.FailedIDs() {
			logger.Warn().Int("id", id).Err(summary.Failed[id]).Msg("Video was not downloaded")
		}
	}

	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error().Err(err).Msg("Failed to write metrics")
		}
	}

	if errors.Is(runErr, context.Canceled) {
		logger.Info().Msg("Interrupted, stopping")
		return nil
	}
	return runErr
}

func reportFailure(id int, err error) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("video_id", fmt.Sprint(id))
		sentry.CaptureException(err)
	})
}
