package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/ehsend/internal/adapters/eventhubs"
	"github.com/bft-labs/ehsend/internal/adapters/kafka"
	"github.com/bft-labs/ehsend/internal/adapters/metrics"
	"github.com/bft-labs/ehsend/internal/app"
	"github.com/bft-labs/ehsend/internal/cliconfig"
	"github.com/bft-labs/ehsend/internal/ports"
)

const longHelp = `Publish a number of copies of one payload to an Azure Event Hub.

Events are packed into batches sized by the service and sent as each batch
fills. A batch that fails to send is logged and skipped; the run continues.
Settings are read from the config file, then EHSEND_* environment variables,
then flags.`

var exampleUsage = strings.TrimSpace(`
  ehsend -c "$EVENTHUB_CONNECTION_STRING" -e telemetry -n 1000 -p '{"hello":"world"}'
  ehsend --config $HOME/.ehsend/config.toml --transport kafka -v
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func versionString() string {
	return fmt.Sprintf("ehsend %s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH)
}

// runFunc executes a send with a validated configuration.
type runFunc func(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error

// newRootCmd builds the ehsend command. log is replaced once verbosity is
// known so main can report errors with the configured logger.
func newRootCmd(log *zerolog.Logger, runner runFunc) *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "ehsend",
		Short:         "Publish copies of a payload to an Azure Event Hub in size-bounded batches",
		Long:          longHelp,
		Example:       exampleUsage,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flag groups are validated before RunE, so -V with -v never gets here.
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintln(cmd.OutOrStdout(), versionString())
				return nil
			}

			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			*log = cliconfig.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			log.Debug().Interface("config", cfg.Masked()).Msg("configuration")

			return runner(cmd.Context(), cfg, *log)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.ehsend/config.toml)")
	root.Flags().StringVarP(&cfg.ConnectionString, "connection-string", "c", "", "the connection string for the Event Hub")
	root.Flags().StringVarP(&cfg.EventHubName, "eventhub-name", "e", "", "the name of the Event Hub")
	root.Flags().IntVarP(&cfg.MessageCount, "message-count", "n", 0, "the number of messages to send")
	root.Flags().StringVarP(&cfg.MessagePayload, "message-payload", "p", "", "the payload of the messages")
	root.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "output verbose logging")
	root.Flags().BoolP("version", "V", false, "show version number")
	root.MarkFlagsMutuallyExclusive("verbose", "version")

	root.Flags().StringVar(&cfg.Transport, "transport", cfg.Transport, "protocol used to publish: amqp or kafka")
	root.Flags().StringVar(&cfg.PartitionKey, "partition-key", "", "partition key applied to every batch")
	root.Flags().StringVar(&cfg.PartitionID, "partition-id", "", "partition every batch is sent to")
	root.Flags().IntVar(&cfg.MaxBatchBytes, "max-batch-bytes", cfg.MaxBatchBytes, "maximum bytes per batch (0 uses the service limit)")
	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort the run after this long (0 disables)")
	root.Flags().StringVar(&cfg.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path on exit")
	root.Flags().BoolVar(&cfg.FailOnPartial, "fail-on-partial", false, "exit non-zero when any batch failed to send")

	return root
}

func main() {
	log := cliconfig.NewLogger(os.Stderr, false)
	root := newRootCmd(&log, run)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("ehsend")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error {
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	var recorder *metrics.Recorder
	var emitter app.SendEventEmitter
	if cfg.MetricsFile != "" {
		recorder = metrics.NewRecorder(cfg.EventHubName)
		emitter = recorder
	}

	runID := uuid.NewString()
	log = log.With().Str("run_id", runID).Logger()

	sender := app.NewBatchSender(newOpener(cfg), log, emitter)
	report, err := sender.Run(ctx, cfg.SendRequest(runID))

	if recorder != nil {
		if werr := recorder.WriteTextfile(cfg.MetricsFile); werr != nil {
			log.Error().Err(werr).Str("path", cfg.MetricsFile).Msg("failed to write metrics")
		}
	}
	if err != nil {
		return err
	}

	log.Debug().
		Int("requested", report.EventsRequested).
		Int("sent", report.EventsSent).
		Int("failed", report.EventsFailed).
		Int("batches", report.Batches()).
		Dur("duration", report.Duration).
		Msg("run report")

	if cfg.FailOnPartial && !report.Complete() {
		return fmt.Errorf("%d of %d batches failed, %d of %d events not delivered",
			report.BatchesFailed, report.Batches(), report.EventsRequested-report.EventsSent, report.EventsRequested)
	}
	return nil
}

func newOpener(cfg cliconfig.Config) ports.PublisherOpener {
	if cfg.Transport == cliconfig.TransportKafka {
		return kafka.NewOpener(kafka.Options{
			PartitionKey:  cfg.PartitionKey,
			MaxBatchBytes: cfg.MaxBatchBytes,
		})
	}
	return eventhubs.NewOpener(eventhubs.Options{
		PartitionKey:  cfg.PartitionKey,
		PartitionID:   cfg.PartitionID,
		MaxBatchBytes: uint64(cfg.MaxBatchBytes),
		ApplicationID: "ehsend/" + getVersion(),
	})
}
