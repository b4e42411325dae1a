package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/c360studio/semevents/config"
	"github.com/c360studio/semevents/dataset"
	"github.com/c360studio/semevents/metrics"
	"github.com/c360studio/semevents/pipeline"
)

// convertOptions are command-line overrides of the loaded configuration.
type convertOptions struct {
	modes      []string
	outDir     string
	groupBy    string
	separator  string
	rdfFormat  string
	locale     string
	noSplit    bool
	sequential bool
	workers    int
}

func (o *convertOptions) register(fs *pflag.FlagSet) {
	fs.StringSliceVar(&o.modes, "modes", nil, "Output modes (simple, bert, complex)")
	fs.StringVarP(&o.outDir, "out", "o", "", "Output directory (default: next to each input)")
	fs.StringVar(&o.groupBy, "group-by", "", "Grouping column (event_id or event)")
	fs.StringVar(&o.separator, "separator", "", `Field separator ("tab", "comma", "semicolon" or one character)`)
	fs.StringVar(&o.rdfFormat, "rdf", "", "Export complex triples as RDF (turtle, ntriples, jsonld)")
	fs.StringVar(&o.locale, "locale", "", "Locale of naturalized dates (fr, en)")
	fs.BoolVar(&o.noSplit, "no-split", false, "Do not split outputs into train/val/test")
	fs.BoolVar(&o.sequential, "sequential", false, "Use sequential identifiers in complex mode")
	fs.IntVar(&o.workers, "workers", 0, "Number of event groups converted concurrently")
}

// overrides builds a partial config from the flags that were set and the
// positional inputs. Unset flags stay zero so Merge keeps the loaded values.
func (o *convertOptions) overrides(fs *pflag.FlagSet, args []string) (*config.Config, error) {
	override := &config.Config{}
	override.Input.Paths = args
	if fs.Changed("modes") {
		override.Output.Modes = o.modes
	}
	if fs.Changed("out") {
		override.Output.Dir = o.outDir
	}
	if fs.Changed("group-by") {
		override.Input.GroupBy = o.groupBy
	}
	if fs.Changed("separator") {
		override.Input.Separator = o.separator
	}
	if fs.Changed("rdf") {
		override.Output.RDFFormat = o.rdfFormat
	}
	if fs.Changed("locale") {
		override.Naturalizer.Locale = o.locale
	}
	override.Output.Sequential = o.sequential
	if fs.Changed("workers") {
		if o.workers < 1 {
			return nil, fmt.Errorf("--workers must be at least 1, got %d", o.workers)
		}
		override.Workers = o.workers
	}
	return override, nil
}

// apply merges the flag overrides into cfg and validates the result.
// --no-split is applied after the merge since Merge only switches booleans on.
func (o *convertOptions) apply(cfg *config.Config, fs *pflag.FlagSet, args []string) error {
	override, err := o.overrides(fs, args)
	if err != nil {
		return err
	}
	cfg.Merge(override)
	if o.noSplit {
		cfg.Split.Enabled = false
	}
	return cfg.Validate()
}

func convertCmd(flags *globalFlags) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [table...]",
		Short: "Convert event tables into triple datasets",
		Long: `Convert reads each event table (paths or doublestar globs, default from
input.paths in the config), writes <base>_<mode>.jsonl per output mode and,
unless disabled, splits every output into train/val/test files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(flags.logLevel)

			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}
			if err := opts.apply(cfg, cmd.Flags(), args); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, err := connectServices(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer svc.Close()

			runner, err := pipeline.NewRunner(cfg, svc.options(logger, metrics.New(false))...)
			if err != nil {
				return err
			}

			results, err := runner.Run(ctx)
			printResults(cmd, results)
			return err
		},
	}

	opts.register(cmd.Flags())
	return cmd
}

// printResults writes a short report of every converted table.
func printResults(cmd *cobra.Command, results []*pipeline.RunResult) {
	out := cmd.OutOrStdout()
	for _, res := range results {
		fmt.Fprintf(out, "%s: %d rows, %d groups", res.Input, res.Rows, res.Groups)
		if res.DroppedRows > 0 {
			fmt.Fprintf(out, ", %d dropped", res.DroppedRows)
		}
		if len(res.RowErrors) > 0 {
			fmt.Fprintf(out, ", %d row errors", len(res.RowErrors))
		}
		fmt.Fprintf(out, " (%s)\n", res.Duration.Round(time.Millisecond))

		for _, file := range res.Files {
			fmt.Fprintf(out, "  %s\n", file)
		}
		if res.RDFFile != "" {
			fmt.Fprintf(out, "  %s\n", res.RDFFile)
		}
		if len(res.SplitFiles) > 0 {
			fmt.Fprintf(out, "  %d split files\n", len(res.SplitFiles))
		}
	}
}

func splitCmd(flags *globalFlags) *cobra.Command {
	var (
		outDir string
		ratios string
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "split <file.jsonl>",
		Short: "Split a JSON Lines dataset into train/val/test files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(flags.logLevel)

			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}

			r := dataset.Ratios{Train: cfg.Split.Train, Val: cfg.Split.Val, Test: cfg.Split.Test}
			if cmd.Flags().Changed("ratios") {
				if r, err = parseRatios(ratios); err != nil {
					return err
				}
			}
			if !cmd.Flags().Changed("seed") {
				seed = cfg.Split.Seed
			}

			res, err := dataset.Split(args[0], outDir, r, seed)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "train: %s (%d)\n", res.TrainPath, res.Train)
			fmt.Fprintf(out, "val:   %s (%d)\n", res.ValPath, res.Val)
			fmt.Fprintf(out, "test:  %s (%d)\n", res.TestPath, res.Test)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: next to the input)")
	cmd.Flags().StringVar(&ratios, "ratios", "0.8,0.1,0.1", "Train, val and test ratios")
	cmd.Flags().Uint64Var(&seed, "seed", dataset.DefaultSeed, "Shuffle seed")
	return cmd
}

// parseRatios parses "train,val,test".
func parseRatios(s string) (dataset.Ratios, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return dataset.Ratios{}, fmt.Errorf("ratios must be train,val,test: %q", s)
	}

	var values [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return dataset.Ratios{}, fmt.Errorf("parse ratio %q: %w", p, err)
		}
		values[i] = v
	}

	r := dataset.Ratios{Train: values[0], Val: values[1], Test: values[2]}
	if err := r.Validate(); err != nil {
		return dataset.Ratios{}, err
	}
	return r, nil
}

func watchCmd(flags *globalFlags) *cobra.Command {
	opts := &convertOptions{}
	var (
		metricsAddr string
		debounce    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [table...]",
		Short: "Convert event tables whenever they change",
		Long: `Watch converts every input table once, then watches the input
directories and converts each table again when its content changes.
Prometheus metrics are served on metrics.addr when set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(flags.logLevel)

			cfg, err := loadConfig(flags, logger)
			if err != nil {
				return err
			}
			cfg.Merge(&config.Config{
				Metrics: config.MetricsConfig{Addr: metricsAddr},
				Watch:   config.WatchConfig{Debounce: debounce},
			})
			if err := opts.apply(cfg, cmd.Flags(), args); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return watch(ctx, cfg, logger)
		},
	}

	opts.register(cmd.Flags())
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address of the /metrics endpoint")
	cmd.Flags().DurationVar(&debounce, "debounce", 0, "Quiet period before a changed table is converted")
	return cmd
}

func watch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	m := metrics.New(true)

	svc, err := connectServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	runner, err := pipeline.NewRunner(cfg, svc.options(logger, m)...)
	if err != nil {
		return err
	}

	if cfg.Metrics.Addr != "" {
		srv := serveMetrics(cfg.Metrics.Addr, m, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := pipeline.NewWatcher(cfg.Input.Paths, cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	// Initial conversion of everything already present
	inputs, err := pipeline.ResolveInputs(cfg.Input.Paths)
	if err != nil {
		return err
	}
	if _, err := runner.RunFiles(ctx, inputs); err != nil {
		logger.Warn("Initial conversion incomplete", "error", err)
	}
	for _, path := range inputs {
		w.Seed(path)
	}

	if err := w.Start(ctx); err != nil {
		return err
	}

	for path := range w.Events() {
		if _, err := runner.RunFiles(ctx, []string{path}); err != nil {
			logger.Warn("Conversion failed", "path", path, "error", err)
		}
	}

	logger.Info("Watcher stopped", "dropped_events", w.DroppedEvents())
	return nil
}

// serveMetrics starts the /metrics endpoint in the background.
func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return srv
}

func initCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the user config file with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger(flags.logLevel)

			path, err := config.NewLoader(logger).EnsureUserConfig()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
