// Package pipeline converts event tables into triple datasets.
//
// A Runner reads each input table, groups its rows into events, generates the
// configured description modes and writes one JSON Lines file per mode. The
// outputs can then be split into train/val/test files, exported as RDF and
// handed to the optional sinks: a key-value store, the graph ingest stream
// and a Neo4j database.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semevents/bert"
	"github.com/c360studio/semevents/config"
	"github.com/c360studio/semevents/dataset"
	"github.com/c360studio/semevents/event"
	"github.com/c360studio/semevents/export"
	"github.com/c360studio/semevents/metrics"
	"github.com/c360studio/semevents/rules"
	"github.com/c360studio/semevents/storage"
	"github.com/c360studio/semevents/triples"
)

// Row error kinds reported to metrics.
const (
	RowErrorRelation = "relation_not_established"
	RowErrorOther    = "other"
)

// Store keeps generated descriptions.
type Store interface {
	Put(ctx context.Context, mode, source string, desc triples.Description) (storage.Key, error)
}

// Publisher sends complex descriptions to the graph. It returns the number
// of entities published.
type Publisher interface {
	Publish(ctx context.Context, source string, desc triples.Description) (int, error)
}

// Loader bulk-loads complex descriptions of one source table.
type Loader interface {
	Load(ctx context.Context, descs []triples.Description, source string) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records conversion metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithStore stores every generated description.
func WithStore(s Store) Option {
	return func(r *Runner) {
		r.store = s
	}
}

// WithPublisher publishes complex descriptions.
func WithPublisher(p Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithLoader loads complex descriptions into a graph database.
func WithLoader(l Loader) Option {
	return func(r *Runner) {
		r.loader = l
	}
}

// WithIDProvider overrides the identifier source of complex mode.
func WithIDProvider(ids triples.IDProvider) Option {
	return func(r *Runner) {
		if ids != nil {
			r.ids = ids
		}
	}
}

// Runner executes the conversion pipeline for a configuration.
type Runner struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	store     Store
	publisher Publisher
	loader    Loader

	ids     triples.IDProvider
	sep     rune
	adapter *bert.Adapter
	format  export.Format
	ratios  dataset.Ratios
}

// NewRunner creates a runner for cfg. Identifiers are random UUIDs unless the
// configuration asks for sequential ones or an IDProvider option is given.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	sep, err := dataset.ParseSeparator(cfg.Input.Separator)
	if err != nil {
		return nil, err
	}

	locale, err := bert.ParseLocale(cfg.Naturalizer.Locale)
	if err != nil {
		return nil, err
	}

	var format export.Format
	if cfg.Output.RDFFormat != "" {
		if format, err = export.ParseFormat(cfg.Output.RDFFormat); err != nil {
			return nil, err
		}
	}

	r := &Runner{
		cfg:     cfg,
		logger:  slog.Default(),
		ids:     triples.UUIDs{},
		sep:     sep,
		adapter: bert.NewAdapter(bert.NewNaturalizer(locale)),
		format:  format,
		ratios: dataset.Ratios{
			Train: cfg.Split.Train,
			Val:   cfg.Split.Val,
			Test:  cfg.Split.Test,
		},
	}
	if cfg.Output.Sequential {
		r.ids = &triples.SequenceIDs{}
	}

	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunResult summarizes the conversion of one input table.
type RunResult struct {
	Input       string
	Rows        int
	Groups      int
	DroppedRows int
	// Triples counts the triples written per mode.
	Triples map[string]int
	// Files are the JSON Lines outputs, one per mode.
	Files      []string
	SplitFiles []string
	RDFFile    string
	Stored     int
	Published  int
	RowErrors  []*triples.RowError
	Duration   time.Duration
}

// Run converts every table selected by the configured input paths.
func (r *Runner) Run(ctx context.Context) ([]*RunResult, error) {
	paths, err := ResolveInputs(r.cfg.Input.Paths)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoInputs, r.cfg.Input.Paths)
	}
	return r.RunFiles(ctx, paths)
}

// RunFiles converts the given tables in order. An unreadable table is logged
// and skipped; other failures are collected and conversion continues with the
// next table.
func (r *Runner) RunFiles(ctx context.Context, paths []string) ([]*RunResult, error) {
	var results []*RunResult
	var errs []error

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := r.RunFile(ctx, path)
		if errors.Is(err, dataset.ErrTableUnreadable) {
			r.logger.Warn("Skipping unreadable input", "path", path, "error", err)
			continue
		}
		if res != nil {
			results = append(results, res)
		}
		if err != nil {
			r.logger.Error("Conversion failed", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return results, errors.Join(errs...)
}

// groupOutput holds the descriptions generated for one event group.
type groupOutput struct {
	simple  triples.Description
	bert    triples.Description
	complex triples.Description
	err     error
}

// RunFile converts one table. The result is returned even when a sink fails
// after the files were written.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	start := time.Now()
	defer r.metrics.ObserveRun(start)

	rows, err := dataset.ReadTable(path, r.sep)
	if err != nil {
		return nil, err
	}
	r.metrics.AddRows(len(rows))

	groups, dropped := event.GroupRows(rows, r.cfg.Input.GroupBy)
	if dropped > 0 {
		r.metrics.AddDroppedRows(dropped)
		r.logger.Warn("Dropped rows without grouping key",
			"path", path,
			"column", r.cfg.Input.GroupBy,
			"count", dropped)
	}
	r.countUnmatched(groups)

	res := &RunResult{
		Input:       path,
		Rows:        len(rows),
		Groups:      len(groups),
		DroppedRows: dropped,
		Triples:     make(map[string]int),
	}
	defer func() { res.Duration = time.Since(start) }()

	outs, err := r.generate(ctx, groups)
	if err != nil {
		return nil, err
	}

	descs := make(map[string][]triples.Description, len(config.AllModes))
	for _, out := range outs {
		res.RowErrors = append(res.RowErrors, r.reportRowErrors(path, out.err)...)
		if r.cfg.HasMode(config.ModeSimple) {
			descs[config.ModeSimple] = append(descs[config.ModeSimple], out.simple)
		}
		if r.cfg.HasMode(config.ModeBERT) {
			descs[config.ModeBERT] = append(descs[config.ModeBERT], out.bert)
		}
		if r.cfg.HasMode(config.ModeComplex) {
			descs[config.ModeComplex] = append(descs[config.ModeComplex], out.complex)
		}
	}

	dir := r.outputDir(path)
	base := baseName(path)

	for _, mode := range config.AllModes {
		if !r.cfg.HasMode(mode) {
			continue
		}
		if err := r.writeMode(res, dir, base, mode, descs[mode]); err != nil {
			return res, err
		}
	}

	if r.format != "" && r.cfg.HasMode(config.ModeComplex) {
		file, err := r.exportRDF(dir, base, descs[config.ModeComplex])
		if err != nil {
			return res, err
		}
		res.RDFFile = file
	}

	if err := r.sink(ctx, res, path, descs); err != nil {
		return res, err
	}

	r.logger.Info("Converted event table",
		"path", path,
		"rows", res.Rows,
		"groups", res.Groups,
		"files", len(res.Files),
		"row_errors", len(res.RowErrors))
	return res, nil
}

// generate converts groups with at most cfg.Workers in flight. Outputs keep
// the group order.
func (r *Runner) generate(ctx context.Context, groups []event.Group) ([]groupOutput, error) {
	outs := make([]groupOutput, len(groups))
	complexGen := triples.NewComplexGenerator(r.ids)

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, group := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outs[i] = r.convert(complexGen, group)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

// convert generates the configured modes for one group.
func (r *Runner) convert(complexGen *triples.ComplexGenerator, group event.Group) groupOutput {
	var out groupOutput

	if r.cfg.HasMode(config.ModeSimple) || r.cfg.HasMode(config.ModeBERT) {
		out.simple = triples.Simple(group)
		r.metrics.ObserveGroup(config.ModeSimple, len(out.simple.Triples))
	}
	if r.cfg.HasMode(config.ModeBERT) {
		out.bert = r.adapter.Adapt(out.simple)
		r.metrics.ObserveGroup(config.ModeBERT, len(out.bert.Triples))
	}
	if r.cfg.HasMode(config.ModeComplex) {
		out.complex, out.err = complexGen.Generate(group)
		r.metrics.ObserveGroup(config.ModeComplex, len(out.complex.Triples))
	}
	return out
}

// countUnmatched counts records whose change matches no predicate rule.
func (r *Runner) countUnmatched(groups []event.Group) {
	for _, group := range groups {
		for _, rec := range group.Records {
			if !rec.ChangeType.IsPresent() {
				continue
			}
			if _, ok := rules.ResolveRecord(rec); !ok {
				r.metrics.UnmatchedRule()
				r.logger.Debug("No predicate rule for change",
					"group", group.Key,
					"change_type", rec.ChangeType.String(),
					"change_on", rec.ChangeOn.String(),
					"attribute_type", rec.AttributeType.String())
			}
		}
	}
}

// reportRowErrors logs and counts the row errors of one complex group.
func (r *Runner) reportRowErrors(path string, err error) []*triples.RowError {
	rowErrs := triples.RowErrors(err)
	for _, re := range rowErrs {
		kind := RowErrorOther
		if errors.Is(re, triples.ErrRelationNotEstablished) {
			kind = RowErrorRelation
		}
		r.metrics.RowError(kind)
		r.logger.Warn("Row skipped in complex description",
			"path", path,
			"group", re.Group,
			"row", re.Row,
			"error", re.Err)
	}
	return rowErrs
}

// writeMode writes the JSON Lines output of one mode and splits it.
func (r *Runner) writeMode(res *RunResult, dir, base, mode string, descs []triples.Description) error {
	file := filepath.Join(dir, base+"_"+mode+".jsonl")
	if err := dataset.WriteJSONL(file, descs); err != nil {
		return err
	}
	res.Files = append(res.Files, file)

	count := 0
	for _, d := range descs {
		count += len(d.Triples)
	}
	res.Triples[mode] = count
	r.logger.Debug("Wrote descriptions", "path", file, "mode", mode, "descriptions", len(descs))

	if !r.cfg.Split.Enabled {
		return nil
	}

	split, err := dataset.Split(file, dir, r.ratios, r.cfg.Split.Seed)
	if err != nil {
		return err
	}
	res.SplitFiles = append(res.SplitFiles, split.Files()...)
	r.logger.Info("Dataset split",
		"source", file,
		"train", split.TrainPath,
		"val", split.ValPath,
		"test", split.TestPath,
		"counts", fmt.Sprintf("%d/%d/%d", split.Train, split.Val, split.Test))
	return nil
}

// exportRDF writes the complex descriptions in the configured RDF format.
func (r *Runner) exportRDF(dir, base string, descs []triples.Description) (string, error) {
	exporter := export.NewRDFExporter()
	for _, d := range descs {
		exporter.AddDescription(d)
	}

	ext := ".rdf"
	if info, ok := export.GetFormatInfo(r.format); ok {
		ext = info.Extension
	}
	file := filepath.Join(dir, base+"_"+config.ModeComplex+ext)
	if err := exporter.WriteFile(file, r.format); err != nil {
		return "", err
	}
	r.logger.Debug("Exported RDF", "path", file, "format", r.format, "resources", exporter.Len())
	return file, nil
}

// sink hands the descriptions to the configured store, publisher and loader.
func (r *Runner) sink(ctx context.Context, res *RunResult, path string, descs map[string][]triples.Description) error {
	source := filepath.Base(path)

	if r.store != nil {
		for _, mode := range config.AllModes {
			for _, d := range descs[mode] {
				if _, err := r.store.Put(ctx, mode, source, d); err != nil {
					return fmt.Errorf("store %s description %q: %w", mode, d.EventID(), err)
				}
				res.Stored++
			}
		}
	}

	complexDescs := descs[config.ModeComplex]

	if r.publisher != nil {
		for _, d := range complexDescs {
			n, err := r.publisher.Publish(ctx, source, d)
			res.Published += n
			if err != nil {
				return fmt.Errorf("publish description %q: %w", d.EventID(), err)
			}
		}
	}

	if r.loader != nil && len(complexDescs) > 0 {
		if err := r.loader.Load(ctx, complexDescs, source); err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
	}
	return nil
}

func (r *Runner) outputDir(input string) string {
	if r.cfg.Output.Dir != "" {
		return r.cfg.Output.Dir
	}
	return filepath.Dir(input)
}

// baseName returns the file name of path without its extension.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
