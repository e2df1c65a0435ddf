// Package runner orchestrates the full pipeline: GPU data, snapshots,
// model enrichment and the final metadata export, with retries and email
// alerts around the whole run.
package runner

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/export"
	"github.com/sgl-project/modelcost/pkg/gpusource"
	"github.com/sgl-project/modelcost/pkg/hfsource"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/notify"
	"github.com/sgl-project/modelcost/pkg/snapshots"
)

// PipelineStep is one unit of the pipeline run.
type PipelineStep interface {
	Name() string
	Run(ctx context.Context) ([]string, error)
}

// Runner drives the pipeline steps in order. A transient failure retries
// the whole run; a breaking format change aborts and alerts immediately.
type Runner struct {
	config   *Config
	steps    []PipelineStep
	fs       afero.Fs
	exporter *export.Exporter
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   logging.Interface
	sleep    func(ctx context.Context, d time.Duration) error

	// metricsAddr is the bound address of the metrics listener, set once
	// serveMetrics has started it.
	metricsAddr string
}

// NewRunner builds a runner over the given steps, executed in order.
func NewRunner(
	config *Config,
	steps []PipelineStep,
	fs afero.Fs,
	notifier *notify.Notifier,
	m *metrics.Metrics,
) (*Runner, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Runner{
		config:   config,
		steps:    steps,
		fs:       fs,
		exporter: export.NewExporter(fs, config.ExportDir, config.Logger),
		notifier: notifier,
		metrics:  m,
		logger:   config.Logger,
		sleep:    sleepCtx,
	}, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Run executes the pipeline with retries. Breaking format changes skip the
// retry loop: they will not fix themselves and need a code change.
func (r *Runner) Run(ctx context.Context) error {
	stopMetrics, err := r.serveMetrics()
	if err != nil {
		return err
	}
	defer stopMetrics()

	var lastErr error
	for attempt := 1; attempt <= r.config.MaxRetries; attempt++ {
		err := r.runOnce(ctx)
		if err == nil {
			r.logger.Info("Pipeline complete!")
			return nil
		}

		var breaking *gpusource.FormatBreakingChangeError
		if errors.As(err, &breaking) {
			r.logger.WithError(err).Error("Breaking format change detected")
			r.notifier.NotifyBreakingFormatChange(breaking.Source, breaking.Details)
			r.metrics.RecordNotificationSent("breaking_format_change")
			return err
		}

		lastErr = err
		if attempt < r.config.MaxRetries {
			r.logger.WithError(err).Warnf("Attempt %d/%d failed. Retrying in %s...",
				attempt, r.config.MaxRetries, r.config.RetryDelay())
			if sleepErr := r.sleep(ctx, r.config.RetryDelay()); sleepErr != nil {
				return sleepErr
			}
		}
	}

	r.logger.WithError(lastErr).Errorf("Pipeline failed after %d attempts", r.config.MaxRetries)
	r.notifier.NotifyFailure(lastErr)
	r.metrics.RecordNotificationSent("failure")
	return lastErr
}

// serveMetrics exposes the Prometheus endpoint for the duration of the run
// when metrics_addr is configured. The returned func stops the listener.
func (r *Runner) serveMetrics() (func(), error) {
	if r.config.MetricsAddr == "" {
		return func() {}, nil
	}

	listener, err := net.Listen("tcp", r.config.MetricsAddr)
	if err != nil {
		return nil, errors.Wrap(err, "starting metrics listener")
	}
	r.metricsAddr = listener.Addr().String()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Handler: mux}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			r.logger.WithError(serveErr).Warn("Metrics server stopped")
		}
	}()

	r.logger.Infof("Serving metrics on http://%s/metrics", r.metricsAddr)
	return func() { _ = server.Close() }, nil
}

func (r *Runner) runOnce(ctx context.Context) error {
	var updates []string

	for _, step := range r.steps {
		start := time.Now()
		stepUpdates, err := step.Run(ctx)
		r.metrics.ObserveStepDuration(step.Name(), time.Since(start))
		if err != nil {
			r.metrics.RecordStepFailure(step.Name())
			return errors.Wrapf(err, "step %s", step.Name())
		}
		updates = append(updates, stepUpdates...)

		// Benchmark names settle after the snapshot step; surface models
		// that the enrichment step will not know about.
		if step.Name() == "snapshots" {
			r.CheckMissingMappings()
		}
	}

	if _, err := r.exporter.ExportMetadata(); err != nil {
		return err
	}

	if len(updates) > 0 {
		r.notifier.NotifyDataUpdated(updates)
		r.metrics.RecordNotificationSent("data_updated")
	}
	return nil
}

// CheckMissingMappings compares the latest snapshot's benchmark models with
// the HuggingFace mapping and alerts for open-weights models that have no
// mapping yet.
func (r *Runner) CheckMissingMappings() {
	index := snapshots.NewExporter(r.fs, r.config.SnapshotsDir, r.logger).LoadIndex()
	if index == nil || index.Latest == "" {
		r.logger.Debug("No snapshot index found, skipping mapping check")
		return
	}

	benchmarksPath := filepath.Join(r.config.SnapshotsDir, index.Latest, "benchmarks.json")
	raw, err := afero.ReadFile(r.fs, benchmarksPath)
	if err != nil {
		r.logger.Debugf("No benchmarks.json for latest snapshot %s", index.Latest)
		return
	}
	var entries []snapshots.BenchmarkEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		r.logger.Warnf("Could not read benchmarks.json for %s", index.Latest)
		return
	}

	seen := map[string]struct{}{}
	var names []string
	for _, entry := range entries {
		if _, ok := seen[entry.ModelName]; !ok {
			seen[entry.ModelName] = struct{}{}
			names = append(names, entry.ModelName)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		if _, ok := hfsource.ModelNameToHFID[name]; ok {
			continue
		}
		if hfsource.IsClosedSource(name) {
			continue
		}
		r.logger.Warnf("Missing HF mapping for benchmark model: %s", name)
		r.notifier.NotifyMissingMapping(name)
		r.metrics.RecordNotificationSent("missing_mapping")
	}
}
