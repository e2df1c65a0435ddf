// Package enrichment fetches HuggingFace model configs, derives parameter
// counts and KV-cache geometry, and exports the result as models.json.
package enrichment

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/export"
	"github.com/sgl-project/modelcost/pkg/hfsource"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/modelspec"
	"github.com/sgl-project/modelcost/pkg/notify"
)

// Step is the model enrichment step.
type Step struct {
	config   *Config
	client   *hfsource.Client
	exporter *export.Exporter
	notifier *notify.Notifier
	metrics  *metrics.Metrics
	logger   logging.Interface
}

// NewStep builds the enrichment step.
func NewStep(config *Config, fs afero.Fs, notifier *notify.Notifier, m *metrics.Metrics) (*Step, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	opts := []hfsource.ClientOption{
		hfsource.WithFetchDelay(config.FetchDelay()),
	}
	if config.HFEndpoint != "" {
		opts = append(opts, hfsource.WithEndpoint(config.HFEndpoint))
	}

	return &Step{
		config:   config,
		client:   hfsource.NewClient(config.Logger, opts...),
		exporter: export.NewExporter(fs, config.ExportDir, config.Logger),
		notifier: notifier,
		metrics:  m,
		logger:   config.Logger,
	}, nil
}

// Name identifies the step in logs, metrics and retries.
func (s *Step) Name() string { return "models" }

// Run enriches every mapped model and exports models.json. Models with
// unsupported architectures are skipped and alerted, not failed.
func (s *Step) Run(ctx context.Context) ([]string, error) {
	s.logger.Info("=== Model Pipeline ===")

	specs, skipped, err := s.client.FetchAll(ctx, hfsource.ModelNameToHFID)
	if err != nil {
		return nil, err
	}

	for _, model := range skipped {
		s.metrics.RecordModelSkipped("unsupported_architecture")
		s.notifier.NotifyUnsupportedArchitecture(model.ModelName, model.ModelType, model.HFID)
	}

	rows := make([]modelspec.ModelSpec, 0, len(specs))
	for _, spec := range specs {
		s.logger.Infof("  Model '%s'", spec.ModelName)
		s.metrics.RecordModelEnriched()
		rows = append(rows, *spec)
	}

	if _, err := s.exporter.ExportModels(rows); err != nil {
		return nil, err
	}

	s.logger.Infof("Model pipeline complete: %d models", len(rows))

	var updates []string
	if len(rows) > 0 {
		updates = append(updates, fmt.Sprintf("Models enriched: %d", len(rows)))
	}
	return updates, nil
}
