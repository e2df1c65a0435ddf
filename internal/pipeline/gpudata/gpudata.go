// Package gpudata fetches GPU offering prices and hardware specs and writes
// them to the export directory.
package gpudata

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/export"
	"github.com/sgl-project/modelcost/pkg/gpusource"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
)

// Step is the GPU data step: prices from the gpuhunt catalogs, hardware
// specs from dbgpu, both exported as JSON.
type Step struct {
	config   *Config
	prices   *gpusource.PriceClient
	specs    *gpusource.SpecClient
	exporter *export.Exporter
	metrics  *metrics.Metrics
	logger   logging.Interface
}

// NewStep builds the GPU data step.
func NewStep(config *Config, fs afero.Fs, m *metrics.Metrics) (*Step, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	var priceOpts []gpusource.PriceClientOption
	if len(config.Providers) > 0 {
		priceOpts = append(priceOpts, gpusource.WithProviders(config.Providers))
	}

	return &Step{
		config:   config,
		prices:   gpusource.NewPriceClient(config.Logger, priceOpts...),
		specs:    gpusource.NewSpecClient(config.Logger),
		exporter: export.NewExporter(fs, config.ExportDir, config.Logger),
		metrics:  m,
		logger:   config.Logger,
	}, nil
}

// Name identifies the step in logs, metrics and retries.
func (s *Step) Name() string { return "gpu" }

// Run fetches offerings and specs and exports gpus.json, gpu_source.json
// and gpu_specs.json. It returns human-readable update summaries.
func (s *Step) Run(ctx context.Context) ([]string, error) {
	s.logger.Info("=== GPU Pipeline ===")

	offerings, metadata, err := s.prices.FetchOfferings(ctx)
	if err != nil {
		return nil, err
	}
	specs, err := s.specs.FetchSpecs(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.exporter.ExportOfferings(offerings); err != nil {
		return nil, err
	}
	if _, err := s.exporter.ExportGPUSource(metadata); err != nil {
		return nil, err
	}
	if _, err := s.exporter.ExportGPUSpecs(specs); err != nil {
		return nil, err
	}

	s.metrics.RecordOfferingsFetched(len(offerings))
	s.logger.Infof("GPU pipeline complete: %d offerings, %d specs", len(offerings), len(specs))
	return []string{
		fmt.Sprintf("GPU prices refreshed: %d offerings", len(offerings)),
	}, nil
}
