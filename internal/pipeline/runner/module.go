package runner

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/internal/pipeline/enrichment"
	"github.com/sgl-project/modelcost/internal/pipeline/gpudata"
	"github.com/sgl-project/modelcost/internal/pipeline/snapshot"
	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/notify"
)

type runnerParams struct {
	fx.In

	Logger   logging.Interface
	Fs       afero.Fs
	Notifier *notify.Notifier
	Metrics  *metrics.Metrics
	Viper    *viper.Viper

	GPUData    *gpudata.Step
	Snapshots  *snapshot.Step
	Enrichment *enrichment.Step
}

// Module provides the pipeline runner via fx, wiring the steps in their
// execution order: GPU data, snapshots, model enrichment.
var Module = fx.Provide(
	func(params runnerParams) (*Runner, error) {
		config, err := NewConfig(
			WithViper(params.Viper),
			WithLogger(params.Logger),
			WithAppParams(params),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating runner config: %w", err)
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid runner config: %w", err)
		}

		steps := []PipelineStep{params.GPUData, params.Snapshots, params.Enrichment}
		return NewRunner(config, steps, params.Fs, params.Notifier, params.Metrics)
	})
