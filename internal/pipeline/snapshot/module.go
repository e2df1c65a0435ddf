package snapshot

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
)

type stepParams struct {
	fx.In

	Logger  logging.Interface
	Fs      afero.Fs
	Metrics *metrics.Metrics
	Viper   *viper.Viper
}

// Module provides the snapshot step via fx
var Module = fx.Provide(
	func(params stepParams) (*Step, error) {
		config, err := NewConfig(
			WithViper(params.Viper),
			WithLogger(params.Logger),
			WithAppParams(params),
		)
		if err != nil {
			return nil, fmt.Errorf("error creating snapshot config: %w", err)
		}
		if err := config.Validate(); err != nil {
			return nil, fmt.Errorf("invalid snapshot config: %w", err)
		}
		return NewStep(config, params.Fs, params.Metrics)
	})
