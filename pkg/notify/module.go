package notify

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/pkg/logging"
)

type notifierParams struct {
	fx.In

	Logger logging.Interface
	Viper  *viper.Viper
}

// Module provides the SMTP notifier via fx. The notifier stays disabled
// when the `notify` config block has no credentials.
var Module = fx.Provide(
	func(params notifierParams) (*Notifier, error) {
		var config Config
		if err := params.Viper.UnmarshalKey("notify", &config); err != nil {
			return nil, fmt.Errorf("error unmarshalling notify config: %w", err)
		}
		return NewNotifier(config, params.Logger), nil
	})
