package enrichment

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/sgl-project/modelcost/pkg/configutils"
	"github.com/sgl-project/modelcost/pkg/logging"
)

// Config defines the configuration for the model enrichment step.
type Config struct {
	Logger logging.Interface

	ExportDir string `mapstructure:"export_dir" validate:"required"`
	// HFEndpoint overrides the HuggingFace Hub endpoint, mainly for tests.
	HFEndpoint string `mapstructure:"hf_endpoint"`
	// FetchDelaySeconds is the politeness delay between Hub requests.
	FetchDelaySeconds int `mapstructure:"fetch_delay_seconds" validate:"gte=0"`
}

// Option defines a function that applies configuration options
type Option func(*Config) error

// Apply applies the given options to the configuration
func (c *Config) Apply(opts ...Option) error {
	for _, o := range opts {
		if o != nil {
			if err := o(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		FetchDelaySeconds: 2,
	}
}

// NewConfig builds and returns a new configuration from the given options
func NewConfig(opts ...Option) (*Config, error) {
	c := defaultConfig()
	if err := c.Apply(opts...); err != nil {
		return nil, fmt.Errorf("failed to apply config options: %w", err)
	}
	return c, nil
}

// WithLogger sets the logger for the configuration
func WithLogger(logger logging.Interface) Option {
	return func(c *Config) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.Logger = logger
		return nil
	}
}

// WithViper loads configuration using Viper
func WithViper(v *viper.Viper) Option {
	return func(c *Config) error {
		*c = *defaultConfig()

		if err := configutils.BindEnvsRecursive(v, c, ""); err != nil {
			return fmt.Errorf("error binding envs: %w", err)
		}
		if err := v.Unmarshal(c); err != nil {
			return fmt.Errorf("error unmarshalling config: %w", err)
		}
		return nil
	}
}

// WithAppParams applies configuration parameters from step-specific params
func WithAppParams(params stepParams) Option {
	return func(c *Config) error {
		return nil
	}
}

// FetchDelay returns the configured politeness delay.
func (c *Config) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelaySeconds) * time.Second
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
