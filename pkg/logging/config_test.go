package logging

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	config, err := NewConfig()
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, Level(""), config.Level)
}

func TestConfigFromViper(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.disableConsoleOutput", true)
	v.Set("logging.filename", "/tmp/pipeline.log")

	config, err := NewConfig(WithViper(v))
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	assert.Equal(t, Level("debug"), config.Level)
	assert.True(t, config.DisableConsoleOutput)
	assert.Equal(t, "/tmp/pipeline.log", config.Filename)
}

func TestConfigValidateRejectsNegatives(t *testing.T) {
	config := &Config{}
	config.MaxSize = -1
	assert.Error(t, config.Validate())

	config = &Config{}
	config.MaxBackups = -5
	assert.Error(t, config.Validate())
}

func TestConfigValidateRejectsBadLevel(t *testing.T) {
	config := &Config{Level: "verbose"}
	assert.Error(t, config.Validate())
}

func TestWithViperNil(t *testing.T) {
	_, err := NewConfig(WithViper(nil))
	assert.Error(t, err)
}
