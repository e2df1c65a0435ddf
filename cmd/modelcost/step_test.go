package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/fx"
)

// MockStepModule is a mock implementation of the StepModule interface for testing
type MockStepModule struct {
	mock.Mock
}

func (m *MockStepModule) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStepModule) ShortDescription() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStepModule) LongDescription() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockStepModule) FxModules() []fx.Option {
	args := m.Called()
	return args.Get(0).([]fx.Option)
}

func (m *MockStepModule) ConfigureCommand(cmd *cobra.Command) {
	m.Called(cmd)
}

func (m *MockStepModule) Start() error {
	args := m.Called()
	return args.Error(0)
}

// TestCreateStepCommand tests the CreateStepCommand function
func TestCreateStepCommand(t *testing.T) {
	mockModule := new(MockStepModule)

	mockModule.On("Name").Return("mock-step")
	mockModule.On("ShortDescription").Return("Mock Step Short Description")
	mockModule.On("LongDescription").Return("Mock Step Long Description")
	mockModule.On("ConfigureCommand", mock.AnythingOfType("*cobra.Command")).Run(func(args mock.Arguments) {
		cmd := args.Get(0).(*cobra.Command)
		cmd.Run = func(cmd *cobra.Command, args []string) {}
	})

	cmd := CreateStepCommand(mockModule)

	assert.Equal(t, "mock-step", cmd.Use)
	assert.Equal(t, "Mock Step Short Description", cmd.Short)
	assert.Equal(t, "Mock Step Long Description", cmd.Long)

	configFlag := cmd.PersistentFlags().Lookup("config")
	assert.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	debugFlag := cmd.PersistentFlags().Lookup("debug")
	assert.NotNil(t, debugFlag)
	assert.Equal(t, "d", debugFlag.Shorthand)

	mockModule.AssertCalled(t, "ConfigureCommand", mock.AnythingOfType("*cobra.Command"))
}

// TestRegisteredStepCommands verifies every pipeline step is registered on
// the root command.
func TestRegisteredStepCommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Use] = true
	}
	for _, expected := range []string{"gpu", "snapshots", "models", "run"} {
		assert.True(t, names[expected], "missing command %s", expected)
	}
}
