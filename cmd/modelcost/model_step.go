package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/internal/pipeline/enrichment"
	aferoModule "github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/notify"
)

// ModelStep implements the StepModule interface for model enrichment
type ModelStep struct {
	step *enrichment.Step
}

// Name returns the name of the step
func (m *ModelStep) Name() string {
	return "models"
}

// ShortDescription returns a short description of the step
func (m *ModelStep) ShortDescription() string {
	return "Enrich benchmark models from HuggingFace"
}

// LongDescription returns a detailed description of the step
func (m *ModelStep) LongDescription() string {
	return "Fetches HuggingFace configs for every mapped open-weights model, derives parameter counts, precision and KV-cache geometry, and exports models.json"
}

// ConfigureCommand configures the step command
func (m *ModelStep) ConfigureCommand(cmd *cobra.Command) {
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runStepCommand(cmd, m, m.Start)
	}
}

// FxModules returns the fx modules needed by this step
func (m *ModelStep) FxModules() []fx.Option {
	return []fx.Option{
		aferoModule.Module,
		logging.Module,
		metrics.Module,
		notify.Module,
		enrichment.Module,
		fx.Populate(&m.step),
	}
}

// Start runs the step
func (m *ModelStep) Start() error {
	_, err := m.step.Run(context.Background())
	return err
}

// NewModelStep creates a new model enrichment step command
func NewModelStep() *ModelStep {
	return &ModelStep{}
}
