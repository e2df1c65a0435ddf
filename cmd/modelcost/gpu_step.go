package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/internal/pipeline/gpudata"
	aferoModule "github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
)

// GPUStep implements the StepModule interface for GPU price and spec data
type GPUStep struct {
	step *gpudata.Step
}

// Name returns the name of the step
func (g *GPUStep) Name() string {
	return "gpu"
}

// ShortDescription returns a short description of the step
func (g *GPUStep) ShortDescription() string {
	return "Fetch GPU prices and hardware specs"
}

// LongDescription returns a detailed description of the step
func (g *GPUStep) LongDescription() string {
	return "Fetches on-demand GPU offerings from the gpuhunt catalogs and hardware specs from the dbgpu database, and exports gpus.json, gpu_source.json and gpu_specs.json"
}

// ConfigureCommand configures the step command
func (g *GPUStep) ConfigureCommand(cmd *cobra.Command) {
	cmd.Run = func(cmd *cobra.Command, args []string) {
		runStepCommand(cmd, g, g.Start)
	}
}

// FxModules returns the fx modules needed by this step
func (g *GPUStep) FxModules() []fx.Option {
	return []fx.Option{
		aferoModule.Module,
		logging.Module,
		metrics.Module,
		gpudata.Module,
		fx.Populate(&g.step),
	}
}

// Start runs the step
func (g *GPUStep) Start() error {
	_, err := g.step.Run(context.Background())
	return err
}

// NewGPUStep creates a new GPU data step command
func NewGPUStep() *GPUStep {
	return &GPUStep{}
}
