package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/internal/pipeline/enrichment"
	"github.com/sgl-project/modelcost/internal/pipeline/gpudata"
	"github.com/sgl-project/modelcost/internal/pipeline/runner"
	"github.com/sgl-project/modelcost/internal/pipeline/snapshot"
	aferoModule "github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/notify"
)

// RunAllStep implements the StepModule interface for the full pipeline run
type RunAllStep struct {
	runner *runner.Runner
}

// Name returns the name of the step
func (r *RunAllStep) Name() string {
	return "run"
}

// ShortDescription returns a short description of the step
func (r *RunAllStep) ShortDescription() string {
	return "Run the full data pipeline"
}

// LongDescription returns a detailed description of the step
func (r *RunAllStep) LongDescription() string {
	return "Runs every pipeline step in order (GPU data, snapshots, model enrichment, metadata export) with retries and email alerts"
}

// ConfigureCommand configures the step command
func (r *RunAllStep) ConfigureCommand(cmd *cobra.Command) {
	cmd.Flags().Bool("force", false, "Force full snapshot regeneration (ignore existing index)")
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))

	cmd.Run = func(cmd *cobra.Command, args []string) {
		runStepCommand(cmd, r, r.Start)
	}
}

// FxModules returns the fx modules needed by this step
func (r *RunAllStep) FxModules() []fx.Option {
	return []fx.Option{
		aferoModule.Module,
		logging.Module,
		metrics.Module,
		notify.Module,
		gpudata.Module,
		snapshot.Module,
		enrichment.Module,
		runner.Module,
		fx.Populate(&r.runner),
	}
}

// Start runs the full pipeline
func (r *RunAllStep) Start() error {
	return r.runner.Run(context.Background())
}

// NewRunAllStep creates the full pipeline run command
func NewRunAllStep() *RunAllStep {
	return &RunAllStep{}
}
