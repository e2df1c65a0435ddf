package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"

	"github.com/sgl-project/modelcost/internal/pipeline/snapshot"
	aferoModule "github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
)

// SnapshotStep implements the StepModule interface for benchmark snapshots
type SnapshotStep struct {
	step *snapshot.Step
}

// Name returns the name of the step
func (s *SnapshotStep) Name() string {
	return "snapshots"
}

// ShortDescription returns a short description of the step
func (s *SnapshotStep) ShortDescription() string {
	return "Generate benchmark snapshots from git history"
}

// LongDescription returns a detailed description of the step
func (s *SnapshotStep) LongDescription() string {
	return "Reconstructs dated leaderboard snapshots from the results repository history and writes benchmarks.json, sota_scores.json and index.json incrementally"
}

// ConfigureCommand configures the step command
func (s *SnapshotStep) ConfigureCommand(cmd *cobra.Command) {
	cmd.Flags().Bool("force", false, "Force full snapshot regeneration (ignore existing index)")
	_ = viper.BindPFlag("force", cmd.Flags().Lookup("force"))

	cmd.Run = func(cmd *cobra.Command, args []string) {
		runStepCommand(cmd, s, s.Start)
	}
}

// FxModules returns the fx modules needed by this step
func (s *SnapshotStep) FxModules() []fx.Option {
	return []fx.Option{
		aferoModule.Module,
		logging.Module,
		metrics.Module,
		snapshot.Module,
		fx.Populate(&s.step),
	}
}

// Start runs the step
func (s *SnapshotStep) Start() error {
	_, err := s.step.Run(context.Background())
	return err
}

// NewSnapshotStep creates a new snapshot step command
func NewSnapshotStep() *SnapshotStep {
	return &SnapshotStep{}
}
