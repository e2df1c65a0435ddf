// Package snapshot reconstructs dated leaderboard snapshots from the results
// repository history and exports them incrementally.
package snapshot

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/metrics"
	"github.com/sgl-project/modelcost/pkg/snapshots"
)

// Step is the snapshot step.
type Step struct {
	config   *Config
	exporter *snapshots.Exporter
	metrics  *metrics.Metrics
	logger   logging.Interface
}

// NewStep builds the snapshot step.
func NewStep(config *Config, fs afero.Fs, m *metrics.Metrics) (*Step, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &Step{
		config:   config,
		exporter: snapshots.NewExporter(fs, config.SnapshotsDir, config.Logger),
		metrics:  m,
		logger:   config.Logger,
	}, nil
}

// Name identifies the step in logs, metrics and retries.
func (s *Step) Name() string { return "snapshots" }

// Run generates any missing snapshots and refreshes the index.
func (s *Step) Run(ctx context.Context) ([]string, error) {
	s.logger.Info("=== Snapshot Pipeline ===")

	repo, err := snapshots.NewRepo(s.config.RepoPath, s.logger)
	if err != nil {
		return nil, err
	}

	count, err := s.exporter.Run(ctx, repo, s.config.Force)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSnapshotsGenerated(count)
	s.logger.Infof("Snapshot pipeline complete: %d new snapshots", count)

	var updates []string
	if count > 0 {
		updates = append(updates, fmt.Sprintf("New benchmark snapshots: %d", count))
	}
	return updates, nil
}
