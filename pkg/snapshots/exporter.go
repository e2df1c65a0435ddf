package snapshots

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/logging"
)

// Index is snapshots/index.json: the list of exported snapshot dates and a
// pointer to the most recent one.
type Index struct {
	Snapshots   []string `json:"snapshots"`
	Latest      string   `json:"latest"`
	GeneratedAt string   `json:"generated_at"`
}

// Exporter writes snapshot directories and the index file.
type Exporter struct {
	fs     afero.Fs
	dir    string
	logger logging.Interface
	now    func() time.Time
}

// NewExporter builds an exporter rooted at the snapshots directory.
func NewExporter(fs afero.Fs, dir string, logger logging.Interface) *Exporter {
	return &Exporter{fs: fs, dir: dir, logger: logger, now: time.Now}
}

func (e *Exporter) writeJSON(path string, data interface{}) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "marshaling %s", path)
	}
	if err := afero.MkdirAll(e.fs, filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return afero.WriteFile(e.fs, path, append(raw, '\n'), 0o644)
}

// LoadIndex reads index.json. A missing or corrupt index returns nil: the
// caller falls back to a full regeneration.
func (e *Exporter) LoadIndex() *Index {
	raw, err := afero.ReadFile(e.fs, filepath.Join(e.dir, "index.json"))
	if err != nil {
		return nil
	}
	var index Index
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil
	}
	if index.Snapshots == nil || index.Latest == "" {
		return nil
	}
	return &index
}

// WriteSnapshot writes benchmarks.json and sota_scores.json for one date.
func (e *Exporter) WriteSnapshot(snapshot *Snapshot) error {
	dateStr := snapshot.SnapshotDate.Format(dateFormat)
	snapDir := filepath.Join(e.dir, dateStr)

	if err := e.writeJSON(filepath.Join(snapDir, "benchmarks.json"), snapshot.Benchmarks); err != nil {
		return err
	}
	if err := e.writeJSON(filepath.Join(snapDir, "sota_scores.json"), snapshot.SotaScores); err != nil {
		return err
	}

	e.logger.Infof("Wrote snapshot %s (%d entries)", dateStr, len(snapshot.Benchmarks))
	return nil
}

// WriteIndex writes index.json for the given snapshot dates.
func (e *Exporter) WriteIndex(snapshotDates []time.Time) error {
	sorted := make([]time.Time, len(snapshotDates))
	copy(sorted, snapshotDates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	index := Index{
		Snapshots:   make([]string, 0, len(sorted)),
		GeneratedAt: e.now().UTC().Format(time.RFC3339),
	}
	for _, date := range sorted {
		index.Snapshots = append(index.Snapshots, date.Format(dateFormat))
	}
	if len(index.Snapshots) > 0 {
		index.Latest = index.Snapshots[len(index.Snapshots)-1]
	}

	if err := e.writeJSON(filepath.Join(e.dir, "index.json"), index); err != nil {
		return err
	}
	e.logger.Infof("Wrote index.json: %d snapshots, latest=%s", len(index.Snapshots), index.Latest)
	return nil
}

// Run exports snapshots incrementally: only dates missing from a valid
// index are generated, unless force requests a full regeneration. It returns
// the number of new snapshots written.
func (e *Exporter) Run(ctx context.Context, repo *Repo, force bool) (int, error) {
	allDates, err := repo.DatesWithCommits(ctx)
	if err != nil {
		return 0, err
	}
	if len(allDates) == 0 {
		e.logger.Warn("No commit dates found in repo")
		return 0, nil
	}

	existing := map[string]struct{}{}
	if !force {
		if index := e.LoadIndex(); index != nil {
			missing := 0
			for _, dateStr := range index.Snapshots {
				ok, _ := afero.Exists(e.fs, filepath.Join(e.dir, dateStr, "benchmarks.json"))
				if !ok {
					missing++
				}
			}
			if missing > 0 {
				e.logger.Warnf("Missing snapshot dirs for %d dates, forcing full regen", missing)
			} else {
				for _, dateStr := range index.Snapshots {
					existing[dateStr] = struct{}{}
				}
			}
		}
	}

	var newDates []time.Time
	for _, date := range allDates {
		if _, ok := existing[date.Format(dateFormat)]; !ok {
			newDates = append(newDates, date)
		}
	}

	if len(newDates) == 0 && len(existing) > 0 {
		e.logger.Infof("All %d snapshots up to date, nothing to generate", len(existing))
		return 0, nil
	}
	e.logger.Infof("%d new snapshot(s) to generate (of %d total dates)", len(newDates), len(allDates))

	var generated []time.Time
	for _, date := range newDates {
		snapshot, err := repo.GenerateSnapshot(ctx, date)
		if err != nil {
			return len(generated), err
		}
		if snapshot == nil {
			continue
		}
		if err := e.WriteSnapshot(snapshot); err != nil {
			return len(generated), err
		}
		generated = append(generated, date)
	}

	allSnapshotDates := make([]time.Time, 0, len(existing)+len(generated))
	for dateStr := range existing {
		parsed, err := time.ParseInLocation(dateFormat, dateStr, time.UTC)
		if err != nil {
			continue
		}
		allSnapshotDates = append(allSnapshotDates, parsed)
	}
	allSnapshotDates = append(allSnapshotDates, generated...)

	if len(allSnapshotDates) > 0 {
		if err := e.WriteIndex(allSnapshotDates); err != nil {
			return len(generated), err
		}
	}

	e.logger.Infof("Generated %d new snapshot(s)", len(generated))
	return len(generated), nil
}
