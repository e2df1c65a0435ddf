package snapshots

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/sgl-project/modelcost/pkg/logging"
)

// BenchmarkEntry is one ranked row of benchmarks.json.
type BenchmarkEntry struct {
	ModelName             string   `json:"model_name"`
	BenchmarkName         string   `json:"benchmark_name"`
	BenchmarkDisplayName  string   `json:"benchmark_display_name"`
	Score                 float64  `json:"score"`
	Rank                  int      `json:"rank"`
	CostPerTask           *float64 `json:"cost_per_task"`
	BenchmarkGroup        string   `json:"benchmark_group"`
	BenchmarkGroupDisplay string   `json:"benchmark_group_display"`
}

// SotaEntry is one row of sota_scores.json.
type SotaEntry struct {
	BenchmarkName        string  `json:"benchmark_name"`
	BenchmarkDisplayName string  `json:"benchmark_display_name"`
	SotaModelName        string  `json:"sota_model_name"`
	SotaScore            float64 `json:"sota_score"`
}

// Snapshot is the complete leaderboard state for one date.
type Snapshot struct {
	SnapshotDate time.Time
	Benchmarks   []BenchmarkEntry
	SotaScores   []SotaEntry
}

type scoredModel struct {
	model string
	score float64
	cost  *float64
}

// GenerateSnapshot builds the snapshot for one date from the repository
// history. It returns nil when the date has no commit or no model data.
func (r *Repo) GenerateSnapshot(ctx context.Context, snapshotDate time.Time) (*Snapshot, error) {
	commit, err := r.LastCommitOfDay(ctx, snapshotDate)
	if err != nil {
		return nil, err
	}
	if commit == "" {
		r.logger.Warnf("No commit found for %s", snapshotDate.Format(dateFormat))
		return nil, nil
	}

	models, err := r.ReadAllModels(ctx, commit)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		r.logger.Warnf("No models found at %s (commit %s)", snapshotDate.Format(dateFormat), shortCommit(commit))
		return nil, nil
	}

	return BuildSnapshot(r.logger, snapshotDate, models), nil
}

// BuildSnapshot computes ranks, the overall category, and SOTA entries from
// raw model data. Aliases are resolved as of the snapshot date; when several
// result directories resolve to the same model in a category, the highest
// score wins.
func BuildSnapshot(logger logging.Interface, snapshotDate time.Time, models []ModelData) *Snapshot {
	categoryScores := map[string][]scoredModel{}

	for _, model := range models {
		resolved := ResolveModelName(model.ModelName, snapshotDate)
		for _, entry := range model.Scores {
			bench, ok := BenchmarkMap[entry.Benchmark]
			if !ok {
				continue
			}
			categoryScores[bench.Name] = append(categoryScores[bench.Name], scoredModel{
				model: resolved,
				score: entry.Score,
				cost:  entry.CostPerInstance,
			})
		}
	}

	for benchName, entries := range categoryScores {
		categoryScores[benchName] = dedupeHighestScore(entries)
	}

	// Overall only includes models scored in every category, so the mean is
	// always comparable across the same benchmark set.
	numCategories := len(categoryScores)
	modelScores := map[string][]float64{}
	modelCosts := map[string][]float64{}
	for _, entries := range categoryScores {
		for _, entry := range entries {
			modelScores[entry.model] = append(modelScores[entry.model], entry.score)
			if entry.cost != nil {
				modelCosts[entry.model] = append(modelCosts[entry.model], *entry.cost)
			}
		}
	}

	var overall []scoredModel
	for model, scores := range modelScores {
		if len(scores) < numCategories {
			logger.Debugf("Excluding %s from overall: %d/%d categories", model, len(scores), numCategories)
			continue
		}
		entry := scoredModel{model: model, score: roundTo(mean(scores), 1)}
		if costs := modelCosts[model]; len(costs) > 0 {
			avgCost := roundTo(mean(costs), 2)
			entry.cost = &avgCost
		}
		overall = append(overall, entry)
	}
	categoryScores[OverallName] = overall

	// Overall first, then the categories alphabetically.
	order := []string{OverallName}
	for benchName := range categoryScores {
		if benchName != OverallName {
			order = append(order, benchName)
		}
	}
	sort.Strings(order[1:])

	snapshot := &Snapshot{SnapshotDate: snapshotDate}
	for _, benchName := range order {
		entries := categoryScores[benchName]
		if len(entries) == 0 {
			continue
		}
		display := displayNames[benchName]

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].score != entries[j].score {
				return entries[i].score > entries[j].score
			}
			return entries[i].model < entries[j].model
		})

		snapshot.SotaScores = append(snapshot.SotaScores, SotaEntry{
			BenchmarkName:        benchName,
			BenchmarkDisplayName: display,
			SotaModelName:        entries[0].model,
			SotaScore:            entries[0].score,
		})

		for i, entry := range entries {
			snapshot.Benchmarks = append(snapshot.Benchmarks, BenchmarkEntry{
				ModelName:             entry.model,
				BenchmarkName:         benchName,
				BenchmarkDisplayName:  display,
				Score:                 entry.score,
				Rank:                  i + 1,
				CostPerTask:           entry.cost,
				BenchmarkGroup:        BenchmarkGroup,
				BenchmarkGroupDisplay: BenchmarkGroupDisplay,
			})
		}
	}

	logger.Infof("Generated snapshot for %s: %d entries, %d SOTA",
		snapshotDate.Format(dateFormat), len(snapshot.Benchmarks), len(snapshot.SotaScores))
	return snapshot
}

func dedupeHighestScore(entries []scoredModel) []scoredModel {
	best := map[string]scoredModel{}
	order := []string{}
	for _, entry := range entries {
		current, ok := best[entry.model]
		if !ok {
			order = append(order, entry.model)
		}
		if !ok || entry.score > current.score {
			best[entry.model] = entry
		}
	}
	deduped := make([]scoredModel, 0, len(order))
	for _, model := range order {
		deduped = append(deduped, best[model])
	}
	return deduped
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
