package snapshots

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgl-project/modelcost/pkg/logging"
)

func makeModel(name string, scores ...ScoreEntry) ModelData {
	return ModelData{ModelName: name, Scores: scores}
}

func score(benchmark string, value, cost float64) ScoreEntry {
	return ScoreEntry{Benchmark: benchmark, Score: value, CostPerInstance: &cost}
}

func sampleModels() []ModelData {
	return []ModelData{
		makeModel("Kimi-K2.5",
			score("swe-bench", 76.6, 1.82),
			score("commit0", 37.5, 4.65),
			score("gaia", 69.1, 0.55),
			score("swt-bench", 78.5, 1.38),
			score("swe-bench-multimodal", 41.2, 2.54),
		),
		makeModel("GPT-5.2",
			score("swe-bench", 72.0, 1.50),
			score("commit0", 30.0, 3.00),
		),
	}
}

func testDate() time.Time { return day(2026, time.February, 15) }

func TestBuildSnapshotAllCategoriesPlusOverall(t *testing.T) {
	snapshot := BuildSnapshot(logging.Discard(), testDate(), sampleModels())
	require.NotNil(t, snapshot)

	benchNames := map[string]struct{}{}
	for _, entry := range snapshot.Benchmarks {
		benchNames[entry.BenchmarkName] = struct{}{}
	}
	for _, expected := range []string{
		"overall", "issue_resolution", "frontend", "greenfield", "testing", "information_gathering",
	} {
		assert.Contains(t, benchNames, expected)
	}

	// Overall rows come first.
	assert.Equal(t, "overall", snapshot.Benchmarks[0].BenchmarkName)
	assert.Equal(t, "overall", snapshot.SotaScores[0].BenchmarkName)
}

func TestBuildSnapshotRanks(t *testing.T) {
	snapshot := BuildSnapshot(logging.Discard(), testDate(), sampleModels())

	var ir []BenchmarkEntry
	for _, entry := range snapshot.Benchmarks {
		if entry.BenchmarkName == "issue_resolution" {
			ir = append(ir, entry)
		}
	}
	require.Len(t, ir, 2)
	cost := 1.82
	want := BenchmarkEntry{
		ModelName:             "Kimi-K2.5",
		BenchmarkName:         "issue_resolution",
		BenchmarkDisplayName:  "Issue Resolution",
		Score:                 76.6,
		Rank:                  1,
		CostPerTask:           &cost,
		BenchmarkGroup:        "openhands",
		BenchmarkGroupDisplay: "OpenHands Index",
	}
	if diff := cmp.Diff(want, ir[0]); diff != "" {
		t.Errorf("top issue_resolution entry mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "GPT-5.2", ir[1].ModelName)
	assert.Equal(t, 2, ir[1].Rank)
}

func TestBuildSnapshotSota(t *testing.T) {
	snapshot := BuildSnapshot(logging.Discard(), testDate(), sampleModels())

	sota := map[string]SotaEntry{}
	for _, entry := range snapshot.SotaScores {
		sota[entry.BenchmarkName] = entry
	}
	assert.Equal(t, "Kimi-K2.5", sota["issue_resolution"].SotaModelName)
	assert.Equal(t, 76.6, sota["issue_resolution"].SotaScore)
	assert.Equal(t, "Kimi-K2.5", sota["greenfield"].SotaModelName)
	assert.Equal(t, 37.5, sota["greenfield"].SotaScore)
	assert.Equal(t, "Issue Resolution", sota["issue_resolution"].BenchmarkDisplayName)
}

func TestBuildSnapshotOverallRequiresAllCategories(t *testing.T) {
	snapshot := BuildSnapshot(logging.Discard(), testDate(), sampleModels())

	overall := map[string]BenchmarkEntry{}
	for _, entry := range snapshot.Benchmarks {
		if entry.BenchmarkName == "overall" {
			overall[entry.ModelName] = entry
		}
	}

	// mean(76.6, 37.5, 69.1, 78.5, 41.2) = 60.58, rounded to 60.6.
	kimi, ok := overall["Kimi-K2.5"]
	require.True(t, ok)
	assert.Equal(t, 60.6, kimi.Score)
	require.NotNil(t, kimi.CostPerTask)
	assert.Equal(t, 2.19, *kimi.CostPerTask)

	// GPT-5.2 scored 2 of 5 categories, so it has no overall row.
	_, ok = overall["GPT-5.2"]
	assert.False(t, ok)
}

func TestBuildSnapshotDedupesByHighestScore(t *testing.T) {
	// Two result directories that resolve to the same model after renames.
	models := []ModelData{
		makeModel("minimax-m2", score("swe-bench", 60.0, 1.0)),
		makeModel("minimax-m2.1", score("swe-bench", 65.0, 2.0)),
	}
	snapshot := BuildSnapshot(logging.Discard(), testDate(), models)

	var ir []BenchmarkEntry
	for _, entry := range snapshot.Benchmarks {
		if entry.BenchmarkName == "issue_resolution" {
			ir = append(ir, entry)
		}
	}
	require.Len(t, ir, 1)
	assert.Equal(t, "MiniMax-M2.1", ir[0].ModelName)
	assert.Equal(t, 65.0, ir[0].Score)
}

func TestBuildSnapshotIgnoresUnknownBenchmarks(t *testing.T) {
	models := []ModelData{
		makeModel("test-model", score("unknown-bench", 50.0, 1.0)),
	}
	snapshot := BuildSnapshot(logging.Discard(), testDate(), models)
	assert.Empty(t, snapshot.Benchmarks)
	assert.Empty(t, snapshot.SotaScores)
}

func TestBuildSnapshotGroupFields(t *testing.T) {
	snapshot := BuildSnapshot(logging.Discard(), testDate(), sampleModels())
	for _, entry := range snapshot.Benchmarks {
		assert.Equal(t, "openhands", entry.BenchmarkGroup)
		assert.Equal(t, "OpenHands Index", entry.BenchmarkGroupDisplay)
	}
}
