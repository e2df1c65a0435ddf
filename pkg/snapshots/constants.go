// Package snapshots reconstructs dated leaderboard snapshots from the git
// history of the OpenHands index results repository.
package snapshots

import "time"

// SchemaConsolidationDate is the first date where the index has stable
// methodology: all five categories present and every model evaluated across
// all of them. Commits before this date are not snapshotted.
var SchemaConsolidationDate = time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)

// dateFormat is the ISO date layout used for snapshot directories and git
// arguments.
const dateFormat = "2006-01-02"

// Benchmark maps a repository benchmark name to its exported name and
// display name.
type Benchmark struct {
	Name        string
	DisplayName string
}

// BenchmarkMap maps repository benchmark names to their exported identity.
// Scores for benchmarks outside this map are dropped.
var BenchmarkMap = map[string]Benchmark{
	"swe-bench":            {Name: "issue_resolution", DisplayName: "Issue Resolution"},
	"swe-bench-multimodal": {Name: "frontend", DisplayName: "Frontend"},
	"commit0":              {Name: "greenfield", DisplayName: "Greenfield"},
	"swt-bench":            {Name: "testing", DisplayName: "Testing"},
	"gaia":                 {Name: "information_gathering", DisplayName: "Information Gathering"},
}

const (
	BenchmarkGroup        = "openhands"
	BenchmarkGroupDisplay = "OpenHands Index"

	OverallName    = "overall"
	OverallDisplay = "Overall"
)

// displayNames is the reverse lookup from exported benchmark name to display
// name, including the synthetic overall category.
var displayNames = func() map[string]string {
	names := make(map[string]string, len(BenchmarkMap)+1)
	for _, bench := range BenchmarkMap {
		names[bench.Name] = bench.DisplayName
	}
	names[OverallName] = OverallDisplay
	return names
}()
