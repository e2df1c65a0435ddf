package snapshots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveModelName(t *testing.T) {
	testCases := []struct {
		name     string
		model    string
		date     time.Time
		expected string
	}{
		{"no rename needed", "GLM-4.7", day(2026, time.February, 15), "GLM-4.7"},
		{"before effective date", "glm-4.7", day(2026, time.February, 9), "glm-4.7"},
		{"on effective date", "glm-4.7", day(2026, time.February, 10), "GLM-4.7"},
		{"after effective date", "glm-4.7", day(2026, time.February, 15), "GLM-4.7"},
		{"variant collapses", "gpt-5.2-high-reasoning", day(2026, time.February, 10), "GPT-5.2-Codex"},
		{"unknown model unchanged", "some-unknown-model", day(2026, time.December, 31), "some-unknown-model"},
		{"early name at old date", "nemotron-3-nano-30b", day(2025, time.December, 22), "nemotron-3-nano-30b"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ResolveModelName(tc.model, tc.date))
		})
	}
}

func TestResolveModelNameChained(t *testing.T) {
	// jade-spark-2862 was a stealth codename: revealed as Minimax-2.5 on
	// 02-11, corrected to MiniMax-M2.5 on 02-12.
	assert.Equal(t, "jade-spark-2862", ResolveModelName("jade-spark-2862", day(2026, time.February, 10)))
	assert.Equal(t, "Minimax-2.5", ResolveModelName("jade-spark-2862", day(2026, time.February, 11)))
	assert.Equal(t, "MiniMax-M2.5", ResolveModelName("jade-spark-2862", day(2026, time.February, 12)))
}
