package snapshots

import "time"

// rename records that old submissions under oldName count as newName from
// effectiveDate onward. The table is derived from rename commits in the
// results repository history.
type rename struct {
	oldName       string
	newName       string
	effectiveDate time.Time
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var renames = []rename{
	// 2026-02-10: bulk rename to official marketing names.
	{"glm-4.7", "GLM-4.7", day(2026, time.February, 10)},
	{"gpt-5", "GPT-5.2", day(2026, time.February, 10)},
	{"gpt-5.2", "GPT-5.2", day(2026, time.February, 10)},
	{"gpt-5.2-codex", "GPT-5.2-Codex", day(2026, time.February, 10)},
	{"gpt-5.2-high-reasoning", "GPT-5.2-Codex", day(2026, time.February, 10)},
	{"kimi-k2-thinking", "Kimi-K2-Thinking", day(2026, time.February, 10)},
	{"kimi-k2.5", "Kimi-K2.5", day(2026, time.February, 10)},
	{"minimax-m2", "MiniMax-M2.1", day(2026, time.February, 10)},
	{"minimax-m2.1", "MiniMax-M2.1", day(2026, time.February, 10)},
	{"nemotron-3-nano", "Nemotron-3-Nano", day(2026, time.February, 10)},
	{"nemotron-3-nano-30b", "Nemotron-3-Nano", day(2026, time.February, 10)},
	{"deepseek-v3.2-reasoner", "DeepSeek-V3.2-Reasoner", day(2026, time.February, 10)},
	{"gemini-3-flash", "Gemini-3-Flash", day(2026, time.February, 10)},
	{"gemini-3-pro", "Gemini-3-Pro", day(2026, time.February, 10)},
	{"gemini-3-pro-preview", "Gemini-3-Pro", day(2026, time.February, 10)},
	{"qwen-3-coder", "Qwen3-Coder-480B", day(2026, time.February, 10)},
	// 2026-02-11: stealth codename revealed.
	{"jade-spark-2862", "Minimax-2.5", day(2026, time.February, 11)},
	// 2026-02-12: corrected to the official name.
	{"Minimax-2.5", "MiniMax-M2.5", day(2026, time.February, 12)},
}

// ResolveModelName resolves a model name to its canonical form at the given
// snapshot date, chaining renames until no more apply. A rename cycle stops
// at the first repeated name.
func ResolveModelName(name string, snapshotDate time.Time) string {
	seen := map[string]struct{}{name: {}}
	for changed := true; changed; {
		changed = false
		for _, r := range renames {
			if name != r.oldName || snapshotDate.Before(r.effectiveDate) {
				continue
			}
			name = r.newName
			if _, ok := seen[name]; ok {
				return name
			}
			seen[name] = struct{}{}
			changed = true
			break
		}
	}
	return name
}
