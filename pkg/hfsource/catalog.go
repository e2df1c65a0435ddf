package hfsource

import "strings"

// ModelNameToHFID maps benchmark leaderboard names to HuggingFace repo IDs.
// Only open-weight models are listed; closed-source models cannot be
// self-hosted and are skipped by the mapping check.
var ModelNameToHFID = map[string]string{
	"DeepSeek-V3.2-Reasoner": "deepseek-ai/DeepSeek-V3.2-Speciale",
	"GLM-4.7":                "zai-org/GLM-4.7",
	"Kimi-K2.5":              "moonshotai/Kimi-K2.5",
	"Kimi-K2-Thinking":       "moonshotai/Kimi-K2-Thinking",
	"MiniMax-M2.5":           "MiniMaxAI/MiniMax-M2.5",
	"MiniMax-M2.1":           "MiniMaxAI/MiniMax-M2.1",
	"Qwen3-Coder-480B":       "Qwen/Qwen3-Coder-480B-A35B-Instruct",
	"Nemotron-3-Nano":        "nvidia/NVIDIA-Nemotron-3-Nano-30B-A3B-FP8",
}

// closedSourcePrefixes marks leaderboard names of models that have no open
// weights to fetch.
var closedSourcePrefixes = []string{"claude-", "gpt-", "gemini-", "GPT-", "Gemini-"}

// IsClosedSource reports whether a leaderboard model name belongs to a
// closed-source model.
func IsClosedSource(modelName string) bool {
	for _, prefix := range closedSourcePrefixes {
		if strings.HasPrefix(modelName, prefix) {
			return true
		}
	}
	return false
}
