package paramcount

import (
	"errors"
	"math"
	"testing"
)

// Qwen3-Next-80B-A3B: gated-deltanet backbone with a full-attention layer
// every 4th layer, MoE FFN in every layer.
func qwen3NextConfig() Config {
	return Config{
		"model_type":                      "qwen3_next",
		"hidden_size":                     2048,
		"intermediate_size":               5120,
		"num_hidden_layers":               48,
		"num_attention_heads":             16,
		"num_key_value_heads":             2,
		"head_dim":                        256,
		"vocab_size":                      151936,
		"full_attention_interval":         4,
		"linear_num_key_heads":            16,
		"linear_key_head_dim":             128,
		"linear_num_value_heads":          32,
		"linear_value_head_dim":           128,
		"linear_conv_kernel_dim":          4,
		"num_experts":                     512,
		"num_experts_per_tok":             10,
		"moe_intermediate_size":           512,
		"shared_expert_intermediate_size": 512,
		"tie_word_embeddings":             false,
		"torch_dtype":                     "bfloat16",
	}
}

// Synthetic Nemotron-H-style config with an explicit 9-layer pattern:
// 3 state-space, 2 full attention, 2 dense MLP, 2 MoE.
func nemotronPatternConfig() Config {
	return Config{
		"model_type":                          "nemotron_h",
		"hidden_size":                         4096,
		"intermediate_size":                   8192,
		"num_hidden_layers":                   9,
		"hybrid_override_pattern":             "M*-EM*-EM",
		"num_attention_heads":                 32,
		"num_key_value_heads":                 8,
		"head_dim":                            128,
		"vocab_size":                          131072,
		"linear_num_key_heads":                8,
		"linear_key_head_dim":                 64,
		"linear_num_value_heads":              16,
		"linear_value_head_dim":               64,
		"linear_conv_kernel_dim":              4,
		"n_routed_experts":                    64,
		"num_experts_per_tok":                 4,
		"moe_intermediate_size":               1024,
		"moe_shared_expert_intermediate_size": 1024,
		"tie_word_embeddings":                 false,
		"torch_dtype":                         "bfloat16",
	}
}

func TestIntervalHybridLayerSplit(t *testing.T) {
	result, err := CountParams(qwen3NextConfig())
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if result.NumFullAttentionLayers != 12 {
		t.Errorf("full-attention layers = %d, expected 48/4 = 12", result.NumFullAttentionLayers)
	}
	if result.NumStateSpaceLayers != 36 {
		t.Errorf("state-space layers = %d, expected 36", result.NumStateSpaceLayers)
	}
	if result.NumMoELayers != 48 {
		t.Errorf("moe layers = %d, expected every layer MoE", result.NumMoELayers)
	}
	if result.NumDenseLayers != 0 {
		t.Errorf("dense layers = %d, expected 0", result.NumDenseLayers)
	}
}

func TestIntervalHybridTotal(t *testing.T) {
	result, err := CountParams(qwen3NextConfig())
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	totalB := float64(result.TotalParams) / 1e9
	if math.Abs(totalB-80)/80 >= 0.05 {
		t.Errorf("total=%.1fB, expected ~80B", totalB)
	}
	if result.ActiveParams >= result.TotalParams {
		t.Errorf("active=%d should be far below total=%d", result.ActiveParams, result.TotalParams)
	}
	// Sparse activation: ~3B of 80B.
	activeB := float64(result.ActiveParams) / 1e9
	if activeB >= 5 {
		t.Errorf("active=%.1fB, expected sparse activation under 5B", activeB)
	}
}

func TestIntervalHybridFloorDivision(t *testing.T) {
	config := qwen3NextConfig()
	config["num_hidden_layers"] = 50

	result, err := CountParams(config)
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if result.NumFullAttentionLayers != 12 {
		t.Errorf("full-attention layers = %d, expected floor(50/4) = 12", result.NumFullAttentionLayers)
	}
	if result.NumStateSpaceLayers != 38 {
		t.Errorf("state-space layers = %d, expected 38", result.NumStateSpaceLayers)
	}
}

func TestIntervalOfOneIsUniform(t *testing.T) {
	config := qwen3NextConfig()
	config["full_attention_interval"] = 1

	result, err := CountParams(config)
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if result.NumStateSpaceLayers != 0 || result.NumFullAttentionLayers != 0 {
		t.Errorf("interval=1 should take the uniform path, got ss=%d attn=%d",
			result.NumStateSpaceLayers, result.NumFullAttentionLayers)
	}
}

func TestPatternHybridLayerSplit(t *testing.T) {
	result, err := CountParams(nemotronPatternConfig())
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if result.NumStateSpaceLayers != 3 {
		t.Errorf("state-space layers = %d, expected 3", result.NumStateSpaceLayers)
	}
	if result.NumFullAttentionLayers != 2 {
		t.Errorf("full-attention layers = %d, expected 2", result.NumFullAttentionLayers)
	}
	if result.NumDenseLayers != 2 {
		t.Errorf("dense layers = %d, expected 2", result.NumDenseLayers)
	}
	if result.NumMoELayers != 2 {
		t.Errorf("moe layers = %d, expected 2", result.NumMoELayers)
	}
}

func TestPatternHybridRoutedExperts(t *testing.T) {
	result, err := CountParams(nemotronPatternConfig())
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	// 2 MoE layers x 64 experts x ungated 2 x 4096 x 1024.
	expected := int64(2) * 64 * 2 * 4096 * 1024
	if result.RoutedExpertParams != expected {
		t.Errorf("routed = %d, expected %d", result.RoutedExpertParams, expected)
	}
	if result.ActiveParams >= result.TotalParams {
		t.Errorf("active=%d should be below total=%d", result.ActiveParams, result.TotalParams)
	}
}

func TestPatternLengthMismatch(t *testing.T) {
	config := nemotronPatternConfig()
	config["hybrid_override_pattern"] = "M*-E"

	_, err := CountParams(config)
	var patternErr *PatternLengthError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternLengthError, got %v", err)
	}
	if patternErr.PatternLen != 4 || patternErr.NumLayers != 9 {
		t.Errorf("error carries len=%d layers=%d", patternErr.PatternLen, patternErr.NumLayers)
	}
}

func TestPatternUnknownCharCountsAsMoE(t *testing.T) {
	withE := nemotronPatternConfig()
	withX := nemotronPatternConfig()
	withX["hybrid_override_pattern"] = "M*-XM*-XM"

	expected, err := CountParams(withE)
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	got, err := CountParams(withX)
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if got != expected {
		t.Errorf("unknown pattern chars should count as MoE: %+v vs %+v", got, expected)
	}
}

func TestPatternOnlyRequiresUsedFields(t *testing.T) {
	// A pattern with no MoE layers must not demand MoE fields.
	config := nemotronPatternConfig()
	config["hybrid_override_pattern"] = "M*-M*-M*-"
	delete(config, "n_routed_experts")
	delete(config, "num_experts_per_tok")
	delete(config, "moe_intermediate_size")
	delete(config, "moe_shared_expert_intermediate_size")

	result, err := CountParams(config)
	if err != nil {
		t.Fatalf("CountParams failed: %v", err)
	}
	if result.NumMoELayers != 0 {
		t.Errorf("moe layers = %d, expected 0", result.NumMoELayers)
	}
	if result.RoutedExpertParams != 0 {
		t.Errorf("routed = %d, expected 0", result.RoutedExpertParams)
	}
}
