package paramcount

import (
	"errors"
	"testing"
)

func TestKVCacheMLA(t *testing.T) {
	fields, err := ExtractKVCacheFields(deepseekV32Config())
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	if fields.AttentionType != AttentionMLA {
		t.Errorf("attention = %s, expected MLA", fields.AttentionType)
	}
	if fields.KVLoraRank != 512 || fields.QKRopeHeadDim != 64 {
		t.Errorf("latent dims = %d/%d", fields.KVLoraRank, fields.QKRopeHeadDim)
	}
	// 61 layers x (512 + 64) x 2 bytes.
	if got := fields.BytesPerTokenFP16(); got != 70272 {
		t.Errorf("bytes/token = %d, expected 70272", got)
	}
}

func TestKVCacheGQA(t *testing.T) {
	testCases := []struct {
		name     string
		config   Config
		expected int64
	}{
		// 2 x 92 x 8 x 128 x 2
		{"GLM-4.7", glm47Config(), 376832},
		// 2 x 62 x 8 x 128 x 2
		{"Qwen3-Coder", qwen3CoderConfig(), 253952},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fields, err := ExtractKVCacheFields(tc.config)
			if err != nil {
				t.Fatalf("ExtractKVCacheFields failed: %v", err)
			}
			if fields.AttentionType != AttentionGQA {
				t.Errorf("attention = %s, expected GQA", fields.AttentionType)
			}
			if got := fields.BytesPerTokenFP16(); got != tc.expected {
				t.Errorf("bytes/token = %d, expected %d", got, tc.expected)
			}
		})
	}
}

func TestKVCacheMLAIndependentOfHeadCount(t *testing.T) {
	base := deepseekV32Config()
	grown := deepseekV32Config()
	grown["num_attention_heads"] = 256
	grown["num_key_value_heads"] = 256

	baseFields, err := ExtractKVCacheFields(base)
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	grownFields, err := ExtractKVCacheFields(grown)
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	if baseFields.BytesPerTokenFP16() != grownFields.BytesPerTokenFP16() {
		t.Error("MLA cache size depends only on the latent dims, not head count")
	}
}

func TestKVCacheHeadDimFallback(t *testing.T) {
	config := glm47Config()
	delete(config, "head_dim")

	fields, err := ExtractKVCacheFields(config)
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	if fields.HeadDim != 5120/96 {
		t.Errorf("head dim = %d, expected hidden/heads = %d", fields.HeadDim, 5120/96)
	}
}

func TestKVCacheIntervalHybrid(t *testing.T) {
	fields, err := ExtractKVCacheFields(qwen3NextConfig())
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	if !fields.Hybrid {
		t.Error("interval topology should be flagged hybrid")
	}
	if fields.NumKVLayers != 12 {
		t.Errorf("kv layers = %d, expected 12 of 48", fields.NumKVLayers)
	}
	// Only the 12 attention layers cache KV: 2 x 12 x 2 x 256 x 2.
	if got := fields.BytesPerTokenFP16(); got != 24576 {
		t.Errorf("bytes/token = %d, expected 24576", got)
	}
}

func TestKVCachePatternHybrid(t *testing.T) {
	fields, err := ExtractKVCacheFields(nemotronPatternConfig())
	if err != nil {
		t.Fatalf("ExtractKVCacheFields failed: %v", err)
	}
	if !fields.Hybrid {
		t.Error("pattern topology should be flagged hybrid")
	}
	if fields.NumKVLayers != 2 {
		t.Errorf("kv layers = %d, expected the 2 '*' layers", fields.NumKVLayers)
	}
}

func TestKVCachePatternLengthMismatch(t *testing.T) {
	config := nemotronPatternConfig()
	config["hybrid_override_pattern"] = "M*"

	_, err := ExtractKVCacheFields(config)
	var patternErr *PatternLengthError
	if !errors.As(err, &patternErr) {
		t.Fatalf("expected PatternLengthError, got %v", err)
	}
}

func TestKVCacheMissingLatentFields(t *testing.T) {
	config := deepseekV32Config()
	delete(config, "kv_lora_rank")

	_, err := ExtractKVCacheFields(config)
	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldError, got %v", err)
	}
	if missing.Key != "kv_lora_rank" {
		t.Errorf("error names %q", missing.Key)
	}
}

func TestKVCacheUnknownArchitecture(t *testing.T) {
	_, err := ExtractKVCacheFields(Config{"model_type": "llama", "num_hidden_layers": 32})
	var unsupported *UnsupportedArchitectureError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedArchitectureError, got %v", err)
	}
}

func TestSupportedArchitecturesSorted(t *testing.T) {
	types := SupportedArchitectures()
	if len(types) == 0 {
		t.Fatal("registry is empty")
	}
	for i := 1; i < len(types); i++ {
		if types[i-1] >= types[i] {
			t.Errorf("not sorted at %d: %s >= %s", i, types[i-1], types[i])
		}
	}
	for _, required := range []string{"deepseek_v32", "glm4_moe", "qwen3_moe", "minimax_m2", "kimi_k2"} {
		found := false
		for _, got := range types {
			if got == required {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("registry missing %s", required)
		}
	}
}
