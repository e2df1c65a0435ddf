package paramcount

import (
	"strings"
	"testing"
)

func TestDetectPrecisionFP8(t *testing.T) {
	info, err := DetectPrecision(deepseekV32Config())
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "FP8" || info.BytesPerParam != 1.0 {
		t.Errorf("got %+v, expected FP8 at 1 byte", info)
	}
	if info.IsMixed {
		t.Error("fp8 quant_method is not mixed")
	}
}

func TestDetectPrecisionBF16(t *testing.T) {
	info, err := DetectPrecision(glm47Config())
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "BF16" || info.BytesPerParam != 2.0 {
		t.Errorf("got %+v, expected BF16 at 2 bytes", info)
	}
}

func TestDetectPrecisionDtypeTable(t *testing.T) {
	testCases := []struct {
		dtype string
		label string
		bytes float64
	}{
		{"bfloat16", "BF16", 2.0},
		{"float16", "FP16", 2.0},
		{"float32", "FP32", 4.0},
	}
	for _, tc := range testCases {
		info, err := DetectPrecision(Config{"model_type": "qwen3_moe", "torch_dtype": tc.dtype})
		if err != nil {
			t.Fatalf("%s: DetectPrecision failed: %v", tc.dtype, err)
		}
		if info.Label != tc.label || info.BytesPerParam != tc.bytes {
			t.Errorf("%s: got %+v", tc.dtype, info)
		}
	}
}

func TestDetectPrecisionDtypeAlias(t *testing.T) {
	info, err := DetectPrecision(Config{"model_type": "qwen3_moe", "dtype": "bfloat16"})
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "BF16" {
		t.Errorf("got %+v, expected the dtype alias to work", info)
	}
}

func TestDetectPrecisionInt4Mixed(t *testing.T) {
	info, err := DetectPrecision(kimiK2ThinkingConfig())
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "INT4" {
		t.Errorf("label = %s, expected INT4", info.Label)
	}
	if info.BytesPerParam != 0.5 {
		t.Errorf("bytes/param = %v, expected 0.5", info.BytesPerParam)
	}
	if !info.IsMixed {
		t.Error("non-empty ignore list should flag mixed precision")
	}
}

func TestDetectPrecisionCompressedTensorsNotMixed(t *testing.T) {
	config := kimiK2ThinkingConfig()
	quant := config["quantization_config"].(map[string]interface{})
	quant["ignore"] = []interface{}{}

	info, err := DetectPrecision(config)
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.IsMixed {
		t.Error("empty ignore list is uniform quantization")
	}
}

func TestDetectPrecisionGroupScanDeterministic(t *testing.T) {
	config := Config{
		"model_type": "qwen3_moe",
		"quantization_config": map[string]interface{}{
			"quant_method": "compressed-tensors",
			"config_groups": map[string]interface{}{
				// group_0 carries no weight spec; the scan must move on in
				// sorted order and land on group_1.
				"group_0": map[string]interface{}{
					"weights": map[string]interface{}{},
				},
				"group_1": map[string]interface{}{
					"weights": map[string]interface{}{"num_bits": 8, "type": "float"},
				},
			},
		},
	}
	info, err := DetectPrecision(config)
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "FLOAT8" || info.BytesPerParam != 1.0 {
		t.Errorf("got %+v, expected FLOAT8 at 1 byte", info)
	}
}

func TestDetectPrecisionUnknownDtype(t *testing.T) {
	_, err := DetectPrecision(Config{"model_type": "qwen3_moe", "torch_dtype": "float8"})
	if err == nil || !strings.Contains(err.Error(), "float8") {
		t.Fatalf("expected error naming the unknown dtype, got %v", err)
	}
}

func TestDetectPrecisionMissingDtype(t *testing.T) {
	_, err := DetectPrecision(Config{"model_type": "qwen3_moe"})
	if err == nil {
		t.Fatal("expected error when no dtype is declared")
	}
}

func TestDetectPrecisionUnknownQuantMethod(t *testing.T) {
	config := Config{
		"model_type": "qwen3_moe",
		"torch_dtype": "bfloat16",
		"quantization_config": map[string]interface{}{
			"quant_method": "gptq",
		},
	}
	_, err := DetectPrecision(config)
	if err == nil || !strings.Contains(err.Error(), "gptq") {
		t.Fatalf("expected error naming the unknown quant_method, got %v", err)
	}
}

func TestDetectPrecisionUnparsableGroups(t *testing.T) {
	config := Config{
		"model_type": "qwen3_moe",
		"quantization_config": map[string]interface{}{
			"quant_method":  "compressed-tensors",
			"config_groups": map[string]interface{}{},
		},
	}
	_, err := DetectPrecision(config)
	if err == nil {
		t.Fatal("expected error for empty config_groups")
	}
}

func TestDetectPrecisionThroughTextConfig(t *testing.T) {
	info, err := DetectPrecision(kimiK25Config())
	if err != nil {
		t.Fatalf("DetectPrecision failed: %v", err)
	}
	if info.Label != "INT4" || !info.IsMixed {
		t.Errorf("got %+v, expected the wrapped text_config quant block", info)
	}
}
