package paramcount

import (
	"fmt"
	"sort"
	"strings"
)

// PrecisionInfo describes how a checkpoint stores its weights.
type PrecisionInfo struct {
	BytesPerParam float64
	// Label is the display form, e.g. "FP8", "BF16", "INT4".
	Label string
	// IsMixed is true when some parameter groups are excluded from
	// quantization (the quant config carries a non-empty ignore list).
	IsMixed bool
}

// dtypeTable maps unquantized torch dtypes to storage cost and label.
var dtypeTable = map[string]PrecisionInfo{
	"bfloat16": {BytesPerParam: 2.0, Label: "BF16"},
	"float16":  {BytesPerParam: 2.0, Label: "FP16"},
	"float32":  {BytesPerParam: 4.0, Label: "FP32"},
}

// DetectPrecision classifies a config's storage precision. It is independent
// of parameter counting: a model may have valid counts but unknown precision,
// or vice versa.
func DetectPrecision(raw Config) (PrecisionInfo, error) {
	config, err := ResolveTextConfig(raw)
	if err != nil {
		return PrecisionInfo{}, err
	}

	quantRaw, ok := config["quantization_config"]
	if !ok || quantRaw == nil {
		// No quantization block — classify by declared dtype ("dtype" is a
		// newer alias of "torch_dtype").
		dtype := stringField(config, "torch_dtype")
		if dtype == "" {
			dtype = stringField(config, "dtype")
		}
		info, ok := dtypeTable[dtype]
		if !ok {
			return PrecisionInfo{}, fmt.Errorf("unknown torch_dtype='%s'", dtype)
		}
		return info, nil
	}

	quant, err := asConfig(quantRaw)
	if err != nil {
		return PrecisionInfo{}, fmt.Errorf("quantization_config: %w", err)
	}

	method := stringField(quant, "quant_method")
	switch method {
	case "fp8":
		return PrecisionInfo{BytesPerParam: 1.0, Label: "FP8"}, nil
	case "compressed-tensors":
		return detectCompressedTensors(quant)
	}
	return PrecisionInfo{}, fmt.Errorf("unknown quant_method='%s'", method)
}

// detectCompressedTensors scans the config_groups for the first weight group
// exposing a bit width and type. Scanned in sorted key order so detection is
// deterministic.
func detectCompressedTensors(quant Config) (PrecisionInfo, error) {
	groupsRaw, _ := quant["config_groups"]
	groups, err := asConfig(groupsRaw)
	if err != nil {
		return PrecisionInfo{}, fmt.Errorf("could not parse compressed-tensors config_groups")
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		group, err := asConfig(groups[name])
		if err != nil {
			continue
		}
		weights, err := asConfig(group["weights"])
		if err != nil {
			continue
		}
		numBits, err := optionalInt(weights, "num_bits", 0)
		if err != nil || numBits == 0 {
			continue
		}
		weightType := stringField(weights, "type")
		if weightType == "" {
			continue
		}

		isMixed := false
		if ignore, ok := quant["ignore"].([]interface{}); ok && len(ignore) > 0 {
			isMixed = true
		}
		return PrecisionInfo{
			BytesPerParam: float64(numBits) / 8,
			Label:         fmt.Sprintf("%s%d", strings.ToUpper(weightType), numBits),
			IsMixed:       isMixed,
		}, nil
	}

	return PrecisionInfo{}, fmt.Errorf("could not parse compressed-tensors config_groups")
}

// asConfig coerces a nested JSON object into a Config.
func asConfig(val interface{}) (Config, error) {
	switch m := val.(type) {
	case Config:
		return m, nil
	case map[string]interface{}:
		return Config(m), nil
	default:
		return nil, fmt.Errorf("value %v (%T) is not a mapping", val, val)
	}
}
