package paramcount

import "fmt"

// multimodalModelTypes are wrapper configs whose text backbone lives under
// "text_config" (e.g. Kimi-K2.5).
var multimodalModelTypes = map[string]struct{}{
	"kimi_k25": {},
}

// ResolveTextConfig unwraps multimodal configs to the text backbone the rest
// of the package expects. Non-wrapper configs are returned unchanged.
func ResolveTextConfig(raw Config) (Config, error) {
	modelType, _ := raw["model_type"].(string)
	if _, ok := multimodalModelTypes[modelType]; !ok {
		return raw, nil
	}

	nested, present := raw["text_config"]
	if !present || nested == nil {
		return nil, &MalformedWrapperError{ModelType: modelType, Found: "missing"}
	}
	switch text := nested.(type) {
	case Config:
		return text, nil
	case map[string]interface{}:
		return Config(text), nil
	default:
		return nil, &MalformedWrapperError{ModelType: modelType, Found: fmt.Sprintf("%T", nested)}
	}
}
