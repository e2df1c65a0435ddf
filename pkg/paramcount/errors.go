package paramcount

import "fmt"

// UnsupportedArchitectureError is returned when a model_type has no registry
// entry. Callers processing a batch of models are expected to catch this,
// skip the model, and continue.
type UnsupportedArchitectureError struct {
	ModelType string
}

func (e *UnsupportedArchitectureError) Error() string {
	return fmt.Sprintf("unknown model_type='%s'", e.ModelType)
}

// MissingFieldError is returned when a required config field is absent.
// The computation never substitutes a default for a missing field.
type MissingFieldError struct {
	Key string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required config field '%s' is missing", e.Key)
}

// MalformedWrapperError is returned when a multimodal wrapper config does not
// carry a usable text backbone under its nested key.
type MalformedWrapperError struct {
	ModelType string
	Found     string
}

func (e *MalformedWrapperError) Error() string {
	return fmt.Sprintf("model_type='%s' requires 'text_config' mapping, but it is %s", e.ModelType, e.Found)
}

// PatternLengthError is returned when a hybrid layer pattern disagrees with
// the declared layer count.
type PatternLengthError struct {
	PatternLen int
	NumLayers  int64
}

func (e *PatternLengthError) Error() string {
	return fmt.Sprintf("hybrid_override_pattern has %d entries but num_hidden_layers=%d", e.PatternLen, e.NumLayers)
}
