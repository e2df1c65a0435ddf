// Package modelspec defines the enriched model record produced by the
// pipeline and consumed by the JSON exporters.
package modelspec

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ModelSpec is one fully enriched model. Parameter counts are in billions.
// Pointer fields are optional and serialize as null when absent, which the
// frontend treats as "unknown".
type ModelSpec struct {
	ModelName string `json:"model_name" validate:"required"`

	// PublishedParamsB is the safetensors element count from the HF API —
	// the number shown on the model page. It can disagree with the logical
	// count for packed formats like INT4.
	PublishedParamsB *float64 `json:"published_param_count_b"`

	// LearnableParamsB is the true logical parameter count, derived from
	// config.json.
	LearnableParamsB float64 `json:"learnable_params_b" validate:"required,gt=0"`

	ActiveParamsB *float64 `json:"active_params_b"`

	// Architecture is "MoE" or "Dense".
	Architecture string `json:"architecture" validate:"required,oneof=Dense MoE"`

	ContextLength *int64 `json:"context_length"`

	// Precision is the published storage precision, e.g. "FP8", "BF16",
	// "INT4-mixed". Empty when detection failed.
	Precision string `json:"precision,omitempty"`

	// RoutedExpertParamsB is the routed-expert bulk — the part quantized in
	// mixed-precision checkpoints.
	RoutedExpertParamsB *float64 `json:"routed_expert_params_b"`

	// AttentionType is "MLA" or "GQA".
	AttentionType string `json:"attention_type" validate:"required,oneof=MLA GQA"`

	NumHiddenLayers int64 `json:"num_hidden_layers" validate:"required,gt=0"`

	// NumKVLayers is set only for hybrid topologies: the count of
	// full-attention layers that hold a KV cache. Nil means every hidden
	// layer caches KV.
	NumKVLayers *int64 `json:"num_kv_layers"`

	// GQA cache geometry.
	NumKVHeads *int64 `json:"num_kv_heads"`
	HeadDim    *int64 `json:"head_dim"`

	// MLA cache geometry.
	KVLoraRank    *int64 `json:"kv_lora_rank"`
	QKRopeHeadDim *int64 `json:"qk_rope_head_dim"`

	HFModelID string `json:"hf_model_id" validate:"required"`
}

var validate = validator.New()

// Validate checks structural validity plus the attention-family field
// pairing: GQA specs need KV head geometry, MLA specs need latent geometry.
func (s *ModelSpec) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("model spec validation failed: %w", err)
	}

	switch s.AttentionType {
	case "GQA":
		if s.NumKVHeads == nil || s.HeadDim == nil {
			return fmt.Errorf("GQA spec %s needs num_kv_heads and head_dim", s.ModelName)
		}
	case "MLA":
		if s.KVLoraRank == nil || s.QKRopeHeadDim == nil {
			return fmt.Errorf("MLA spec %s needs kv_lora_rank and qk_rope_head_dim", s.ModelName)
		}
	}

	return nil
}

// Float64Ptr and Int64Ptr build optional fields in one expression.
func Float64Ptr(v float64) *float64 { return &v }
func Int64Ptr(v int64) *int64       { return &v }
