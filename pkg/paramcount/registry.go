// Package paramcount computes exact learnable and active parameter counts,
// storage precision, and KV cache geometry for transformer language models
// from their configuration alone.
//
// The package is pure computation: it performs no network, filesystem, or
// subprocess calls, and it fails loudly (typed errors) rather than silently
// producing a wrong number when an architecture or field is unrecognized.
package paramcount

import "sort"

// Config is a parsed model config.json: an untyped key/value mapping.
// It is read-only input and is never mutated.
type Config map[string]interface{}

// AttentionType identifies the attention family of an architecture.
type AttentionType string

const (
	AttentionMLA AttentionType = "mla"
	AttentionGQA AttentionType = "gqa"
)

// Label returns the display form of the attention type ("MLA" or "GQA").
func (t AttentionType) Label() string {
	switch t {
	case AttentionMLA:
		return "MLA"
	case AttentionGQA:
		return "GQA"
	}
	return string(t)
}

// SharedExpertKind discriminates how an architecture encodes its shared
// experts: as a count of experts (each sized at the expert intermediate
// size) or as an intermediate size directly (0 meaning none). The two
// conventions must never be mixed.
type SharedExpertKind int

const (
	// SharedExpertCount means the shared-expert field holds a count of
	// shared experts.
	SharedExpertCount SharedExpertKind = iota
	// SharedExpertSize means the shared-expert field holds an intermediate
	// size directly.
	SharedExpertSize
)

// MoEFieldMapping maps architecture-specific config keys to a common
// vocabulary.
type MoEFieldMapping struct {
	// ExpertCountKey holds the number of routed experts.
	ExpertCountKey string
	// SharedExpertKey holds the shared-expert count or size, per Kind.
	SharedExpertKey  string
	SharedExpertKind SharedExpertKind
	// ExpertIntermediateKey holds the per-expert FFN intermediate size.
	ExpertIntermediateKey string
	// DenseLayersKey holds the count of leading dense (non-MoE) layers.
	// Empty when the architecture has no dense layers.
	DenseLayersKey string
	// MTPKey holds the multi-token-prediction module count. Empty when the
	// architecture has no MTP modules.
	MTPKey string
	// MLPProjections is the number of linear projections per MLP block:
	// 3 for gated (SwiGLU-style gate+up+down), 2 for ungated (up+down).
	MLPProjections int
}

// ArchitectureEntry is the immutable registry record for one model_type.
type ArchitectureEntry struct {
	Attention AttentionType
	MoE       MoEFieldMapping
}

// knownArchitectures is populated once and never mutated. Absence of a
// model_type here is a hard error, never a default.
var knownArchitectures = map[string]ArchitectureEntry{
	"deepseek_v32": {
		Attention: AttentionMLA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "n_routed_experts",
			SharedExpertKey:       "n_shared_experts",
			SharedExpertKind:      SharedExpertCount,
			ExpertIntermediateKey: "moe_intermediate_size",
			DenseLayersKey:        "first_k_dense_replace",
			MTPKey:                "num_nextn_predict_layers",
			MLPProjections:        3,
		},
	},
	"kimi_k2": {
		Attention: AttentionMLA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "n_routed_experts",
			SharedExpertKey:       "n_shared_experts",
			SharedExpertKind:      SharedExpertCount,
			ExpertIntermediateKey: "moe_intermediate_size",
			DenseLayersKey:        "first_k_dense_replace",
			MTPKey:                "num_nextn_predict_layers",
			MLPProjections:        3,
		},
	},
	"glm4_moe": {
		Attention: AttentionGQA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "n_routed_experts",
			SharedExpertKey:       "n_shared_experts",
			SharedExpertKind:      SharedExpertCount,
			ExpertIntermediateKey: "moe_intermediate_size",
			DenseLayersKey:        "first_k_dense_replace",
			MTPKey:                "num_nextn_predict_layers",
			MLPProjections:        3,
		},
	},
	"qwen3_moe": {
		Attention: AttentionGQA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "num_experts",
			SharedExpertKey:       "shared_expert_intermediate_size",
			SharedExpertKind:      SharedExpertSize,
			ExpertIntermediateKey: "moe_intermediate_size",
			MLPProjections:        3,
		},
	},
	"minimax_m2": {
		Attention: AttentionGQA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "num_local_experts",
			SharedExpertKey:       "shared_intermediate_size",
			SharedExpertKind:      SharedExpertSize,
			ExpertIntermediateKey: "intermediate_size",
			MTPKey:                "num_mtp_modules",
			MLPProjections:        3,
		},
	},
	// Qwen3-Next interleaves gated-deltanet linear attention with periodic
	// full attention (full_attention_interval); every layer is MoE.
	"qwen3_next": {
		Attention: AttentionGQA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "num_experts",
			SharedExpertKey:       "shared_expert_intermediate_size",
			SharedExpertKind:      SharedExpertSize,
			ExpertIntermediateKey: "moe_intermediate_size",
			MLPProjections:        3,
		},
	},
	// Nemotron-H hybrids declare their layer mix with an explicit per-layer
	// pattern (hybrid_override_pattern) and use ungated relu2 MLPs.
	"nemotron_h": {
		Attention: AttentionGQA,
		MoE: MoEFieldMapping{
			ExpertCountKey:        "n_routed_experts",
			SharedExpertKey:       "moe_shared_expert_intermediate_size",
			SharedExpertKind:      SharedExpertSize,
			ExpertIntermediateKey: "moe_intermediate_size",
			MLPProjections:        2,
		},
	},
}

// LookupArchitecture returns the registry entry for a model_type, or an
// UnsupportedArchitectureError when none exists.
func LookupArchitecture(modelType string) (ArchitectureEntry, error) {
	entry, ok := knownArchitectures[modelType]
	if !ok {
		return ArchitectureEntry{}, &UnsupportedArchitectureError{ModelType: modelType}
	}
	return entry, nil
}

// SupportedArchitectures returns all registered model_type identifiers,
// sorted.
func SupportedArchitectures() []string {
	types := make([]string, 0, len(knownArchitectures))
	for modelType := range knownArchitectures {
		types = append(types, modelType)
	}
	sort.Strings(types)
	return types
}
