package paramcount

// KVCacheFields holds the architecture fields that determine KV cache size.
// MLA models carry the latent-cache fields; GQA models carry head geometry.
type KVCacheFields struct {
	AttentionType   AttentionType
	NumHiddenLayers int64

	// NumKVLayers is the number of layers that actually hold a KV cache.
	// Equal to NumHiddenLayers except for hybrid topologies, where only the
	// full-attention layers cache keys and values.
	NumKVLayers int64
	// Hybrid is true when the model interleaves state-space and attention
	// layers (NumKVLayers < NumHiddenLayers is then meaningful).
	Hybrid bool

	// GQA only.
	NumKVHeads int64
	HeadDim    int64

	// MLA only.
	KVLoraRank    int64
	QKRopeHeadDim int64
}

// ExtractKVCacheFields pulls the KV-cache-relevant fields out of a config,
// per the architecture's attention family and topology.
func ExtractKVCacheFields(raw Config) (KVCacheFields, error) {
	config, err := ResolveTextConfig(raw)
	if err != nil {
		return KVCacheFields{}, err
	}

	modelType := stringField(config, "model_type")
	entry, err := LookupArchitecture(modelType)
	if err != nil {
		return KVCacheFields{}, err
	}

	numLayers, err := requireInt(config, "num_hidden_layers")
	if err != nil {
		return KVCacheFields{}, err
	}

	fields := KVCacheFields{
		AttentionType:   entry.Attention,
		NumHiddenLayers: numLayers,
		NumKVLayers:     numLayers,
	}

	// Hybrid topologies: only the full-attention layers keep a KV cache.
	if pattern := stringField(config, "hybrid_override_pattern"); pattern != "" {
		if int64(len(pattern)) != numLayers {
			return KVCacheFields{}, &PatternLengthError{PatternLen: len(pattern), NumLayers: numLayers}
		}
		var attnLayers int64
		for _, ch := range pattern {
			if ch == '*' {
				attnLayers++
			}
		}
		fields.NumKVLayers = attnLayers
		fields.Hybrid = true
	} else {
		interval, err := optionalInt(config, "full_attention_interval", 0)
		if err != nil {
			return KVCacheFields{}, err
		}
		if interval > 1 {
			fields.NumKVLayers = numLayers / interval
			fields.Hybrid = true
		}
	}

	switch entry.Attention {
	case AttentionMLA:
		if fields.KVLoraRank, err = requireInt(config, "kv_lora_rank"); err != nil {
			return KVCacheFields{}, err
		}
		if fields.QKRopeHeadDim, err = requireInt(config, "qk_rope_head_dim"); err != nil {
			return KVCacheFields{}, err
		}
	case AttentionGQA:
		if fields.NumKVHeads, err = requireInt(config, "num_key_value_heads"); err != nil {
			return KVCacheFields{}, err
		}
		numHeads, err := requireInt(config, "num_attention_heads")
		if err != nil {
			return KVCacheFields{}, err
		}
		hidden, err := requireInt(config, "hidden_size")
		if err != nil {
			return KVCacheFields{}, err
		}
		if fields.HeadDim, err = optionalInt(config, "head_dim", hidden/numHeads); err != nil {
			return KVCacheFields{}, err
		}
	}

	return fields, nil
}

// BytesPerTokenFP16 returns the KV cache bytes per token at 2 bytes per
// element. MLA caches one joint latent per layer; GQA caches separate keys
// and values per KV head, on attention layers only.
func (f KVCacheFields) BytesPerTokenFP16() int64 {
	switch f.AttentionType {
	case AttentionMLA:
		return f.NumHiddenLayers * (f.KVLoraRank + f.QKRopeHeadDim) * 2
	case AttentionGQA:
		return 2 * f.NumKVLayers * f.NumKVHeads * f.HeadDim * 2
	}
	return 0
}
