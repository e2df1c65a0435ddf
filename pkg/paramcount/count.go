package paramcount

// ParamCountResult is the output of CountParams.
//
// Invariants: ActiveParams <= TotalParams, RoutedExpertParams <= TotalParams,
// all counts >= 0.
type ParamCountResult struct {
	TotalParams        int64
	ActiveParams       int64
	RoutedExpertParams int64
	ModelType          string
	NumLayers          int64
	NumMoELayers       int64
	NumDenseLayers     int64

	// Hybrid topologies only; zero elsewhere.
	NumStateSpaceLayers    int64
	NumFullAttentionLayers int64
}

// CountParams counts total and active parameters from a model config.
//
// Topology is selected in priority order: an explicit per-layer pattern
// (hybrid_override_pattern), a periodic full-attention interval
// (full_attention_interval > 1), then the uniform dense/MoE split.
func CountParams(raw Config) (ParamCountResult, error) {
	config, err := ResolveTextConfig(raw)
	if err != nil {
		return ParamCountResult{}, err
	}

	modelType := stringField(config, "model_type")
	entry, err := LookupArchitecture(modelType)
	if err != nil {
		return ParamCountResult{}, err
	}

	if pattern := stringField(config, "hybrid_override_pattern"); pattern != "" {
		return countPatternHybrid(config, entry, modelType, pattern)
	}

	interval, err := optionalInt(config, "full_attention_interval", 0)
	if err != nil {
		return ParamCountResult{}, err
	}
	if interval > 1 {
		return countIntervalHybrid(config, entry, modelType, interval)
	}

	return countUniform(config, entry, modelType)
}

// embeddingParams returns (embedding, lm head, final norm) costs. The output
// head contributes zero when embeddings are tied.
func embeddingParams(config Config) (embed, lmHead, finalNorm int64, err error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, 0, 0, err
	}
	vocab, err := requireInt(config, "vocab_size")
	if err != nil {
		return 0, 0, 0, err
	}
	embed = vocab * hidden
	if !boolField(config, "tie_word_embeddings") {
		lmHead = vocab * hidden
	}
	finalNorm = hidden
	return embed, lmHead, finalNorm, nil
}

// countUniform handles the default topology: a leading block of dense layers
// (per the registry's dense-layers key) followed by MoE layers, with a
// uniform attention mixer throughout and optional MTP modules on top.
func countUniform(config Config, entry ArchitectureEntry, modelType string) (ParamCountResult, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return ParamCountResult{}, err
	}
	numLayers, err := requireInt(config, "num_hidden_layers")
	if err != nil {
		return ParamCountResult{}, err
	}
	intermediate, err := requireInt(config, "intermediate_size")
	if err != nil {
		return ParamCountResult{}, err
	}
	activeExperts, err := requireInt(config, "num_experts_per_tok")
	if err != nil {
		return ParamCountResult{}, err
	}

	var denseLayers int64
	if entry.MoE.DenseLayersKey != "" {
		denseLayers, err = requireInt(config, entry.MoE.DenseLayersKey)
		if err != nil {
			return ParamCountResult{}, err
		}
	}
	moeLayers := numLayers - denseLayers

	var mtpCount int64
	if entry.MoE.MTPKey != "" {
		mtpCount, err = optionalInt(config, entry.MoE.MTPKey, 0)
		if err != nil {
			return ParamCountResult{}, err
		}
	}

	attnPerLayer, err := attentionParams(config, entry.Attention)
	if err != nil {
		return ParamCountResult{}, err
	}

	// input_layernorm + post_attention_layernorm
	normsPerLayer := 2 * hidden

	embed, lmHead, finalNorm, err := embeddingParams(config)
	if err != nil {
		return ParamCountResult{}, err
	}

	routedPerLayer, err := routedExpertOnlyParams(config, entry.MoE)
	if err != nil {
		return ParamCountResult{}, err
	}
	routedExpertParams := moeLayers * routedPerLayer

	moeTotalFFN, err := moeLayerParams(config, entry.MoE, allRoutedExperts)
	if err != nil {
		return ParamCountResult{}, err
	}
	moeActiveFFN, err := moeLayerParams(config, entry.MoE, activeExperts)
	if err != nil {
		return ParamCountResult{}, err
	}

	denseBlock := attnPerLayer + denseMLPParams(entry.MoE.MLPProjections, hidden, intermediate) + normsPerLayer
	moeBlock := attnPerLayer + moeTotalFFN + normsPerLayer
	activeMoEBlock := attnPerLayer + moeActiveFFN + normsPerLayer

	total := embed + lmHead + denseLayers*denseBlock + moeLayers*moeBlock + finalNorm
	active := embed + lmHead + denseLayers*denseBlock + moeLayers*activeMoEBlock + finalNorm

	if mtpCount > 0 {
		mtpPerModule := 2*hidden*hidden + 4*hidden
		total += mtpCount * mtpPerModule
		active += mtpCount * mtpPerModule
	}

	return ParamCountResult{
		TotalParams:        total,
		ActiveParams:       active,
		RoutedExpertParams: routedExpertParams,
		ModelType:          modelType,
		NumLayers:          numLayers,
		NumMoELayers:       moeLayers,
		NumDenseLayers:     denseLayers,
	}, nil
}

// countPatternHybrid handles models declaring an explicit per-layer pattern:
// 'M' selects a state-space block, '*' full attention, '-' a plain dense
// MLP, and any other character an MoE block. The pattern length must equal
// the declared layer count.
func countPatternHybrid(config Config, entry ArchitectureEntry, modelType, pattern string) (ParamCountResult, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return ParamCountResult{}, err
	}
	numLayers, err := requireInt(config, "num_hidden_layers")
	if err != nil {
		return ParamCountResult{}, err
	}
	if int64(len(pattern)) != numLayers {
		return ParamCountResult{}, &PatternLengthError{PatternLen: len(pattern), NumLayers: numLayers}
	}

	embed, lmHead, finalNorm, err := embeddingParams(config)
	if err != nil {
		return ParamCountResult{}, err
	}

	// Single-block layers carry one norm each.
	normPerLayer := hidden

	// Block costs resolved lazily so a config is only required to carry the
	// fields its pattern actually uses.
	var ssCost, attnCost, denseCost int64
	var moeTotalCost, moeActiveCost int64
	var haveSS, haveAttn, haveDense, haveMoE bool
	var ssLayers, attnLayers, denseLayers, moeLayers int64

	var total, active int64
	for _, ch := range pattern {
		switch ch {
		case 'M':
			if !haveSS {
				if ssCost, err = linearAttentionParams(config); err != nil {
					return ParamCountResult{}, err
				}
				haveSS = true
			}
			total += ssCost + normPerLayer
			active += ssCost + normPerLayer
			ssLayers++
		case '*':
			if !haveAttn {
				if attnCost, err = gqaAttentionParams(config); err != nil {
					return ParamCountResult{}, err
				}
				haveAttn = true
			}
			total += attnCost + normPerLayer
			active += attnCost + normPerLayer
			attnLayers++
		case '-':
			if !haveDense {
				intermediate, err := requireInt(config, "intermediate_size")
				if err != nil {
					return ParamCountResult{}, err
				}
				denseCost = denseMLPParams(entry.MoE.MLPProjections, hidden, intermediate)
				haveDense = true
			}
			total += denseCost + normPerLayer
			active += denseCost + normPerLayer
			denseLayers++
		default:
			if !haveMoE {
				activeExperts, err := requireInt(config, "num_experts_per_tok")
				if err != nil {
					return ParamCountResult{}, err
				}
				if moeTotalCost, err = moeLayerParams(config, entry.MoE, allRoutedExperts); err != nil {
					return ParamCountResult{}, err
				}
				if moeActiveCost, err = moeLayerParams(config, entry.MoE, activeExperts); err != nil {
					return ParamCountResult{}, err
				}
				haveMoE = true
			}
			total += moeTotalCost + normPerLayer
			active += moeActiveCost + normPerLayer
			moeLayers++
		}
	}

	var routedExpertParams int64
	if moeLayers > 0 {
		routedPerLayer, err := routedExpertOnlyParams(config, entry.MoE)
		if err != nil {
			return ParamCountResult{}, err
		}
		routedExpertParams = moeLayers * routedPerLayer
	}

	total += embed + lmHead + finalNorm
	active += embed + lmHead + finalNorm

	return ParamCountResult{
		TotalParams:            total,
		ActiveParams:           active,
		RoutedExpertParams:     routedExpertParams,
		ModelType:              modelType,
		NumLayers:              numLayers,
		NumMoELayers:           moeLayers,
		NumDenseLayers:         denseLayers,
		NumStateSpaceLayers:    ssLayers,
		NumFullAttentionLayers: attnLayers,
	}, nil
}

// countIntervalHybrid handles linear-attention backbones with a periodic
// full-attention layer: every interval-th layer (1-indexed) uses full GQA
// attention, the rest use linear attention, and every layer has an MoE FFN.
func countIntervalHybrid(config Config, entry ArchitectureEntry, modelType string, interval int64) (ParamCountResult, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return ParamCountResult{}, err
	}
	numLayers, err := requireInt(config, "num_hidden_layers")
	if err != nil {
		return ParamCountResult{}, err
	}
	activeExperts, err := requireInt(config, "num_experts_per_tok")
	if err != nil {
		return ParamCountResult{}, err
	}

	attnLayers := numLayers / interval
	ssLayers := numLayers - attnLayers

	linearCost, err := linearAttentionParams(config)
	if err != nil {
		return ParamCountResult{}, err
	}
	attnCost, err := gqaAttentionParams(config)
	if err != nil {
		return ParamCountResult{}, err
	}
	moeTotalFFN, err := moeLayerParams(config, entry.MoE, allRoutedExperts)
	if err != nil {
		return ParamCountResult{}, err
	}
	moeActiveFFN, err := moeLayerParams(config, entry.MoE, activeExperts)
	if err != nil {
		return ParamCountResult{}, err
	}

	embed, lmHead, finalNorm, err := embeddingParams(config)
	if err != nil {
		return ParamCountResult{}, err
	}

	routedPerLayer, err := routedExpertOnlyParams(config, entry.MoE)
	if err != nil {
		return ParamCountResult{}, err
	}

	normsPerLayer := 2 * hidden
	mixers := ssLayers*linearCost + attnLayers*attnCost
	total := embed + lmHead + finalNorm + mixers + numLayers*(moeTotalFFN+normsPerLayer)
	active := embed + lmHead + finalNorm + mixers + numLayers*(moeActiveFFN+normsPerLayer)

	return ParamCountResult{
		TotalParams:            total,
		ActiveParams:           active,
		RoutedExpertParams:     numLayers * routedPerLayer,
		ModelType:              modelType,
		NumLayers:              numLayers,
		NumMoELayers:           numLayers,
		NumDenseLayers:         0,
		NumStateSpaceLayers:    ssLayers,
		NumFullAttentionLayers: attnLayers,
	}, nil
}

// attentionParams dispatches to the per-family cost function.
func attentionParams(config Config, attention AttentionType) (int64, error) {
	if attention == AttentionMLA {
		return mlaAttentionParams(config)
	}
	return gqaAttentionParams(config)
}
