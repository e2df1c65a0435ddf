package paramcount

// Per-layer attention parameter counts. Each term is an exact product of the
// projection dimensions; nothing here is estimated.

// mlaAttentionParams counts one layer of Multi-head Latent Attention:
// low-rank query and joint key/value down-projections, their norms, the
// up-projections, and the output projection.
func mlaAttentionParams(config Config) (int64, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, err
	}
	numHeads, err := requireInt(config, "num_attention_heads")
	if err != nil {
		return 0, err
	}
	kvLoraRank, err := requireInt(config, "kv_lora_rank")
	if err != nil {
		return 0, err
	}
	qLoraRank, err := requireInt(config, "q_lora_rank")
	if err != nil {
		return 0, err
	}
	qkNope, err := requireInt(config, "qk_nope_head_dim")
	if err != nil {
		return 0, err
	}
	qkRope, err := requireInt(config, "qk_rope_head_dim")
	if err != nil {
		return 0, err
	}
	vHead, err := requireInt(config, "v_head_dim")
	if err != nil {
		return 0, err
	}

	qAProj := hidden * qLoraRank
	qANorm := qLoraRank
	qBProj := qLoraRank * numHeads * (qkNope + qkRope)
	kvAProj := hidden * (kvLoraRank + qkRope)
	kvANorm := kvLoraRank
	kvBProj := kvLoraRank * numHeads * (qkNope + vHead)
	oProj := numHeads * vHead * hidden

	attn := qAProj + qANorm + qBProj + kvAProj + kvANorm + kvBProj + oProj

	indexer, err := sparseIndexerParams(config, hidden, qLoraRank)
	if err != nil {
		return 0, err
	}
	return attn + indexer, nil
}

// sparseIndexerParams counts the lightning-indexer overhead of
// sparse-attention variants (DeepSeek-V3.2 style). Zero unless both index
// head fields are present: two index projections, a routing-weight
// projection, and the index key norm (weight + bias).
func sparseIndexerParams(config Config, hidden, qLoraRank int64) (int64, error) {
	if _, ok := config["index_n_heads"]; !ok {
		return 0, nil
	}
	if _, ok := config["index_head_dim"]; !ok {
		return 0, nil
	}
	indexHeads, err := requireInt(config, "index_n_heads")
	if err != nil {
		return 0, err
	}
	indexDim, err := requireInt(config, "index_head_dim")
	if err != nil {
		return 0, err
	}

	qProj := qLoraRank * indexHeads * indexDim
	kProj := hidden * indexDim
	weightsProj := hidden * indexHeads
	kNorm := 2 * indexDim

	return qProj + kProj + weightsProj + kNorm, nil
}

// gqaAttentionParams counts one layer of Grouped-Query Attention. The key
// and value projections scale with the KV head count rather than the full
// head count.
func gqaAttentionParams(config Config) (int64, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, err
	}
	numHeads, err := requireInt(config, "num_attention_heads")
	if err != nil {
		return 0, err
	}
	numKVHeads, err := requireInt(config, "num_key_value_heads")
	if err != nil {
		return 0, err
	}
	headDim, err := optionalInt(config, "head_dim", hidden/numHeads)
	if err != nil {
		return 0, err
	}

	qProj := hidden * numHeads * headDim
	kProj := hidden * numKVHeads * headDim
	vProj := hidden * numKVHeads * headDim
	oProj := numHeads * headDim * hidden

	return qProj + kProj + vProj + oProj, nil
}

// linearAttentionParams counts one gated-deltanet (Mamba2-style) linear
// attention layer: combined QKV-and-gate input projection, the B/A state
// projection, a depthwise causal convolution, the output projection, the
// group norm, and the per-head log-decay and dt-bias vectors.
func linearAttentionParams(config Config) (int64, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, err
	}
	numKeyHeads, err := requireInt(config, "linear_num_key_heads")
	if err != nil {
		return 0, err
	}
	keyHeadDim, err := requireInt(config, "linear_key_head_dim")
	if err != nil {
		return 0, err
	}
	numValueHeads, err := requireInt(config, "linear_num_value_heads")
	if err != nil {
		return 0, err
	}
	valueHeadDim, err := requireInt(config, "linear_value_head_dim")
	if err != nil {
		return 0, err
	}
	convKernel, err := requireInt(config, "linear_conv_kernel_dim")
	if err != nil {
		return 0, err
	}

	keyDim := numKeyHeads * keyHeadDim
	valueDim := numValueHeads * valueHeadDim

	inProjQKVZ := hidden * (2*keyDim + 2*valueDim)
	inProjBA := hidden * 2 * numValueHeads

	// q, k and v pass through the causal conv; z does not.
	convDim := 2*keyDim + valueDim
	conv := convDim*convKernel + convDim

	outProj := valueDim * hidden
	norm := valueDim
	perHead := 2 * numValueHeads // A_log + dt_bias

	return inProjQKVZ + inProjBA + conv + outProj + norm + perHead, nil
}
