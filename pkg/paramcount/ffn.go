package paramcount

// allRoutedExperts selects every routed expert when counting total params.
const allRoutedExperts int64 = -1

// denseMLPParams counts a dense MLP block: numProjections linear maps of
// hidden × intermediate (3 for gated SwiGLU-style, 2 for ungated).
func denseMLPParams(numProjections int, hidden, intermediate int64) int64 {
	return int64(numProjections) * hidden * intermediate
}

// moeLayerParams counts the MoE FFN of one layer: routed experts, the router
// gate, and shared experts.
//
// activeExperts limits how many routed experts are counted (for the
// active-param calculation); pass allRoutedExperts to count every expert.
// The shared-expert branch follows exactly the convention recorded in the
// registry entry — the count and size interpretations must never mix.
func moeLayerParams(config Config, mapping MoEFieldMapping, activeExperts int64) (int64, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, err
	}
	numExperts, err := requireInt(config, mapping.ExpertCountKey)
	if err != nil {
		return 0, err
	}
	expertIntermediate, err := requireInt(config, mapping.ExpertIntermediateKey)
	if err != nil {
		return 0, err
	}

	counted := numExperts
	if activeExperts != allRoutedExperts {
		counted = activeExperts
	}
	routed := counted * denseMLPParams(mapping.MLPProjections, hidden, expertIntermediate)

	router := hidden * numExperts

	sharedVal, err := requireInt(config, mapping.SharedExpertKey)
	if err != nil {
		return 0, err
	}
	var shared int64
	switch mapping.SharedExpertKind {
	case SharedExpertCount:
		shared = sharedVal * denseMLPParams(mapping.MLPProjections, hidden, expertIntermediate)
	case SharedExpertSize:
		if sharedVal > 0 {
			shared = denseMLPParams(mapping.MLPProjections, hidden, sharedVal)
		}
	}

	return routed + router + shared, nil
}

// routedExpertOnlyParams counts just the routed-expert pool for one MoE
// layer — the quantizable bulk of mixed-precision checkpoints.
func routedExpertOnlyParams(config Config, mapping MoEFieldMapping) (int64, error) {
	hidden, err := requireInt(config, "hidden_size")
	if err != nil {
		return 0, err
	}
	numExperts, err := requireInt(config, mapping.ExpertCountKey)
	if err != nil {
		return 0, err
	}
	expertIntermediate, err := requireInt(config, mapping.ExpertIntermediateKey)
	if err != nil {
		return 0, err
	}
	return numExperts * denseMLPParams(mapping.MLPProjections, hidden, expertIntermediate), nil
}
