package hfsource

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/sgl-project/modelcost/pkg/modelspec"
	"github.com/sgl-project/modelcost/pkg/paramcount"
)

// SkippedModel records a model left out of an enrichment batch because its
// architecture is not registered. Skips are reported, not fatal.
type SkippedModel struct {
	ModelName string
	ModelType string
	HFID      string
}

// FetchModel builds a fully enriched ModelSpec for one model. The config is
// required; the published safetensors count is advisory. An unregistered
// architecture surfaces as *paramcount.UnsupportedArchitectureError so
// callers can skip instead of fail.
func (c *Client) FetchModel(ctx context.Context, modelName, hfID string) (*modelspec.ModelSpec, error) {
	config, err := c.FetchConfig(ctx, hfID)
	if err != nil {
		return nil, err
	}

	published := c.FetchPublishedParams(ctx, hfID)

	// Config-based counting is the source of truth. When it fails for a
	// registered architecture and a published safetensors count exists, the
	// published count stands in for the learnable total and the active and
	// routed fields stay null. Unregistered architectures never fall back.
	counts, countErr := paramcount.CountParams(config)
	counted := countErr == nil
	if countErr != nil {
		var unsupported *paramcount.UnsupportedArchitectureError
		if errors.As(countErr, &unsupported) || published == nil {
			return nil, fmt.Errorf("counting parameters for %s: %w", hfID, countErr)
		}
		c.logger.WithField("hf_id", hfID).WithError(countErr).
			Warn("Config-based param count failed, using published count")
	}

	kv, err := paramcount.ExtractKVCacheFields(config)
	if err != nil {
		return nil, fmt.Errorf("extracting KV cache fields for %s: %w", hfID, err)
	}

	spec := &modelspec.ModelSpec{
		ModelName:        modelName,
		PublishedParamsB: published,
		Architecture:     "Dense",
		AttentionType:    kv.AttentionType.Label(),
		NumHiddenLayers:  kv.NumHiddenLayers,
		HFModelID:        hfID,
	}
	if counted {
		spec.LearnableParamsB = paramsToB(counts.TotalParams)
		spec.ActiveParamsB = modelspec.Float64Ptr(paramsToB(counts.ActiveParams))
		if counts.NumMoELayers > 0 {
			spec.Architecture = "MoE"
		}
		if counts.RoutedExpertParams > 0 {
			spec.RoutedExpertParamsB = modelspec.Float64Ptr(paramsToB(counts.RoutedExpertParams))
		}
	} else {
		spec.LearnableParamsB = *published
	}
	if kv.Hybrid {
		spec.NumKVLayers = modelspec.Int64Ptr(kv.NumKVLayers)
	}

	switch kv.AttentionType {
	case paramcount.AttentionGQA:
		spec.NumKVHeads = modelspec.Int64Ptr(kv.NumKVHeads)
		spec.HeadDim = modelspec.Int64Ptr(kv.HeadDim)
	case paramcount.AttentionMLA:
		spec.KVLoraRank = modelspec.Int64Ptr(kv.KVLoraRank)
		spec.QKRopeHeadDim = modelspec.Int64Ptr(kv.QKRopeHeadDim)
	}

	// Context length lives on the effective (possibly wrapped) config.
	if effective, err := paramcount.ResolveTextConfig(config); err == nil {
		if ctxLen, ok := effective["max_position_embeddings"]; ok {
			if n, ok := asInt64(ctxLen); ok {
				spec.ContextLength = modelspec.Int64Ptr(n)
			}
		}
	}

	// Precision detection failures degrade to an empty label.
	if precision, err := paramcount.DetectPrecision(config); err == nil {
		spec.Precision = precision.Label
		if precision.IsMixed {
			spec.Precision += "-mixed"
		}
	} else {
		c.logger.WithField("hf_id", hfID).WithError(err).
			Warn("Precision detection failed")
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// FetchAll enriches every model in the mapping, in name order. Unsupported
// architectures are skipped and reported; any other failure is collected and
// returned as an aggregated error alongside the successful specs.
func (c *Client) FetchAll(ctx context.Context, modelMap map[string]string) ([]*modelspec.ModelSpec, []SkippedModel, error) {
	if modelMap == nil {
		modelMap = ModelNameToHFID
	}

	names := make([]string, 0, len(modelMap))
	for name := range modelMap {
		names = append(names, name)
	}
	sort.Strings(names)

	var specs []*modelspec.ModelSpec
	var skipped []SkippedModel
	var failures *multierror.Error

	for i, name := range names {
		hfID := modelMap[name]
		c.logger.WithField("model", name).
			WithField("hf_id", hfID).
			Infof("Fetching model %d/%d", i+1, len(names))

		spec, err := c.FetchModel(ctx, name, hfID)
		switch {
		case err == nil:
			specs = append(specs, spec)
			c.logger.WithField("model", name).
				WithField("learnable_b", spec.LearnableParamsB).
				WithField("architecture", spec.Architecture).
				Info("Enriched model")
		default:
			var unsupported *paramcount.UnsupportedArchitectureError
			if errors.As(err, &unsupported) {
				skipped = append(skipped, SkippedModel{
					ModelName: name,
					ModelType: unsupported.ModelType,
					HFID:      hfID,
				})
				c.logger.WithField("model", name).
					WithField("model_type", unsupported.ModelType).
					Warn("Skipping model with unsupported architecture")
			} else {
				failures = multierror.Append(failures, fmt.Errorf("%s: %w", name, err))
				c.logger.WithField("model", name).WithError(err).
					Warn("Failed to enrich model")
			}
		}

		if i < len(names)-1 {
			select {
			case <-ctx.Done():
				return specs, skipped, ctx.Err()
			case <-time.After(c.fetchDelay):
			}
		}
	}

	c.logger.Infof("Successfully fetched %d/%d models", len(specs), len(names))
	return specs, skipped, failures.ErrorOrNil()
}

func paramsToB(params int64) float64 {
	return roundB(params)
}

func asInt64(val interface{}) (int64, bool) {
	switch n := val.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}
