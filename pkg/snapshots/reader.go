package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// ScoreEntry is a single benchmark score for a model, as stored in the
// results repository.
type ScoreEntry struct {
	Benchmark       string
	Score           float64
	CostPerInstance *float64
}

// ModelData is everything recorded for one model at one commit.
type ModelData struct {
	ModelName string
	Scores    []ScoreEntry
}

type metadataFile struct {
	Model string `json:"model"`
}

type scoreRecord struct {
	Benchmark       string   `json:"benchmark"`
	Score           *float64 `json:"score"`
	CostPerInstance *float64 `json:"cost_per_instance"`
}

// ReadModelData reads metadata.json and scores.json for one model directory
// at a commit. It returns nil when the metadata is missing or unusable;
// missing or invalid scores leave the model with no score entries.
func (r *Repo) ReadModelData(ctx context.Context, commit, dirName string) *ModelData {
	base := fmt.Sprintf("results/%s", dirName)

	metaRaw, ok := r.ReadFileAtCommit(ctx, commit, base+"/metadata.json")
	if !ok {
		return nil
	}
	var meta metadataFile
	if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
		r.logger.WithField("dir", dirName).WithField("commit", shortCommit(commit)).
			Warn("Invalid metadata.json")
		return nil
	}
	modelName := strings.TrimSpace(meta.Model)
	if modelName == "" {
		r.logger.WithField("dir", dirName).WithField("commit", shortCommit(commit)).
			Warn("No model name in metadata")
		return nil
	}

	data := &ModelData{ModelName: modelName}

	scoresRaw, ok := r.ReadFileAtCommit(ctx, commit, base+"/scores.json")
	if !ok {
		return data
	}
	var records []scoreRecord
	if err := json.Unmarshal([]byte(scoresRaw), &records); err != nil {
		r.logger.WithField("dir", dirName).WithField("commit", shortCommit(commit)).
			Warn("Invalid scores.json")
		return data
	}

	for _, record := range records {
		benchmark := strings.TrimSpace(record.Benchmark)
		if benchmark == "" || record.Score == nil {
			continue
		}
		// cost_per_instance arrived later; older data only carried a
		// total_cost field, which we ignore.
		data.Scores = append(data.Scores, ScoreEntry{
			Benchmark:       benchmark,
			Score:           *record.Score,
			CostPerInstance: record.CostPerInstance,
		})
	}
	return data
}

// ReadAllModels reads the data of every model directory at a commit.
func (r *Repo) ReadAllModels(ctx context.Context, commit string) ([]ModelData, error) {
	dirs, err := r.ListModelDirs(ctx, commit)
	if err != nil {
		return nil, err
	}
	var models []ModelData
	for _, dir := range dirs {
		if data := r.ReadModelData(ctx, commit, dir); data != nil {
			models = append(models, *data)
		}
	}
	return models, nil
}
