// Package export writes pipeline outputs as JSON files consumed by the
// frontend.
package export

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/gpusource"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/modelspec"
)

// RunMetadata is metadata.json: when the data was last refreshed and by
// which pipeline run.
type RunMetadata struct {
	UpdatedAt string `json:"updated_at"`
	RunID     string `json:"run_id"`
}

// Exporter writes the export directory.
type Exporter struct {
	fs     afero.Fs
	dir    string
	logger logging.Interface
	now    func() time.Time
	newID  func() string
}

// NewExporter builds an exporter rooted at the export directory.
func NewExporter(fs afero.Fs, dir string, logger logging.Interface) *Exporter {
	return &Exporter{
		fs:     fs,
		dir:    dir,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

func (e *Exporter) writeJSON(name string, data interface{}) (string, error) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", errors.Wrapf(err, "marshaling %s", name)
	}
	if err := afero.MkdirAll(e.fs, e.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating export directory %s", e.dir)
	}
	path := filepath.Join(e.dir, name)
	if err := afero.WriteFile(e.fs, path, append(raw, '\n'), 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return path, nil
}

// ExportOfferings writes gpus.json, sorted by (gpu, count, price).
func (e *Exporter) ExportOfferings(offerings []gpusource.Offering) (string, error) {
	rows := make([]gpusource.Offering, len(offerings))
	copy(rows, offerings)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].GPUName != rows[j].GPUName {
			return rows[i].GPUName < rows[j].GPUName
		}
		if rows[i].GPUCount != rows[j].GPUCount {
			return rows[i].GPUCount < rows[j].GPUCount
		}
		return rows[i].PricePerHour < rows[j].PricePerHour
	})
	for i := range rows {
		if rows[i].TotalVRAMGB == 0 {
			rows[i].TotalVRAMGB = rows[i].VRAMGB * float64(rows[i].GPUCount)
		}
	}

	path, err := e.writeJSON("gpus.json", rows)
	if err != nil {
		return "", err
	}
	e.logger.Infof("Exported %d GPU offerings to %s", len(rows), path)
	return path, nil
}

// ExportGPUSource writes gpu_source.json.
func (e *Exporter) ExportGPUSource(metadata gpusource.SourceMetadata) (string, error) {
	path, err := e.writeJSON("gpu_source.json", metadata)
	if err != nil {
		return "", err
	}
	e.logger.Infof("Exported GPU source metadata to %s", path)
	return path, nil
}

// ExportGPUSpecs writes gpu_specs.json, sorted by GPU name.
func (e *Exporter) ExportGPUSpecs(specs []gpusource.GPUSpec) (string, error) {
	rows := make([]gpusource.GPUSpec, len(specs))
	copy(rows, specs)
	sort.Slice(rows, func(i, j int) bool { return rows[i].GPUName < rows[j].GPUName })

	path, err := e.writeJSON("gpu_specs.json", rows)
	if err != nil {
		return "", err
	}
	e.logger.Infof("Exported %d GPU specs to %s", len(rows), path)
	return path, nil
}

// ExportModels writes models.json, sorted by model name.
func (e *Exporter) ExportModels(specs []modelspec.ModelSpec) (string, error) {
	rows := make([]modelspec.ModelSpec, len(specs))
	copy(rows, specs)
	sort.Slice(rows, func(i, j int) bool { return rows[i].ModelName < rows[j].ModelName })

	path, err := e.writeJSON("models.json", rows)
	if err != nil {
		return "", err
	}
	e.logger.Infof("Exported %d models to %s", len(rows), path)
	return path, nil
}

// ExportMetadata writes metadata.json with the refresh timestamp and a run
// identifier.
func (e *Exporter) ExportMetadata() (string, error) {
	metadata := RunMetadata{
		UpdatedAt: e.now().UTC().Format(time.RFC3339),
		RunID:     e.newID(),
	}
	path, err := e.writeJSON("metadata.json", metadata)
	if err != nil {
		return "", err
	}
	e.logger.Infof("Exported pipeline metadata to %s", path)
	return path, nil
}
