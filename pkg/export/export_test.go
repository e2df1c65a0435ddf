package export

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgl-project/modelcost/pkg/afero"
	"github.com/sgl-project/modelcost/pkg/gpusource"
	"github.com/sgl-project/modelcost/pkg/logging"
	"github.com/sgl-project/modelcost/pkg/modelspec"
)

func newTestExporter(t *testing.T) (*Exporter, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	exporter := NewExporter(fs, "/export", logging.Discard())
	exporter.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	exporter.newID = func() string { return "run-0001" }
	return exporter, fs
}

func readJSON(t *testing.T, fs afero.Fs, path string, out interface{}) {
	t.Helper()
	raw, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, out))
}

func TestExportOfferings(t *testing.T) {
	exporter, fs := newTestExporter(t)

	offerings := []gpusource.Offering{
		{GPUName: "H100", VRAMGB: 80, GPUCount: 8, PricePerHour: 31.92, TotalVRAMGB: 640},
		{GPUName: "A100", VRAMGB: 80, GPUCount: 1, PricePerHour: 1.50},
	}
	path, err := exporter.ExportOfferings(offerings)
	require.NoError(t, err)
	assert.Equal(t, "/export/gpus.json", path)

	var rows []gpusource.Offering
	readJSON(t, fs, path, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "A100", rows[0].GPUName)
	assert.Equal(t, 80.0, rows[0].TotalVRAMGB, "total VRAM computed when missing")
	assert.Equal(t, "H100", rows[1].GPUName)
}

func TestExportModelsSorted(t *testing.T) {
	exporter, fs := newTestExporter(t)

	specs := []modelspec.ModelSpec{
		{ModelName: "Kimi-K2.5", LearnableParamsB: 1026.5},
		{ModelName: "DeepSeek-V3.2", LearnableParamsB: 671.1},
	}
	path, err := exporter.ExportModels(specs)
	require.NoError(t, err)

	var rows []modelspec.ModelSpec
	readJSON(t, fs, path, &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, "DeepSeek-V3.2", rows[0].ModelName)
	assert.Equal(t, "Kimi-K2.5", rows[1].ModelName)
}

func TestExportMetadata(t *testing.T) {
	exporter, fs := newTestExporter(t)

	path, err := exporter.ExportMetadata()
	require.NoError(t, err)

	var metadata RunMetadata
	readJSON(t, fs, path, &metadata)
	assert.Equal(t, "2026-03-01T12:00:00Z", metadata.UpdatedAt)
	assert.Equal(t, "run-0001", metadata.RunID)
}

func TestExportGPUSourceAndSpecs(t *testing.T) {
	exporter, fs := newTestExporter(t)

	_, err := exporter.ExportGPUSource(gpusource.SourceMetadata{
		ServiceName: "gpuhunt",
		Currency:    "USD",
	})
	require.NoError(t, err)

	var metadata gpusource.SourceMetadata
	readJSON(t, fs, "/export/gpu_source.json", &metadata)
	assert.Equal(t, "gpuhunt", metadata.ServiceName)

	_, err = exporter.ExportGPUSpecs([]gpusource.GPUSpec{
		{GPUName: "H100", MemorySizeGB: 80},
		{GPUName: "B200", MemorySizeGB: 192},
	})
	require.NoError(t, err)

	var specs []gpusource.GPUSpec
	readJSON(t, fs, "/export/gpu_specs.json", &specs)
	require.Len(t, specs, 2)
	assert.Equal(t, "B200", specs[0].GPUName)
}
