package gpusource

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/logging"
)

// DefaultSpecDatabaseURL is the dbgpu (TechPowerUp) specification database.
const DefaultSpecDatabaseURL = "https://raw.githubusercontent.com/painebenjamin/dbgpu/main/src/dbgpu/data/all.json"

// GPUNameToDBGPUKey maps our GPU names (gpuhunt vocabulary) to dbgpu
// specification slugs. RTXPRO6000WK shares the RTXPRO6000 entry (same 96 GB
// hardware).
var GPUNameToDBGPUKey = map[string]string{
	"A10":            "a10-pcie",
	"A10G":           "a10g",
	"A100":           "a100-pcie-40gb",
	"A100_80G":       "a100-sxm4-80gb",
	"A40":            "a40-pcie",
	"A4000":          "rtx-a4000",
	"A4500":          "rtx-a4500",
	"A5000":          "rtx-a5000",
	"A6000":          "rtx-a6000",
	"B200":           "b200",
	"B300":           "b300",
	"H100":           "h100-sxm5-80gb",
	"H100NVL":        "h100-nvl-94gb",
	"H200":           "h200-sxm-141gb",
	"L4":             "l4",
	"L40":            "l40",
	"L40S":           "l40s",
	"RTX3090":        "geforce-rtx-3090",
	"RTX3090Ti":      "geforce-rtx-3090-ti",
	"RTX4000Ada":     "rtx-4000-ada-generation",
	"RTX4090":        "geforce-rtx-4090",
	"RTX5000Ada":     "rtx-5000-ada-generation",
	"RTX5090":        "geforce-rtx-5090",
	"RTX6000":        "quadro-rtx-6000",
	"RTX6000Ada":     "rtx-6000-ada-generation",
	"RTXPRO4500":     "rtx-pro-4500-blackwell",
	"RTXPRO6000":     "rtx-pro-6000-blackwell",
	"RTXPRO6000MaxQ": "rtx-pro-6000-blackwell-max-q",
	"RTXPRO6000WK":   "rtx-pro-6000-blackwell",
	"V100":           "tesla-v100-sxm2-16gb",
}

// multiDieChips: dbgpu reports per-die numbers; B200/B300 are dual-die MCM
// packages, so memory, bandwidth and compute double.
var multiDieChips = map[string]int{
	"GB100": 2,
	"GB110": 2,
}

// archNormalization folds dbgpu architecture variants into canonical names.
var archNormalization = map[string]string{
	"Blackwell 2.0":   "Blackwell",
	"Blackwell Ultra": "Blackwell",
}

// chipNVLinkBandwidthGBs is NVLink bandwidth per chip, from the per-chip
// NVLink generation tables.
var chipNVLinkBandwidthGBs = map[string]float64{
	"GV100": 300,
	"TU102": 100,
	"GA100": 600,
	"GA102": 112.5,
	"GH100": 900,
	"GB100": 1800,
	"GB110": 1800,
}

// noNVLinkBoards carry an NVLink-capable chip but expose no NVLink connector
// (PCIe-only boards, consumer cards, and the Blackwell workstation line).
var noNVLinkBoards = map[string]struct{}{
	"A10": {}, "A10G": {}, "A40": {}, "A4500": {},
	"L40": {}, "L40S": {},
	"RTX4090": {}, "RTX3090": {}, "RTX3090Ti": {},
	"RTX5000Ada": {}, "RTX6000Ada": {},
	"RTX5090": {}, "RTXPRO6000": {}, "RTXPRO6000MaxQ": {}, "RTXPRO6000WK": {}, "RTXPRO4500": {},
}

// fp8ComputeArchitectures get the 2x FP8-over-FP16 compute multiplier.
var fp8ComputeArchitectures = map[string]struct{}{
	"Hopper": {}, "Blackwell": {},
}

// FP8KVCacheArchitectures can hold the KV cache in FP8.
var FP8KVCacheArchitectures = map[string]struct{}{
	"Ada Lovelace": {}, "Hopper": {}, "Blackwell": {},
}

// GPUSpec is the hardware record for one GPU, after die-count correction.
type GPUSpec struct {
	GPUName            string   `json:"gpu_name"`
	MemorySizeGB       float64  `json:"memory_size_gb"`
	FP16TFLOPS         float64  `json:"fp16_tflops"`
	MemoryBandwidthTBs float64  `json:"memory_bandwidth_tb_s"`
	NVLinkBandwidthGBs *float64 `json:"nvlink_bandwidth_gb_s"`
	FP8Multiplier      int      `json:"fp8_multiplier"`
	Architecture       string   `json:"architecture"`
}

// dbgpuRecord is one entry of the dbgpu database file.
type dbgpuRecord struct {
	Slug                       string  `json:"slug"`
	GPUName                    string  `json:"gpu_name"`
	Architecture               string  `json:"architecture"`
	MemorySizeGB               float64 `json:"memory_size_gb"`
	MemoryBandwidthGBs         float64 `json:"memory_bandwidth_gb_s"`
	HalfFloatPerformanceGFLOPs float64 `json:"half_float_performance_gflop_s"`
}

// SpecClient fetches the dbgpu database and resolves curated GPU specs.
type SpecClient struct {
	databaseURL string
	httpClient  *http.Client
	logger      logging.Interface
}

// SpecClientOption customizes a SpecClient.
type SpecClientOption func(*SpecClient)

// WithSpecDatabaseURL overrides the database location.
func WithSpecDatabaseURL(url string) SpecClientOption {
	return func(c *SpecClient) { c.databaseURL = url }
}

// NewSpecClient builds a dbgpu client.
func NewSpecClient(logger logging.Interface, opts ...SpecClientOption) *SpecClient {
	c := &SpecClient{
		databaseURL: DefaultSpecDatabaseURL,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSpecs resolves a GPUSpec for every GPU in GPUNameToDBGPUKey. A GPU
// missing from the database is a hard error, never a silent fallback.
func (c *SpecClient) FetchSpecs(ctx context.Context) ([]GPUSpec, error) {
	records, err := c.fetchDatabase(ctx)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]dbgpuRecord, len(records))
	for _, record := range records {
		bySlug[record.Slug] = record
	}

	names := make([]string, 0, len(GPUNameToDBGPUKey))
	for name := range GPUNameToDBGPUKey {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]GPUSpec, 0, len(names))
	for _, gpuName := range names {
		slug := GPUNameToDBGPUKey[gpuName]
		record, ok := bySlug[slug]
		if !ok {
			return nil, fmt.Errorf(
				"GPU '%s' not found in dbgpu (key='%s'): update GPUNameToDBGPUKey or the database",
				gpuName, slug)
		}
		specs = append(specs, buildSpec(gpuName, record))
	}

	c.logger.Infof("Fetched specs for %d GPUs from dbgpu", len(specs))
	return specs, nil
}

func buildSpec(gpuName string, record dbgpuRecord) GPUSpec {
	memGB := record.MemorySizeGB
	bwTBs := record.MemoryBandwidthGBs / 1000
	fp16TFLOPS := record.HalfFloatPerformanceGFLOPs / 1000

	chip := record.GPUName
	if dieCount := multiDieChips[chip]; dieCount > 1 {
		memGB *= float64(dieCount)
		bwTBs *= float64(dieCount)
		fp16TFLOPS *= float64(dieCount)
	}

	arch := record.Architecture
	if canonical, ok := archNormalization[arch]; ok {
		arch = canonical
	}

	fp8Multiplier := 1
	if _, ok := fp8ComputeArchitectures[arch]; ok {
		fp8Multiplier = 2
	}

	var nvlink *float64
	if _, boardless := noNVLinkBoards[gpuName]; !boardless {
		if bandwidth, ok := chipNVLinkBandwidthGBs[chip]; ok {
			nvlink = &bandwidth
		}
	}

	return GPUSpec{
		GPUName:            gpuName,
		MemorySizeGB:       round1(memGB),
		FP16TFLOPS:         round1(fp16TFLOPS),
		MemoryBandwidthTBs: round3(bwTBs),
		NVLinkBandwidthGBs: nvlink,
		FP8Multiplier:      fp8Multiplier,
		Architecture:       arch,
	}
}

func (c *SpecClient) fetchDatabase(ctx context.Context) ([]dbgpuRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.databaseURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building dbgpu request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching dbgpu database")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching dbgpu database: status %d", resp.StatusCode)
	}

	var records []dbgpuRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &FormatBreakingChangeError{
			Source:  "dbgpu",
			Details: fmt.Sprintf("database is not a JSON array of spec records: %v", err),
		}
	}
	return records, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
