// Package gpusource fetches GPU offering prices from the gpuhunt published
// catalogs and GPU hardware specs from the dbgpu (TechPowerUp) database.
package gpusource

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/sgl-project/modelcost/pkg/logging"
)

const (
	// DefaultCatalogURLTemplate is the gpuhunt published catalog location;
	// %s is the provider name.
	DefaultCatalogURLTemplate = "https://dstack-gpu-pricing.s3.eu-west-1.amazonaws.com/v1/%s.csv.gz"

	gpuhuntServiceURL = "https://github.com/dstackai/gpuhunt"
)

// DefaultProviders lists the on-demand cloud providers whose catalogs are
// considered.
var DefaultProviders = []string{
	"aws", "azure", "gcp", "lambdalabs", "runpod", "vastai",
	"cudo", "datacrunch", "nebius", "oci", "vultr",
}

// ExcludedGPUs are not suitable for LLM serving (too little VRAM, old
// architecture, consumer cards).
var ExcludedGPUs = map[string]struct{}{
	"P100":         {},
	"T4":           {},
	"RTX2000Ada":   {},
	"RTX3070":      {},
	"RTX3080":      {},
	"RTX3080Ti":    {},
	"RTX4070Ti":    {},
	"RTX4080":      {},
	"RTX4080SUPER": {},
	"RTX5080":      {},
}

// MinVRAMGB filters out MIG slices and other partial GPUs.
const MinVRAMGB = 16.0

// requiredColumns must all be present in a catalog header; anything else is
// a breaking format change.
var requiredColumns = []string{
	"instance_name", "location", "price", "gpu_count", "gpu_name", "gpu_memory", "spot",
}

// Offering is one priced GPU configuration, cheapest across all providers
// and regions for its (gpu, vram, count) key.
type Offering struct {
	GPUName      string  `json:"gpu_name"`
	VRAMGB       float64 `json:"vram_gb"`
	GPUCount     int     `json:"gpu_count"`
	TotalVRAMGB  float64 `json:"total_vram_gb"`
	PricePerHour float64 `json:"price_per_hour"`
	Currency     string  `json:"currency"`
	Provider     string  `json:"provider"`
	InstanceName string  `json:"instance_name"`
	Location     string  `json:"location"`
	Interconnect *string `json:"interconnect"`
}

// SourceMetadata describes where the offerings came from.
type SourceMetadata struct {
	ServiceName    string    `json:"service_name"`
	ServiceURL     string    `json:"service_url"`
	Description    string    `json:"description"`
	Currency       string    `json:"currency"`
	CurrencySymbol string    `json:"currency_symbol"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PriceClient fetches and aggregates the gpuhunt catalogs.
type PriceClient struct {
	catalogURLTemplate string
	providers          []string
	httpClient         *http.Client
	logger             logging.Interface
	now                func() time.Time
}

// PriceClientOption customizes a PriceClient.
type PriceClientOption func(*PriceClient)

// WithCatalogURLTemplate overrides the catalog location (tests point this at
// a local server).
func WithCatalogURLTemplate(template string) PriceClientOption {
	return func(c *PriceClient) { c.catalogURLTemplate = template }
}

// WithProviders overrides the provider list.
func WithProviders(providers []string) PriceClientOption {
	return func(c *PriceClient) { c.providers = providers }
}

func withClock(now func() time.Time) PriceClientOption {
	return func(c *PriceClient) { c.now = now }
}

// NewPriceClient builds a catalog client.
func NewPriceClient(logger logging.Interface, opts ...PriceClientOption) *PriceClient {
	c := &PriceClient{
		catalogURLTemplate: DefaultCatalogURLTemplate,
		providers:          DefaultProviders,
		httpClient:         &http.Client{Timeout: 60 * time.Second},
		logger:             logger,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type offeringKey struct {
	gpuName  string
	vramGB   float64
	gpuCount int
}

// FetchOfferings downloads every provider catalog, keeps NVIDIA on-demand
// offerings, and returns the cheapest offering per (gpu, vram, count).
// A provider whose catalog is missing (404) is skipped; a catalog whose
// header lost required columns is a FormatBreakingChangeError.
func (c *PriceClient) FetchOfferings(ctx context.Context) ([]Offering, SourceMetadata, error) {
	best := make(map[offeringKey]Offering)

	for _, provider := range c.providers {
		rows, err := c.fetchProviderCatalog(ctx, provider)
		if err != nil {
			return nil, SourceMetadata{}, err
		}
		for _, row := range rows {
			key := offeringKey{row.GPUName, row.VRAMGB, row.GPUCount}
			if current, ok := best[key]; !ok || row.PricePerHour < current.PricePerHour {
				best[key] = row
			}
		}
	}

	keys := make([]offeringKey, 0, len(best))
	for key := range best {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].gpuName != keys[j].gpuName {
			return keys[i].gpuName < keys[j].gpuName
		}
		if keys[i].vramGB != keys[j].vramGB {
			return keys[i].vramGB < keys[j].vramGB
		}
		return keys[i].gpuCount < keys[j].gpuCount
	})

	offerings := make([]Offering, 0, len(keys))
	for _, key := range keys {
		offerings = append(offerings, best[key])
	}

	c.logger.Infof("Found %d GPU offerings from gpuhunt", len(offerings))

	metadata := SourceMetadata{
		ServiceName:    "gpuhunt",
		ServiceURL:     gpuhuntServiceURL,
		Description:    "All regions considered. Throughput values may be underestimated, because interconnect data is missing.",
		Currency:       "USD",
		CurrencySymbol: "$",
		UpdatedAt:      c.now().UTC(),
	}
	return offerings, metadata, nil
}

func (c *PriceClient) fetchProviderCatalog(ctx context.Context, provider string) ([]Offering, error) {
	url := fmt.Sprintf(c.catalogURLTemplate, provider)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "building request for %s catalog", provider)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s catalog", provider)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.WithField("provider", provider).Debug("No published catalog")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s catalog: status %d", provider, resp.StatusCode)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing %s catalog", provider)
	}
	defer func() { _ = gz.Close() }()

	return c.parseCatalog(provider, gz)
}

// parseCatalog reads one provider's CSV, validating the header before
// trusting any row.
func (c *PriceClient) parseCatalog(provider string, r io.Reader) ([]Offering, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s catalog header", provider)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	var missing []string
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &FormatBreakingChangeError{
			Source: "gpuhunt",
			Details: fmt.Sprintf(
				"catalog for %s is missing expected columns: %v. The published catalog format may have changed. Available columns: %v",
				provider, missing, header),
		}
	}

	vendorCol, hasVendor := columns["gpu_vendor"]

	var offerings []Offering
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s catalog", provider)
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		if hasVendor && vendorCol < len(record) {
			vendor := strings.ToLower(strings.TrimSpace(record[vendorCol]))
			if vendor != "" && vendor != "nvidia" {
				continue
			}
		}
		if spot, _ := strconv.ParseBool(field("spot")); spot {
			continue
		}

		gpuName := field("gpu_name")
		if gpuName == "" {
			continue
		}
		if _, excluded := ExcludedGPUs[gpuName]; excluded {
			continue
		}

		gpuCount, err := strconv.Atoi(field("gpu_count"))
		if err != nil || gpuCount < 1 {
			continue
		}
		vramGB, err := strconv.ParseFloat(field("gpu_memory"), 64)
		if err != nil || vramGB < MinVRAMGB {
			continue
		}
		price, err := strconv.ParseFloat(field("price"), 64)
		if err != nil {
			continue
		}

		offerings = append(offerings, Offering{
			GPUName:      gpuName,
			VRAMGB:       vramGB,
			GPUCount:     gpuCount,
			TotalVRAMGB:  vramGB * float64(gpuCount),
			PricePerHour: price,
			Currency:     "USD",
			Provider:     provider,
			InstanceName: field("instance_name"),
			Location:     field("location"),
		})
	}

	return offerings, nil
}
