package gpusource

import (
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgl-project/modelcost/pkg/logging"
)

const catalogHeader = "instance_name,location,price,gpu_count,gpu_name,gpu_memory,spot,gpu_vendor\n"

func newCatalogServer(t *testing.T, catalogs map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for provider, csvBody := range catalogs {
		csvBody := csvBody
		mux.HandleFunc("/"+provider+".csv.gz", func(w http.ResponseWriter, r *http.Request) {
			gz := gzip.NewWriter(w)
			_, _ = gz.Write([]byte(csvBody))
			_ = gz.Close()
		})
	}
	return httptest.NewServer(mux)
}

func newTestPriceClient(server *httptest.Server, providers []string) *PriceClient {
	return NewPriceClient(logging.Discard(),
		WithCatalogURLTemplate(server.URL+"/%s.csv.gz"),
		WithProviders(providers),
	)
}

func TestFetchOfferingsCheapestPerKey(t *testing.T) {
	server := newCatalogServer(t, map[string]string{
		"aws": catalogHeader +
			"p5.48xlarge,us-east-1,98.32,8,H100,80,False,nvidia\n" +
			"p5.48xlarge,eu-west-1,104.50,8,H100,80,False,nvidia\n",
		"runpod": catalogHeader +
			"h100-sxm,us,31.92,8,H100,80,False,nvidia\n" +
			"h100-single,us,3.99,1,H100,80,False,nvidia\n",
	})
	defer server.Close()

	client := newTestPriceClient(server, []string{"aws", "runpod"})
	offerings, metadata, err := client.FetchOfferings(context.Background())
	require.NoError(t, err)

	require.Len(t, offerings, 2)
	// Sorted by (gpu, vram, count): 1x before 8x.
	assert.Equal(t, 1, offerings[0].GPUCount)
	assert.Equal(t, 3.99, offerings[0].PricePerHour)
	assert.Equal(t, 8, offerings[1].GPUCount)
	assert.Equal(t, 31.92, offerings[1].PricePerHour)
	assert.Equal(t, "runpod", offerings[1].Provider)
	assert.Equal(t, 640.0, offerings[1].TotalVRAMGB)

	assert.Equal(t, "gpuhunt", metadata.ServiceName)
	assert.Equal(t, "USD", metadata.Currency)
}

func TestFetchOfferingsFilters(t *testing.T) {
	server := newCatalogServer(t, map[string]string{
		"aws": catalogHeader +
			"spot-h100,us,9.99,1,H100,80,True,nvidia\n" + // spot
			"g4dn,us,0.52,1,T4,16,False,nvidia\n" + // excluded GPU
			"a10-slice,us,0.80,1,A10,8,False,nvidia\n" + // MIG slice below min VRAM
			"mi300,us,4.99,1,MI300X,192,False,amd\n" + // non-NVIDIA
			"l40s,us,1.99,1,L40S,48,False,nvidia\n",
	})
	defer server.Close()

	client := newTestPriceClient(server, []string{"aws"})
	offerings, _, err := client.FetchOfferings(context.Background())
	require.NoError(t, err)

	require.Len(t, offerings, 1)
	assert.Equal(t, "L40S", offerings[0].GPUName)
}

func TestFetchOfferingsBreakingFormat(t *testing.T) {
	server := newCatalogServer(t, map[string]string{
		"aws": "instance_name,location,cost\nfoo,us,1.0\n",
	})
	defer server.Close()

	client := newTestPriceClient(server, []string{"aws"})
	_, _, err := client.FetchOfferings(context.Background())
	require.Error(t, err)

	var breaking *FormatBreakingChangeError
	require.True(t, errors.As(err, &breaking))
	assert.Equal(t, "gpuhunt", breaking.Source)
	assert.Contains(t, breaking.Details, "price")
}

func TestFetchOfferingsMissingProviderSkipped(t *testing.T) {
	server := newCatalogServer(t, map[string]string{
		"aws": catalogHeader + "p5,us,2.0,1,H100,80,False,nvidia\n",
	})
	defer server.Close()

	// "nimbus" has no published catalog; the 404 must not fail the run.
	client := newTestPriceClient(server, []string{"aws", "nimbus"})
	offerings, _, err := client.FetchOfferings(context.Background())
	require.NoError(t, err)
	assert.Len(t, offerings, 1)
}
