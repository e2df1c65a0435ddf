package hfsource

import (
	"net"
	"net/http"
	"sync"
	"time"
)

var (
	sharedHTTPClient *http.Client
	clientOnce       sync.Once
)

// getHTTPClient returns the shared pooled HTTP client. All catalog fetches
// reuse the same transport so repeated requests to the same host keep their
// connections alive.
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		transport := &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     20,
			IdleConnTimeout:     90 * time.Second,

			ForceAttemptHTTP2: true,

			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,

			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}

		sharedHTTPClient = &http.Client{
			Transport: transport,
			// Per-request timeouts come from the request context.
			Timeout: 0,
		}
	})

	return sharedHTTPClient
}
