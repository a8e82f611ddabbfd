// Package netutil holds the HTTP client setup shared by the provider clients.
package netutil

import (
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds every provider call.
const DefaultTimeout = 30 * time.Second

// UserAgent is sent to providers that reject bare Go clients.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// NewHTTPClient creates a client with a bounded timeout and optional proxy.
// An unparseable proxy URL is ignored.
func NewHTTPClient(timeout time.Duration, proxyURL string) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
