package collector

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"StockLens/internal/netutil"
)

const DefaultRateLimit = 5 // requests per second

// httpProvider is the transport shared by the HTTP fetchers.
type httpProvider struct {
	baseURL string
	timeout time.Duration
	proxy   string
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger
}

// Option configures an HTTP fetcher.
type Option func(*httpProvider)

// WithBaseURL overrides the provider base URL. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(p *httpProvider) {
		if u != "" {
			p.baseURL = u
		}
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(p *httpProvider) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRateLimit caps requests per second.
func WithRateLimit(rps int) Option {
	return func(p *httpProvider) {
		if rps > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(rps), rps)
		}
	}
}

// WithProxy routes requests through proxyURL.
func WithProxy(proxyURL string) Option {
	return func(p *httpProvider) { p.proxy = proxyURL }
}

// WithHTTPClient replaces the HTTP client; timeout and proxy are then ignored.
func WithHTTPClient(c *http.Client) Option {
	return func(p *httpProvider) { p.client = c }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *httpProvider) { p.log = l }
}

func newHTTPProvider(name, baseURL string, opts []Option) httpProvider {
	p := httpProvider{
		baseURL: baseURL,
		timeout: netutil.DefaultTimeout,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&p)
	}
	if p.client == nil {
		p.client = netutil.NewHTTPClient(p.timeout, p.proxy)
	}
	p.log = p.log.With().Str("component", name).Logger()
	return p
}
