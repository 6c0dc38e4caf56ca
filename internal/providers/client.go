package providers

import (
	"net/http"
	"net/url"

	"github.com/mkravets/erudite/internal/model"
)

// NewHTTPClient builds the HTTP client shared by all provider adapters.
// The timeout is per call; a slow provider times out on its own without
// affecting the others.
func NewHTTPClient(cfg model.HTTPConfig) *http.Client {
	return &http.Client{
		Timeout: cfg.Timeout,
		Transport: &userAgentTransport{
			userAgent: cfg.UserAgent,
			inner: &http.Transport{
				Proxy: newProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy),
			},
		},
	}
}

// userAgentTransport stamps the configured User-Agent on every request.
// Public APIs such as MediaWiki expect a descriptive agent string.
type userAgentTransport struct {
	userAgent string
	inner     http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.inner.RoundTrip(req)
}

// newProxyFunc selects a proxy per request scheme, falling back to the
// standard environment variables when none is configured.
func newProxyFunc(httpProxy, httpsProxy string) func(*http.Request) (*url.URL, error) {
	if httpProxy == "" && httpsProxy == "" {
		return http.ProxyFromEnvironment
	}

	return func(req *http.Request) (*url.URL, error) {
		if req.URL.Scheme == "https" && httpsProxy != "" {
			return url.Parse(httpsProxy)
		}
		if httpProxy != "" {
			return url.Parse(httpProxy)
		}
		return http.ProxyFromEnvironment(req)
	}
}
