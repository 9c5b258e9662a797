package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// ClientConfig holds the settings of a client making a single outbound request.
type ClientConfig struct {
	// Timeout covers the whole exchange: dialing, TLS, sending and reading the response.
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// NewClient returns a client that does not keep connections around,
// the process exits after one request.
func NewClient(c ClientConfig) *http.Client {
	return &http.Client{
		Transport: newTransport(c),
		Timeout:   c.Timeout,
	}
}

func newTransport(c ClientConfig) *http.Transport {
	dialTimeout := 30 * time.Second
	if c.Timeout > 0 && c.Timeout < dialTimeout {
		dialTimeout = c.Timeout
	}
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: dialTimeout,
		}).DialContext,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: c.InsecureSkipVerify},
		TLSHandshakeTimeout:   dialTimeout,
		DisableKeepAlives:     true,
		ForceAttemptHTTP2:     true,
		ExpectContinueTimeout: 1 * time.Second,
	}
}
