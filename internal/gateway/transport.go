package gateway

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"

	"github.com/unkn0wn-root/grammarviz/internal/errdef"
)

// The client talks to a single analysis host, and stepping fires short
// bursts of small requests at it.
const (
	dialTimeout      = 10 * time.Second
	handshakeTimeout = 10 * time.Second
	idleConns        = 4
	idleTimeout      = 90 * time.Second
)

func (c *Client) buildHTTPClient(opts Options) (*http.Client, error) {
	proxy, err := proxyFunc(opts.ProxyURL)
	if err != nil {
		return nil, err
	}
	dialer := &net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}
	tr := &http.Transport{
		Proxy:               proxy,
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: handshakeTimeout,
		MaxIdleConns:        idleConns,
		MaxIdleConnsPerHost: idleConns,
		IdleConnTimeout:     idleTimeout,
		ForceAttemptHTTP2:   true,
	}
	if opts.InsecureSkipVerify {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // --insecure
	}
	if opts.HTTP2 {
		if err := http2.ConfigureTransport(tr); err != nil {
			return nil, errdef.Wrap(errdef.CodeHTTP, err, "configure http2")
		}
	}
	return &http.Client{Transport: tr, Timeout: opts.Timeout}, nil
}

func proxyFunc(raw string) (func(*http.Request) (*url.URL, error), error) {
	if raw == "" {
		return http.ProxyFromEnvironment, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		if err == nil {
			err = errdef.New(errdef.CodeConfig, "missing host")
		}
		return nil, errdef.Wrap(errdef.CodeConfig, err, "proxy url %q", raw)
	}
	return http.ProxyURL(u), nil
}
