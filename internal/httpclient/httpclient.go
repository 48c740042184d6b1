// Package httpclient builds the outbound client shared by the Gemini and
// Telegram clients.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"time"
)

type Options struct {
	PreferIPv4 bool
	Timeout    time.Duration
	// ResponseHeaderTimeout defaults to Timeout; image generation can take
	// minutes before the first byte arrives.
	ResponseHeaderTimeout time.Duration
}

func New(opts Options) *http.Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}

	headerTimeout := opts.ResponseHeaderTimeout
	if headerTimeout <= 0 || headerTimeout > timeout {
		headerTimeout = timeout
	}

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialContext(dialer, opts.PreferIPv4),
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   15 * time.Second,
		ResponseHeaderTimeout: headerTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// dialContext tries IPv4 first when preferIPv4 is set and falls back to the
// requested network for IPv6-only hosts.
func dialContext(dialer *net.Dialer, preferIPv4 bool) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !preferIPv4 {
			return dialer.DialContext(ctx, network, addr)
		}
		conn, err := dialer.DialContext(ctx, "tcp4", addr)
		if err == nil || ctx.Err() != nil {
			return conn, err
		}
		return dialer.DialContext(ctx, network, addr)
	}
}
