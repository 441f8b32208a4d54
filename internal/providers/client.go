package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient creates the client shared by every backend. Dialing is bounded
// by the connect timeout and waiting for response headers by the read timeout.
func NewHTTPClient(cfg *Config) *http.Client {
	connect := cfg.ConnectTimeoutDuration()
	read := cfg.ReadTimeoutDuration()

	return &http.Client{
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   connect,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   connect,
			ResponseHeaderTimeout: read,
			MaxIdleConnsPerHost:   cfg.MaxConcurrency,
			IdleConnTimeout:       90 * time.Second,
			ForceAttemptHTTP2:     true,
		},
		Timeout: connect + read,
	}
}

type poster struct {
	client *http.Client
	limit  int64
}

// postJSON sends body to url and returns the response body of a 2xx reply.
// Any other outcome is returned as a Failure.
func (p *poster) postJSON(ctx context.Context, url string, body []byte, headers map[string]string) ([]byte, *Failure) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Failure{Reason: ReasonTransport, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, transportFailure(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.limit+1))
	if err != nil {
		return nil, transportFailure(ctx, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Failure{
			Reason: ReasonStatus,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("api error: %s", truncate(data, 512)),
		}
	}

	if int64(len(data)) > p.limit {
		return nil, &Failure{Reason: ReasonMalformed, Err: fmt.Errorf("response exceeds %d bytes", p.limit)}
	}

	return data, nil
}

func transportFailure(ctx context.Context, err error) *Failure {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Failure{Reason: ReasonTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Failure{Reason: ReasonCanceled, Err: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Failure{Reason: ReasonTimeout, Err: err}
	}

	return &Failure{Reason: ReasonTransport, Err: err}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
