package monitor

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tanq16/speedtest/internal/utils"
)

// Source is anything a session can download as one ordered byte stream.
// Open returns the body and its expected length, or -1 when unknown.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, int64, error)
	String() string
}

// HTTPSource downloads with a plain GET, normally against the generator's
// /gen/<size> endpoint.
type HTTPSource struct {
	URL    string
	client utils.HTTPDoer
}

func NewHTTPSource(url string, cfg utils.HTTPClientConfig) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		client: utils.NewSpeedtestHTTPClient(cfg),
	}
}

func (h *HTTPSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("error creating GET request: %w", err)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing GET request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return resp.Body, resp.ContentLength, nil
}

func (h *HTTPSource) String() string {
	return h.URL
}
