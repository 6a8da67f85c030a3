package quoting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// ErrMalformedResponse is returned for a payload without a usable price.
var ErrMalformedResponse = errors.New("malformed pricing response")

// HTTPClient calls the pricing service recalculation endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client for the endpoint at url.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Recalculate posts the request and decodes the result.
func (c *HTTPClient) Recalculate(ctx context.Context, req Request) (Result, error) {
	body, err := json.Marshal(newWireRequest(req))
	if err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, err
	}

	var decoded recalculateResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if resp.StatusCode != http.StatusOK || !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return Result{}, fmt.Errorf("pricing service refused recalculation (status %d): %s", resp.StatusCode, msg)
	}

	price, ok := parseNumber(decoded.NewPrice)
	if !ok || price <= 0 {
		return Result{}, fmt.Errorf("%w: newPrice missing or not positive", ErrMalformedResponse)
	}

	distance, ok := parseNumber(decoded.DistanceKm)
	if !ok {
		distance, ok = parseNumber(decoded.Distance)
	}
	if !ok || distance < 0 {
		return Result{}, fmt.Errorf("%w: distance missing", ErrMalformedResponse)
	}

	return Result{
		DistanceKm: distance,
		NewPrice:   int64(math.Round(price)),
	}, nil
}
