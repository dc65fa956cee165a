// internal/infrastructure/commerce/client.go
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
)

// Client talks to the upstream commerce REST API. It implements the order
// gateway and, via locations.go, the location directory.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a commerce API client from configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.Upstream.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Upstream.Timeout,
		},
	}
}

// PlaceOrder submits an order and decodes the API's envelope. A transport
// failure (no response at all) is reported as a *checkout.ConnectivityError;
// everything else, including HTTP error statuses carrying an envelope, is
// mapped onto the envelope's status/message fields.
func (c *Client) PlaceOrder(ctx context.Context, payload *checkout.OrderPayload) (*checkout.OrderOutcome, error) {
	body, err := c.makeAPICall(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return nil, err
	}

	var outcome checkout.OrderOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}
	return &outcome, nil
}

// makeAPICall performs one HTTP call against the commerce API and returns the
// raw response body. Bodies are returned even for error statuses so callers
// can decode the envelope the API puts there.
func (c *Client) makeAPICall(ctx context.Context, method, endpoint string, data interface{}) ([]byte, error) {
	var reqBody []byte
	if data != nil {
		var err error
		reqBody, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request data: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &checkout.ConnectivityError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &checkout.ConnectivityError{Err: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("commerce API call failed with status %d: %s", resp.StatusCode, respBody)
	}
	return respBody, nil
}
