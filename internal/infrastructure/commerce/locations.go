// internal/infrastructure/commerce/locations.go
package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/your-org/storefront-gateway/internal/domain/location"
)

// The commerce API serves the administrative location tree as flat lists,
// one request per cascade level.

func (c *Client) Provinces(ctx context.Context) ([]location.Place, error) {
	return c.fetchPlaces(ctx, "/locations/provinces")
}

func (c *Client) Districts(ctx context.Context, provinceID uint) ([]location.Place, error) {
	return c.fetchPlaces(ctx, fmt.Sprintf("/locations/provinces/%d/districts", provinceID))
}

func (c *Client) Wards(ctx context.Context, districtID uint) ([]location.Place, error) {
	return c.fetchPlaces(ctx, fmt.Sprintf("/locations/districts/%d/wards", districtID))
}

func (c *Client) fetchPlaces(ctx context.Context, endpoint string) ([]location.Place, error) {
	body, err := c.makeAPICall(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var places []location.Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, fmt.Errorf("failed to decode location list: %w", err)
	}
	return places, nil
}
