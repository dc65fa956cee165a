// internal/interfaces/http/handlers/handlers_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-gateway/internal/config"
	"github.com/your-org/storefront-gateway/internal/domain/cart"
	"github.com/your-org/storefront-gateway/internal/domain/checkout"
	"github.com/your-org/storefront-gateway/internal/domain/location"
)

type stubDirectory struct{}

func (stubDirectory) Provinces(context.Context) ([]location.Place, error) {
	return []location.Place{{ID: 1, Name: "Hanoi"}}, nil
}

func (stubDirectory) Districts(context.Context, uint) ([]location.Place, error) {
	return []location.Place{{ID: 10, Name: "Hoan Kiem"}}, nil
}

func (stubDirectory) Wards(context.Context, uint) ([]location.Place, error) {
	return []location.Place{{ID: 100, Name: "Hang Bac"}}, nil
}

type stubGateway struct{}

func (stubGateway) PlaceOrder(context.Context, *checkout.OrderPayload) (*checkout.OrderOutcome, error) {
	return &checkout.OrderOutcome{Status: true}, nil
}

// testRouter wires the handlers against in-memory stores with a fixed
// session, bypassing the cookie middleware.
func testRouter(t *testing.T) (*gin.Engine, *cart.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.Upstream.CartPageURL = "https://shop.example.com/cart"
	cfg.Upstream.Timeout = time.Second

	cartService := cart.NewServiceWithStores(cart.NewMemoryStore(), cart.NewMemoryStore())
	checkoutService := checkout.NewService(
		cartService,
		checkout.NewMemoryWizardStore(),
		stubDirectory{},
		stubGateway{},
		checkout.NewMemoryLocker(),
		log,
	)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("owner_ref", cart.OwnerRef{SessionID: "test-session"})
	})

	cartHandler := NewCartHandler(cartService)
	r.GET("/cart", cartHandler.GetCart)
	r.POST("/cart/items", cartHandler.AddItem)
	r.PUT("/cart/items", cartHandler.UpdateItem)
	r.DELETE("/cart/items", cartHandler.RemoveItem)
	r.DELETE("/cart", cartHandler.ClearCart)
	r.GET("/cart/count", cartHandler.GetCount)

	checkoutHandler := NewCheckoutHandler(checkoutService, stubDirectory{}, cfg)
	r.GET("/checkout", checkoutHandler.Begin)

	return r, cartService
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartEndpoints(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": 1, "name": "Shirt", "unit_price": "150000",
		"size": "M", "color": "red", "quantity": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("AddItem status = %d, body = %s", w.Code, w.Body)
	}

	// Same variant merges, different size stays separate.
	doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": 1, "name": "Shirt", "unit_price": "150000",
		"size": "M", "color": "red", "quantity": 1,
	})
	doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": 1, "name": "Shirt", "unit_price": "150000",
		"size": "L", "color": "red", "quantity": 1,
	})

	w = doJSON(t, r, http.MethodGet, "/cart/count", nil)
	var countResp struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &countResp); err != nil {
		t.Fatalf("failed to decode count: %v", err)
	}
	if countResp.Data.Count != 4 {
		t.Errorf("count = %d, want 4", countResp.Data.Count)
	}

	// Quantity below one clamps to one.
	w = doJSON(t, r, http.MethodPut, "/cart/items", gin.H{
		"product_id": 1, "size": "M", "color": "red", "quantity": -3,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("UpdateItem status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/cart/items", gin.H{
		"product_id": 1, "size": "L", "color": "red",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("RemoveItem status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/cart/count", nil)
	json.Unmarshal(w.Body.Bytes(), &countResp)
	if countResp.Data.Count != 1 {
		t.Errorf("count after clamp and remove = %d, want 1", countResp.Data.Count)
	}

	if w := doJSON(t, r, http.MethodDelete, "/cart", nil); w.Code != http.StatusOK {
		t.Fatalf("ClearCart status = %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/cart/count", nil)
	json.Unmarshal(w.Body.Bytes(), &countResp)
	if countResp.Data.Count != 0 {
		t.Errorf("count after clear = %d, want 0", countResp.Data.Count)
	}
}

func TestAddItemRejectsBadPayloads(t *testing.T) {
	r, _ := testRouter(t)

	for name, body := range map[string]gin.H{
		"zero quantity": {"product_id": 1, "name": "Shirt", "unit_price": "150000", "quantity": 0},
		"missing name":  {"product_id": 1, "unit_price": "150000", "quantity": 1},
		"bad price":     {"product_id": 1, "name": "Shirt", "unit_price": "abc", "quantity": 1},
	} {
		if w := doJSON(t, r, http.MethodPost, "/cart/items", body); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, w.Code)
		}
	}
}

func TestCheckoutRedirectsEmptyCart(t *testing.T) {
	r, _ := testRouter(t)

	w := doJSON(t, r, http.MethodGet, "/checkout", nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("Begin with empty cart status = %d, want 303", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "https://shop.example.com/cart" {
		t.Errorf("redirect location = %q", loc)
	}
}

func TestCheckoutBeginWithItems(t *testing.T) {
	r, _ := testRouter(t)

	doJSON(t, r, http.MethodPost, "/cart/items", gin.H{
		"product_id": 1, "name": "Shirt", "unit_price": "150000", "quantity": 1,
	})

	w := doJSON(t, r, http.MethodGet, "/checkout", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Begin status = %d, body = %s", w.Code, w.Body)
	}

	var resp struct {
		Data struct {
			Step      int              `json:"step"`
			Provinces []location.Place `json:"provinces"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode state: %v", err)
	}
	if resp.Data.Step != 1 {
		t.Errorf("step = %d, want 1", resp.Data.Step)
	}
	if len(resp.Data.Provinces) != 1 {
		t.Errorf("provinces = %v, want the loaded list", resp.Data.Provinces)
	}
}
