package cart

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/storefront-labs/storefront-backend/internal/product"
)

func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				tok := &jwt.Token{Claims: jwt.MapClaims{"user_id": id}}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterRoutes(app)
	return app
}

func newCartApp(t *testing.T) (*fiber.App, *InMemoryRepository) {
	t.Helper()
	catalog := product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Mug", Price: 1000, Stock: 5, Available: true},
		{ID: 2, Name: "Pulled", Price: 500, Stock: 5, Available: false},
	})
	repo := NewInMemoryRepository(catalog)
	handler := NewHandler(NewService(repo, catalog))
	return makeApp(handler), repo
}

func TestAddAndMergeQuantities(t *testing.T) {
	app, _ := newCartApp(t)

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	// same product again merges
	req2 := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":1}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"quantity":3`) {
		t.Fatalf("expected merged quantity 3, got %s", string(b2))
	}
	if !strings.Contains(string(b2), `"subtotal":3000`) {
		t.Fatalf("expected subtotal 3000, got %s", string(b2))
	}

	// decrement below zero removes the line
	req3 := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":-5}`))
	req3.Header.Set("Content-Type", "application/json")
	req3.Header.Set("X-User-ID", "42")
	res3, _ := app.Test(req3)
	b3, _ := io.ReadAll(res3.Body)
	if strings.Contains(string(b3), `"productId":1`) {
		t.Fatalf("expected line removed, got %s", string(b3))
	}
}

func TestUnavailableProductRejected(t *testing.T) {
	app, _ := newCartApp(t)

	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":2,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "42")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unavailable product, got %d", res.StatusCode)
	}
}

func TestAnonymousSessionCart(t *testing.T) {
	app, _ := newCartApp(t)

	// no auth, no session header: a token is minted and returned
	req := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"productId":1,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	token := res.Header.Get(SessionHeader)
	if token == "" {
		t.Fatalf("expected a minted session token")
	}

	// same token sees the same cart
	req2 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req2.Header.Set(SessionHeader, token)
	res2, _ := app.Test(req2)
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"productId":1`) {
		t.Fatalf("session cart lost its item: %s", string(b2))
	}

	// a different token sees an empty cart
	req3 := httptest.NewRequest("GET", "/api/v1/cart", nil)
	req3.Header.Set(SessionHeader, "other-session")
	res3, _ := app.Test(req3)
	b3, _ := io.ReadAll(res3.Body)
	if strings.Contains(string(b3), "productId") {
		t.Fatalf("cart leaked across sessions: %s", string(b3))
	}
}

func TestClearCart(t *testing.T) {
	app, repo := newCartApp(t)
	key := Key{UserID: 9}
	if _, err := repo.AddItem(key, 1, 2); err != nil {
		t.Fatalf("seed cart: %v", err)
	}

	req := httptest.NewRequest("DELETE", "/api/v1/cart", nil)
	req.Header.Set("X-User-ID", "9")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.StatusCode)
	}

	items, _ := repo.Items(key)
	if len(items) != 0 {
		t.Fatalf("expected empty cart after clear, got %d items", len(items))
	}
}
