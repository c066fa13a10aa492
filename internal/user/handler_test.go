package user

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

func makeApp(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	// fake auth middleware for protected routes: take user id from header
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				tok := &jwt.Token{Claims: jwt.MapClaims{"user_id": id}}
				c.Locals("user", tok)
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func TestRegisterAndLogin(t *testing.T) {
	repo := NewInMemoryRepository(nil)
	handler := NewHandler(NewService(repo))
	app := makeApp(handler)

	body := `{"email":"jane@example.com","password":"secret123","firstName":"Jane","lastName":"Doe","phone":"555-0101"}`
	req := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on sign-up, got %d", res.StatusCode)
	}

	var created User
	b, _ := io.ReadAll(res.Body)
	if err := json.Unmarshal(b, &created); err != nil {
		t.Fatalf("invalid sign-up response: %v", err)
	}
	if created.Password != "" {
		t.Fatalf("password must not be returned")
	}
	if created.Role != RoleBuyer {
		t.Fatalf("expected default role buyer, got %q", created.Role)
	}

	// duplicate email rejected
	req2 := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res2.StatusCode)
	}

	// login with wrong password rejected
	req3 := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"jane@example.com","password":"wrong"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", res3.StatusCode)
	}

	// correct login succeeds
	req4 := httptest.NewRequest("POST", "/api/v1/sign-in", strings.NewReader(`{"email":"jane@example.com","password":"secret123"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for login, got %d", res4.StatusCode)
	}
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), "token") {
		t.Fatalf("expected token in login response: %s", string(b4))
	}
}

func TestProfileUpdate(t *testing.T) {
	repo := NewInMemoryRepository([]User{{ID: 7, Email: "s@example.com", FirstName: "Sam", LastName: "Lee", Role: RoleSeller}})
	handler := NewHandler(NewService(repo))
	app := makeApp(handler)

	req := httptest.NewRequest("GET", "/api/v1/profile", nil)
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("PATCH", "/api/v1/profile", strings.NewReader(`{"address":"1 Main St","city":"Springfield"}`))
	req2.Header.Set("Content-Type", "application/json")
	req2.Header.Set("X-User-ID", "7")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 on profile update, got %d", res2.StatusCode)
	}

	updated, err := repo.GetByID(7)
	if err != nil {
		t.Fatalf("user disappeared: %v", err)
	}
	if updated.Address != "1 Main St" || updated.City != "Springfield" {
		t.Fatalf("profile not updated: %+v", updated)
	}
	if updated.Role != RoleSeller {
		t.Fatalf("role must survive profile update, got %q", updated.Role)
	}
}
