package cart

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/storefront-labs/storefront-backend/internal/user"
)

var (
	ErrInvalidKey      = errors.New("cart key must have a user or a session token")
	ErrProductNotFound = errors.New("product not found or unavailable")
)

// SessionHeader carries the anonymous cart token. The handler mints a token
// on first use and echoes it back so the client can keep the cart.
const SessionHeader = "X-Cart-Session"

// Key identifies a cart: either an authenticated user or an anonymous
// session token, never both.
type Key struct {
	UserID       int
	SessionToken string
}

func (k Key) valid() bool {
	return (k.UserID != 0) != (k.SessionToken != "")
}

// Item is a cart line enriched with catalog details.
type Item struct {
	ProductID int    `json:"productId"`
	Name      string `json:"productName"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

// KeyFromCtx resolves the cart key for a request: the JWT user when present,
// otherwise the session token header. A missing token is minted and set on
// the response so anonymous carts survive across requests.
func KeyFromCtx(c *fiber.Ctx) Key {
	if userID, err := user.GetUserIDFromCtx(c); err == nil {
		return Key{UserID: userID}
	}

	token := c.Get(SessionHeader)
	if token == "" {
		token = uuid.NewString()
	}
	c.Set(SessionHeader, token)
	return Key{SessionToken: token}
}
