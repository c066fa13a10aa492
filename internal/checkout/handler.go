package checkout

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/order"
	"github.com/storefront-labs/storefront-backend/internal/payment"
	"github.com/storefront-labs/storefront-backend/internal/user"
)

// Handler exposes checkout and payment-session retry. Checkout works for
// both authenticated users and anonymous carts; retry requires the order's
// owner, so it lives on the protected routes.
type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout", h.checkout)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders/:id<[0-9]+>/pay", h.retryPayment)
}

type checkoutResponse struct {
	order.Order
	Total       int64  `json:"total"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

func (h *Handler) checkout(c *fiber.Ctx) error {
	payload := new(ShippingDetails)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	o, redirectURL, err := h.service.Checkout(c.Context(), cart.KeyFromCtx(c), *payload)
	if err != nil {
		var stockErr *InsufficientStockError
		switch {
		case errors.Is(err, ErrInvalidShipping), errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		case errors.As(err, &stockErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":   stockErr.Error(),
				"productId": stockErr.ProductID,
				"available": stockErr.Available,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(checkoutResponse{
		Order:       o,
		Total:       order.TotalCost(o),
		RedirectURL: redirectURL,
	})
}

func (h *Handler) retryPayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	redirectURL, err := h.service.RetryPaymentSession(c.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "order not found"})
		case errors.Is(err, ErrNotPayable):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": err.Error()})
		case errors.Is(err, payment.ErrGateway):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "payment provider unavailable"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(fiber.Map{"orderId": id, "redirectUrl": redirectURL})
}
