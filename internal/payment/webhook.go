package payment

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/storefront-labs/storefront-backend/internal/order"
)

// EventPaymentCompleted is the only event type the handler acts on; anything
// else is acknowledged and ignored.
const EventPaymentCompleted = "payment.completed"

// Event is the gateway's webhook payload.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		OrderID    int    `json:"order_id"`
		PaymentRef string `json:"payment_ref"`
	} `json:"data"`
}

// OrderLedger is the slice of the order service the webhook needs.
type OrderLedger interface {
	MarkPaid(id int, paymentRef string) (bool, error)
	GetByID(id int) (order.Order, error)
}

// ConfirmationSender dispatches the buyer's order confirmation.
type ConfirmationSender interface {
	SendOrderConfirmation(to string, o order.Order) error
}

// WebhookHandler reconciles asynchronous payment events with the order
// ledger. Deliveries may arrive more than once and concurrently; MarkPaid's
// compare-and-set collapses them to one effective transition.
type WebhookHandler struct {
	orders OrderLedger
	sender ConfirmationSender
	secret []byte
}

func NewWebhookHandler(orders OrderLedger, sender ConfirmationSender, secret []byte) *WebhookHandler {
	return &WebhookHandler{orders: orders, sender: sender, secret: secret}
}

func (h *WebhookHandler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/webhook", h.handleEvent)
}

func (h *WebhookHandler) handleEvent(c *fiber.Ctx) error {
	body := c.Body()

	if !VerifySignature(h.secret, body, c.Get(SignatureHeader)) {
		log.Printf("webhook: invalid signature from %s", c.IP())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid signature"})
	}

	var evt Event
	if err := json.Unmarshal(body, &evt); err != nil {
		log.Printf("webhook: malformed payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "malformed payload"})
	}

	if evt.Type != EventPaymentCompleted {
		return c.JSON(fiber.Map{"received": true})
	}

	transitioned, err := h.orders.MarkPaid(evt.Data.OrderID, evt.Data.PaymentRef)
	if err != nil {
		switch err {
		case order.ErrNotFound:
			// stale or tampered reference: report failure so the gateway
			// redelivers once the order exists
			log.Printf("webhook: order %d not found for event %s", evt.Data.OrderID, evt.ID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "order not found"})
		case order.ErrInvalidTransition:
			// payment completed for a canceled order; retrying can never
			// succeed, so acknowledge and alert
			log.Printf("webhook: ALERT payment %s completed for canceled order %d", evt.Data.PaymentRef, evt.Data.OrderID)
			return c.JSON(fiber.Map{"received": true})
		default:
			log.Printf("webhook: processing event %s failed: %v", evt.ID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "processing failed"})
		}
	}

	if transitioned {
		h.sendConfirmation(evt.Data.OrderID)
	}

	return c.JSON(fiber.Map{"received": true})
}

// sendConfirmation runs only on the first paid transition. A dispatch
// failure is logged and swallowed: the payment is already committed.
func (h *WebhookHandler) sendConfirmation(orderID int) {
	o, err := h.orders.GetByID(orderID)
	if err != nil {
		log.Printf("webhook: load order %d for confirmation: %v", orderID, err)
		return
	}
	if err := h.sender.SendOrderConfirmation(o.Email, o); err != nil {
		log.Printf("webhook: confirmation for order %d failed: %v", orderID, err)
	}
}
