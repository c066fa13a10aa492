package product

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/storefront-labs/storefront-backend/internal/user"
)

// Handler delegates product operations to the product service. Seller routes
// consult the user service to enforce the seller role.
type Handler struct {
	service     *Service
	userService user.ServiceInterface
}

func NewHandler(s *Service, us user.ServiceInterface) *Handler {
	return &Handler{service: s, userService: us}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/seller/products", h.listSellerProducts)
	app.Post("/api/v1/products", h.createProduct)
	app.Put("/api/v1/products/:id<[0-9]+>", h.updateProduct)
	app.Delete("/api/v1/products/:id<[0-9]+>", h.deleteProduct)
}

type productRequest struct {
	CategoryID  int    `json:"categoryId,omitempty"`
	Name        string `json:"productName"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Stock       int    `json:"stock"`
	Available   bool   `json:"available"`
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	categoryID, _ := strconv.Atoi(c.Query("category"))
	return c.JSON(h.service.ListAvailable(categoryID))
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil || !p.Available {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	return c.JSON(p)
}

func (h *Handler) listSellerProducts(c *fiber.Ctx) error {
	sellerID, err := h.requireSeller(c)
	if err != nil {
		return err
	}
	return c.JSON(h.service.ListBySeller(sellerID))
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	sellerID, err := h.requireSeller(c)
	if err != nil {
		return err
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	now := time.Now().UTC().Format(time.RFC3339)
	created, err := h.service.Create(sellerID, Product{
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Available:   payload.Available,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	sellerID, err := h.requireSeller(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	updated, err := h.service.Update(sellerID, id, Product{
		CategoryID:  payload.CategoryID,
		Name:        payload.Name,
		Slug:        payload.Slug,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		Available:   payload.Available,
		UpdatedAt:   time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		case ErrForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not your product"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	sellerID, err := h.requireSeller(c)
	if err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid id"})
	}

	if err := h.service.Delete(sellerID, id); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		case ErrForbidden:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "not your product"})
		case ErrProductInUse:
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "product has order history"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// requireSeller resolves the caller and checks the seller role. The returned
// error is a fiber error ready to be returned from the handler.
func (h *Handler) requireSeller(c *fiber.Ctx) (int, error) {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return 0, fiber.ErrUnauthorized
	}

	u, err := h.userService.GetByID(userID)
	if err != nil {
		return 0, fiber.ErrUnauthorized
	}
	if u.Role != user.RoleSeller {
		return 0, fiber.NewError(fiber.StatusForbidden, "seller role required")
	}
	return userID, nil
}
