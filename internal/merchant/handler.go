package merchant

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/uz-pay/uz_pay/internal/ledger"
)

// Handler exposes merchant reference-data administration.
type Handler struct {
	catalog *Catalog
}

// NewHandler constructs a merchant handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{catalog: catalog}
}

type createCategoryRequest struct {
	Name string `json:"name"`
}

type createMerchantRequest struct {
	Name       string `json:"name"`
	CategoryID string `json:"category_id"`
}

// CreateCategory registers a merchant category.
func (h *Handler) CreateCategory(c *fiber.Ctx) error {
	var req createCategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), req.Name)
	if err != nil {
		if errors.Is(err, ledger.ErrStorage) {
			return fiber.NewError(http.StatusInternalServerError, "category could not be stored")
		}
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(category)
}

// CreateMerchant registers a merchant.
func (h *Handler) CreateMerchant(c *fiber.Ctx) error {
	var req createMerchantRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	m, err := h.catalog.CreateMerchant(c.UserContext(), req.Name, req.CategoryID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCategoryNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ledger.ErrStorage):
			return fiber.NewError(http.StatusInternalServerError, "merchant could not be stored")
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(m)
}

// Get returns a merchant by id.
func (h *Handler) Get(c *fiber.Ctx) error {
	m, err := h.catalog.Resolve(c.UserContext(), c.Params("merchantId"))
	if err != nil {
		if errors.Is(err, ErrMerchantNotFound) {
			return fiber.NewError(http.StatusNotFound, err.Error())
		}
		return fiber.NewError(http.StatusInternalServerError, "merchant lookup failed")
	}
	return c.JSON(m)
}
