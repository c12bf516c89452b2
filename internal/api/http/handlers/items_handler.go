package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/accounts-service/internal/api/dto"
	"github.com/spec-kit/accounts-service/internal/service"
)

// ItemsHandler exposes item endpoints.
type ItemsHandler struct {
	items *service.ItemService
}

// NewItemsHandler constructs handler.
func NewItemsHandler(itemService *service.ItemService) *ItemsHandler {
	return &ItemsHandler{items: itemService}
}

// List handles GET /api/v1/items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	items, err := h.items.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemListResponse(items)})
}

// Get handles GET /api/v1/items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	item, err := h.items.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Create handles POST /api/v1/items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	owner, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.items.Create(c.UserContext(), owner, req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Update handles PUT /api/v1/items/:id.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	var req dto.ItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.items.Update(c.UserContext(), c.Params("id"), req.Title, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewItemResponse(item)})
}

// Delete handles DELETE /api/v1/items/:id.
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	if err := h.items.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
