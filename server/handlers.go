package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	todo "github.com/sicko7947/todo-go"
)

// itemRequest is the body of POST /add and PUT /update/:id.
// Pointers let a missing field be told apart from a zero value.
type itemRequest struct {
	Title    *string `json:"title"`
	Quantity *uint32 `json:"quantity"`
}

// bindItem decodes the request body. Bodies that are not JSON, have a
// wrongly typed field or lack title or quantity are rejected.
func bindItem(c fiber.Ctx) (todo.ItemInput, error) {
	var req itemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return todo.ItemInput{}, todo.NewInvalidInputError("invalid request body")
	}
	if req.Title == nil {
		return todo.ItemInput{}, todo.NewInvalidInputError("missing field: title")
	}
	if req.Quantity == nil {
		return todo.ItemInput{}, todo.NewInvalidInputError("missing field: quantity")
	}

	return todo.ItemInput{
		Title:    *req.Title,
		Quantity: *req.Quantity,
	}, nil
}

// respondError maps a bind or service error to its status and plain-text body.
// Storage failures get the generic failMsg so driver details never reach clients.
func respondError(c fiber.Ctx, err error, notFoundMsg, failMsg string) error {
	switch {
	case todo.IsInvalidInput(err):
		msg := "invalid request body"
		var se *todo.StoreError
		if errors.As(err, &se) {
			msg = se.Message
		}
		return c.Status(fiber.StatusBadRequest).SendString(msg)
	case todo.IsNotFound(err) && notFoundMsg != "":
		return c.Status(fiber.StatusNotFound).SendString(notFoundMsg)
	default:
		return c.Status(fiber.StatusInternalServerError).SendString(failMsg)
	}
}

// handleHealth reports liveness and the configured backend
func (h *Handler) handleHealth(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"backend": h.backend.String(),
	})
}

// handleListItems returns every item
func (h *Handler) handleListItems(c fiber.Ctx) error {
	items, err := h.svc.ListItems(c.Context())
	if err != nil {
		return respondError(c, err, "", "Failed to fetch items")
	}

	return c.JSON(items)
}

// handleGetItem returns one item by id
func (h *Handler) handleGetItem(c fiber.Ctx) error {
	item, err := h.svc.GetItem(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Todo item not found", "Failed to fetch item")
	}

	return c.JSON(item)
}

// handleAddItem creates an item
func (h *Handler) handleAddItem(c fiber.Ctx) error {
	input, err := bindItem(c)
	if err != nil {
		return respondError(c, err, "", "Failed to add item")
	}

	item, err := h.svc.CreateItem(c.Context(), input)
	if err != nil {
		return respondError(c, err, "", "Failed to add item")
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// handleUpdateItem replaces title and quantity and returns the updated item
func (h *Handler) handleUpdateItem(c fiber.Ctx) error {
	input, err := bindItem(c)
	if err != nil {
		return respondError(c, err, "Item not found", "Failed to update item")
	}

	item, err := h.svc.UpdateItem(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err, "Item not found", "Failed to update item")
	}

	return c.JSON(item)
}

// handleDeleteItem removes an item
func (h *Handler) handleDeleteItem(c fiber.Ctx) error {
	if err := h.svc.DeleteItem(c.Context(), c.Params("id")); err != nil {
		return respondError(c, err, "Item not found", "Failed to delete item")
	}

	return c.SendString("Item deleted successfully")
}
