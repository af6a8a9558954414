package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postrelay/postrelay/internal/service"
	"github.com/postrelay/postrelay/internal/transfer"
)

type PageHandler struct {
	s service.PageService
}

func NewPageHandler(service service.PageService) *PageHandler {
	return &PageHandler{s: service}
}

func (h *PageHandler) AddPage(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PageCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	id, err := h.s.Add(c.Context(), userID, &pc)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id": id,
	})
}

func (h *PageHandler) ListPages(c *fiber.Ctx) error {
	userID := GetUserID(c)

	pages, err := h.s.List(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list pages",
		})
	}

	return c.Status(fiber.StatusOK).JSON(pages)
}

func (h *PageHandler) RemovePage(c *fiber.Ctx) error {
	userID := GetUserID(c)
	pageID := c.Query("id")

	if err := h.s.Remove(c.Context(), userID, pageID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove page",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
