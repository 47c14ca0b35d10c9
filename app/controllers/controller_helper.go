package controllers

import (
	"github.com/gofiber/fiber/v2"
)

// jsonError writes the API error envelope shared by every handler.
func jsonError(c *fiber.Ctx, status int, errorName, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error":   errorName,
		"message": message,
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusBadRequest, "Bad Request", message)
}

func serverError(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusInternalServerError, "Internal Server Error", message)
}

func notFound(c *fiber.Ctx, message string) error {
	return jsonError(c, fiber.StatusNotFound, "Not Found", message)
}

// parsePagination reads page/limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (offset, limit int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit = c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return (page - 1) * limit, limit
}
