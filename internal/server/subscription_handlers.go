package server

import (
	"strconv"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// recipesLimit parses ?recipes_limit. Missing or invalid values mean all recipes.
func recipesLimit(c *fiber.Ctx) int {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return -1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// ListSubscriptions handles GET /api/users/subscriptions
// @Summary Authors the current user follows
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} Page[models.SubscriptionEntry]
// @Router /users/subscriptions [get]
func (s *Server) ListSubscriptions(c *fiber.Ctx) error {
	page := s.parsePagination(c)

	entries, total, err := s.subscriptionService.List(c.UserContext(), currentUserID(c), recipesLimit(c), page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(paginate(c, page, entries, total))
}

// Subscribe handles POST /api/users/:id/subscribe
// @Summary Follow an author
// @Tags subscriptions
// @Security TokenAuth
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} models.SubscriptionEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [post]
func (s *Server) Subscribe(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	entry, err := s.subscriptionService.Subscribe(c.UserContext(), currentUserID(c), authorID, recipesLimit(c))
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe
// @Summary Unfollow an author
// @Tags subscriptions
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /users/{id}/subscribe [delete]
func (s *Server) Unsubscribe(c *fiber.Ctx) error {
	authorID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.subscriptionService.Unsubscribe(c.UserContext(), currentUserID(c), authorID); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
