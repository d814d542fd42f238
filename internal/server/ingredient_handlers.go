package server

import (
	"strings"

	"foodgram/internal/models"

	"github.com/gofiber/fiber/v2"
)

// ListIngredients handles GET /api/ingredients
// @Summary Search ingredients
// @Description Not paginated. `name` matches a prefix, `search` matches anywhere; both are case-insensitive.
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Param search query string false "Name substring"
// @Success 200 {array} models.Ingredient
// @Router /ingredients [get]
func (s *Server) ListIngredients(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("name"))
	search := strings.TrimSpace(c.Query("search"))

	ingredients, err := s.ingredientRepo.Search(c.UserContext(), name, search)
	if err != nil {
		return models.Respond(c, err)
	}
	if ingredients == nil {
		ingredients = []models.Ingredient{}
	}
	return c.JSON(ingredients)
}

// GetIngredient handles GET /api/ingredients/:id
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.ErrorResponse
// @Router /ingredients/{id} [get]
func (s *Server) GetIngredient(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	ingredient, err := s.ingredientRepo.GetByID(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(ingredient)
}
