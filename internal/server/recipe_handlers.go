package server

import (
	"fmt"

	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/service"

	"github.com/gofiber/fiber/v2"
)

const shoppingListFilename = "shopping_cart.txt"

// ListRecipes handles GET /api/recipes
// @Summary List recipes, newest first
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param ingredients query []int false "Ingredient IDs (any match)" collectionFormat(multi)
// @Param is_favorited query int false "1 to list favorites only"
// @Param is_in_shopping_cart query int false "1 to list cart recipes only"
// @Success 200 {object} Page[models.Recipe]
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	page := s.parsePagination(c)
	viewerID := currentUserID(c)

	ingredientIDs, err := queryUints(c, "ingredients")
	if err != nil {
		return models.Respond(c, err)
	}
	filter := repository.RecipeFilter{IngredientIDs: ingredientIDs}
	if raw := c.Query("author"); raw != "" {
		authorID, err := parsePositiveID("author", raw)
		if err != nil {
			return models.Respond(c, err)
		}
		filter.AuthorID = authorID
	}
	if queryFlag(c, "is_favorited") {
		filter.FavoritedBy = viewerID
	}
	if queryFlag(c, "is_in_shopping_cart") {
		filter.InCartOf = viewerID
	}

	recipes, total, err := s.recipeService.List(c.UserContext(), viewerID, filter, page.Limit, page.Offset)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(paginate(c, page, recipes, total))
}

// CreateRecipe handles POST /api/recipes
// @Summary Publish a recipe
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param request body service.CreateRecipeInput true "Recipe"
// @Success 201 {object} models.Recipe
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req service.CreateRecipeInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}

// GetRecipe handles GET /api/recipes/:id
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Recipe
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [get]
func (s *Server) GetRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	recipe, err := s.recipeService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(recipe)
}

// UpdateRecipe handles PATCH and PUT /api/recipes/:id
// @Summary Update a recipe
// @Description Absent fields are kept, except ingredients which are required.
// @Tags recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param request body service.UpdateRecipeInput true "Changes"
// @Success 200 {object} models.Recipe
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [patch]
func (s *Server) UpdateRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdateRecipeInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	recipe, err := s.recipeService.Update(c.UserContext(), currentUserID(c), id, req)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(recipe)
}

// DeleteRecipe handles DELETE /api/recipes/:id
// @Summary Delete a recipe
// @Tags recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id} [delete]
func (s *Server) DeleteRecipe(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.recipeService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetRecipeLink handles GET /api/recipes/:id/get-link
// @Summary Short link to a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} object{short-link=string}
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/get-link [get]
func (s *Server) GetRecipeLink(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	link, err := s.recipeService.ShortLink(c.UserContext(), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.JSON(fiber.Map{"short-link": link})
}

// ShortLinkRedirect handles GET /s/:id
func (s *Server) ShortLinkRedirect(c *fiber.Ctx) error {
	if !s.featureFlags.Enabled(featureflags.ShortLinks, 0) {
		return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Short link", c.Params("id")))
	}
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if _, err := s.recipeRepo.GetShort(c.UserContext(), id); err != nil {
		return models.Respond(c, err)
	}
	return c.Redirect(fmt.Sprintf("%s/recipes/%d", s.config.FrontendURL, id), fiber.StatusFound)
}

// AddFavorite handles POST /api/recipes/:id/favorite
// @Summary Favorite a recipe
// @Tags favorites
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShort
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite [post]
func (s *Server) AddFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	short, err := s.favoriteService.Add(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(short)
}

// RemoveFavorite handles DELETE /api/recipes/:id/favorite
// @Summary Unfavorite a recipe
// @Tags favorites
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes/{id}/favorite [delete]
func (s *Server) RemoveFavorite(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.favoriteService.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AddToShoppingCart handles POST /api/recipes/:id/shopping_cart
// @Summary Add a recipe to the shopping cart
// @Tags shopping cart
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShort
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/{id}/shopping_cart [post]
func (s *Server) AddToShoppingCart(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	short, err := s.cartService.Add(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return models.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(short)
}

// RemoveFromShoppingCart handles DELETE /api/recipes/:id/shopping_cart
// @Summary Remove a recipe from the shopping cart
// @Tags shopping cart
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /recipes/{id}/shopping_cart [delete]
func (s *Server) RemoveFromShoppingCart(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.cartService.Remove(c.UserContext(), currentUserID(c), id); err != nil {
		return models.Respond(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart
// @Summary Download the aggregated shopping list
// @Tags shopping cart
// @Security TokenAuth
// @Produce plain
// @Success 200 {string} string "one `name (unit) - total` line per ingredient"
// @Failure 404 {object} models.ErrorResponse
// @Router /recipes/download_shopping_cart [get]
func (s *Server) DownloadShoppingCart(c *fiber.Ctx) error {
	text, err := s.cartService.DownloadShoppingList(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.Respond(c, err)
	}
	c.Attachment(shoppingListFilename)
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.SendString(text)
}
