package service

import (
	"context"

	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/notifications"
	"foodgram/internal/observability"
	"foodgram/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// FavoriteService toggles recipe bookmarks.
type FavoriteService struct {
	favoriteRepo repository.FavoriteRepository
	recipeRepo   repository.RecipeRepository
	userRepo     repository.UserRepository
	events       eventSink
}

// NewFavoriteService returns a new FavoriteService. publisher may be nil.
func NewFavoriteService(
	favoriteRepo repository.FavoriteRepository,
	recipeRepo repository.RecipeRepository,
	userRepo repository.UserRepository,
	publisher EventPublisher,
	flags *featureflags.Manager,
) *FavoriteService {
	return &FavoriteService{
		favoriteRepo: favoriteRepo,
		recipeRepo:   recipeRepo,
		userRepo:     userRepo,
		events:       eventSink{publisher: publisher, flags: flags},
	}
}

// Add favorites recipeID for userID and notifies the recipe author.
func (s *FavoriteService) Add(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.favoriteRepo.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	observability.RelationToggles.WithLabelValues("favorite", "add").Inc()

	if recipe.AuthorID != userID {
		if user, err := s.userRepo.GetByID(ctx, userID); err == nil {
			s.events.publish(ctx, userID, []uint{recipe.AuthorID}, notifications.NewEvent(
				notifications.EventRecipeFavorited,
				notifications.RecipeFavoritedPayload{
					Recipe: notifications.RecipeRef{ID: recipe.ID, Name: recipe.Name},
					User:   notifications.AuthorRef{ID: user.ID, Username: user.Username},
				},
			))
		}
	}

	short := recipe.Short()
	return &short, nil
}

// Remove drops the bookmark. Removing an absent one is a validation error.
func (s *FavoriteService) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepo.GetShort(ctx, recipeID); err != nil {
		return err
	}
	if err := s.favoriteRepo.Remove(ctx, userID, recipeID); err != nil {
		return err
	}
	observability.RelationToggles.WithLabelValues("favorite", "remove").Inc()
	return nil
}

// CartService toggles shopping cart entries and builds the shopping list.
type CartService struct {
	cartRepo   repository.CartRepository
	recipeRepo repository.RecipeRepository
}

// NewCartService returns a new CartService.
func NewCartService(cartRepo repository.CartRepository, recipeRepo repository.RecipeRepository) *CartService {
	return &CartService{cartRepo: cartRepo, recipeRepo: recipeRepo}
}

// Add puts recipeID into the user's cart.
func (s *CartService) Add(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	short, err := s.recipeRepo.GetShort(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Add(ctx, userID, recipeID); err != nil {
		return nil, err
	}
	observability.RelationToggles.WithLabelValues("shopping_cart", "add").Inc()
	return short, nil
}

// Remove takes recipeID out of the user's cart.
func (s *CartService) Remove(ctx context.Context, userID, recipeID uint) error {
	if _, err := s.recipeRepo.GetShort(ctx, recipeID); err != nil {
		return err
	}
	if err := s.cartRepo.Remove(ctx, userID, recipeID); err != nil {
		return err
	}
	observability.RelationToggles.WithLabelValues("shopping_cart", "remove").Inc()
	return nil
}

// ShoppingList returns the aggregated ingredients of every recipe in the cart.
// An empty cart is reported as not found.
func (s *CartService) ShoppingList(ctx context.Context, userID uint) (_ []models.ShoppingListLine, err error) {
	ctx, span := observability.StartSpan(ctx, "CartService", "ShoppingList", attribute.Int64("user_id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	rows, err := s.cartRepo.ShoppingList(ctx, userID)
	if err != nil {
		return nil, err
	}
	lines := AggregateShoppingList(rows)
	if len(lines) == 0 {
		return nil, &models.AppError{Code: models.CodeNotFound, Message: "Shopping cart is empty"}
	}
	return lines, nil
}

// DownloadShoppingList renders the shopping list as plain text.
func (s *CartService) DownloadShoppingList(ctx context.Context, userID uint) (string, error) {
	lines, err := s.ShoppingList(ctx, userID)
	if err != nil {
		return "", err
	}
	observability.ShoppingListDownloads.Inc()
	return RenderShoppingList(lines), nil
}
