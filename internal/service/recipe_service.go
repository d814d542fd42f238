package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"foodgram/internal/config"
	"foodgram/internal/featureflags"
	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/notifications"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// CreateRecipeInput is the POST /recipes/ body.
type CreateRecipeInput struct {
	Ingredients []validation.IngredientAmount `json:"ingredients"`
	Image       string                        `json:"image" validate:"required"`
	Name        string                        `json:"name" validate:"required,max=150"`
	Text        string                        `json:"text" validate:"required"`
	CookingTime int                           `json:"cooking_time"`
}

// UpdateRecipeInput is the PATCH and PUT /recipes/{id}/ body. Absent fields
// keep their stored value except ingredients, which are mandatory.
type UpdateRecipeInput struct {
	Ingredients *[]validation.IngredientAmount `json:"ingredients"`
	Image       *string                        `json:"image"`
	Name        *string                        `json:"name" validate:"omitempty,max=150"`
	Text        *string                        `json:"text"`
	CookingTime *int                           `json:"cooking_time"`
}

// RecipeService owns recipe validation, ownership checks and publishing.
type RecipeService struct {
	recipeRepo     repository.RecipeRepository
	ingredientRepo repository.IngredientRepository
	subRepo        repository.SubscriptionRepository
	media          MediaStore
	events         eventSink
	validator      *validation.Validator

	cookingTimeMax int
	amountMax      int
	shortLinkBase  string
}

// NewRecipeService returns a new RecipeService. publisher may be nil.
func NewRecipeService(
	cfg *config.Config,
	recipeRepo repository.RecipeRepository,
	ingredientRepo repository.IngredientRepository,
	subRepo repository.SubscriptionRepository,
	media MediaStore,
	publisher EventPublisher,
	flags *featureflags.Manager,
) *RecipeService {
	s := &RecipeService{
		recipeRepo:     recipeRepo,
		ingredientRepo: ingredientRepo,
		subRepo:        subRepo,
		media:          media,
		events:         eventSink{publisher: publisher, flags: flags},
		validator:      validation.New(),
		cookingTimeMax: config.DefaultCookingTimeMax,
		amountMax:      config.DefaultAmountMax,
	}
	if cfg != nil {
		s.cookingTimeMax = cfg.EffectiveCookingTimeMax()
		s.amountMax = cfg.EffectiveAmountMax()
		s.shortLinkBase = cfg.ShortLinkBase
	}
	return s
}

// Create validates in, stores the image and publishes the recipe for authorID.
func (s *RecipeService) Create(ctx context.Context, authorID uint, in CreateRecipeInput) (_ *models.Recipe, err error) {
	ctx, span := observability.StartSpan(ctx, "RecipeService", "Create", attribute.Int64("author_id", int64(authorID)))
	defer func() { observability.EndSpan(span, err) }()

	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateCookingTime(in.CookingTime, s.cookingTimeMax); err != nil {
		return nil, err
	}
	if err := s.checkIngredients(ctx, in.Ingredients); err != nil {
		return nil, err
	}

	image, err := s.media.SaveImage(ctx, RecipeImageDir, in.Image)
	if err != nil {
		return nil, err
	}

	recipe := &models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		CookingTime: in.CookingTime,
		Image:       image,
		Ingredients: toRecipeIngredients(in.Ingredients),
	}
	if err := s.recipeRepo.Create(ctx, recipe); err != nil {
		_ = s.media.Delete(image)
		return nil, err
	}
	observability.RecipesPublished.Inc()

	created, err := s.Get(ctx, authorID, recipe.ID)
	if err != nil {
		return nil, err
	}
	s.announce(ctx, created)
	return created, nil
}

// Update applies a partial update. Only the author may edit a recipe.
func (s *RecipeService) Update(ctx context.Context, userID, recipeID uint, in UpdateRecipeInput) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe.AuthorID != userID {
		return nil, models.NewForbiddenError("You can only edit your own recipes")
	}

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if in.Ingredients == nil {
		return nil, models.NewValidationError("ingredients: this field is required")
	}
	if err := s.checkIngredients(ctx, *in.Ingredients); err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("name: this field may not be blank")
		}
		recipe.Name = name
	}
	if in.Text != nil {
		if strings.TrimSpace(*in.Text) == "" {
			return nil, models.NewValidationError("text: this field may not be blank")
		}
		recipe.Text = *in.Text
	}
	if in.CookingTime != nil {
		if err := validation.ValidateCookingTime(*in.CookingTime, s.cookingTimeMax); err != nil {
			return nil, err
		}
		recipe.CookingTime = *in.CookingTime
	}

	oldImage := recipe.Image
	if in.Image != nil && *in.Image != "" {
		image, err := s.media.SaveImage(ctx, RecipeImageDir, *in.Image)
		if err != nil {
			return nil, err
		}
		recipe.Image = image
	}
	recipe.Ingredients = toRecipeIngredients(*in.Ingredients)

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		if recipe.Image != oldImage {
			_ = s.media.Delete(recipe.Image)
		}
		return nil, err
	}
	if recipe.Image != oldImage {
		s.discard(ctx, oldImage)
	}
	return s.Get(ctx, userID, recipeID)
}

// Delete removes a recipe owned by userID.
func (s *RecipeService) Delete(ctx context.Context, userID, recipeID uint) error {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	if recipe.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own recipes")
	}
	if err := s.recipeRepo.Delete(ctx, recipe); err != nil {
		return err
	}
	s.discard(ctx, recipe.Image)
	return nil
}

// Get returns a recipe annotated for viewerID (0 for anonymous).
func (s *RecipeService) Get(ctx context.Context, viewerID, recipeID uint) (*models.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	one := []models.Recipe{*recipe}
	if err := s.recipeRepo.Annotate(ctx, viewerID, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// List returns a filtered page of recipes, newest first. Viewer-relative
// filters are dropped for anonymous callers.
func (s *RecipeService) List(ctx context.Context, viewerID uint, filter repository.RecipeFilter, limit, offset int) ([]models.Recipe, int64, error) {
	if viewerID == 0 {
		filter.FavoritedBy = 0
		filter.InCartOf = 0
	}
	recipes, total, err := s.recipeRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if err := s.recipeRepo.Annotate(ctx, viewerID, recipes); err != nil {
		return nil, 0, err
	}
	return recipes, total, nil
}

// ShortLink returns the public short URL of an existing recipe.
func (s *RecipeService) ShortLink(ctx context.Context, recipeID uint) (string, error) {
	if _, err := s.recipeRepo.GetShort(ctx, recipeID); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/s/%d", s.shortLinkBase, recipeID), nil
}

func (s *RecipeService) checkIngredients(ctx context.Context, items []validation.IngredientAmount) error {
	if err := validation.ValidateIngredients(items, s.amountMax); err != nil {
		return err
	}
	found, err := s.ingredientRepo.CountExisting(ctx, validation.IngredientIDs(items))
	if err != nil {
		return err
	}
	if found != int64(len(items)) {
		return models.NewValidationError("ingredients: unknown ingredient")
	}
	return nil
}

func (s *RecipeService) announce(ctx context.Context, recipe *models.Recipe) {
	subscribers, err := s.subRepo.SubscriberIDs(ctx, recipe.AuthorID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to load subscribers",
			slog.Uint64("author_id", uint64(recipe.AuthorID)),
			slog.String("error", err.Error()),
		)
		return
	}
	s.events.publish(ctx, recipe.AuthorID, subscribers, notifications.NewEvent(
		notifications.EventRecipePublished,
		notifications.RecipePublishedPayload{
			Recipe: recipe.Short(),
			Author: notifications.AuthorRef{ID: recipe.Author.ID, Username: recipe.Author.Username},
		},
	))
}

func (s *RecipeService) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.media.Delete(url); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove media file", slog.String("url", url), slog.String("error", err.Error()))
	}
}

func toRecipeIngredients(items []validation.IngredientAmount) []models.RecipeIngredient {
	rows := make([]models.RecipeIngredient, len(items))
	for i, it := range items {
		rows[i] = models.RecipeIngredient{IngredientID: it.ID, Amount: it.Amount}
	}
	return rows
}
