package service

import (
	"context"

	"foodgram/internal/featureflags"
	"foodgram/internal/models"
	"foodgram/internal/notifications"
	"foodgram/internal/observability"
	"foodgram/internal/repository"
)

// SubscriptionService manages follow relations between users.
type SubscriptionService struct {
	subRepo    repository.SubscriptionRepository
	userRepo   repository.UserRepository
	recipeRepo repository.RecipeRepository
	events     eventSink
}

// NewSubscriptionService returns a new SubscriptionService. publisher may be nil.
func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	recipeRepo repository.RecipeRepository,
	publisher EventPublisher,
	flags *featureflags.Manager,
) *SubscriptionService {
	return &SubscriptionService{
		subRepo:    subRepo,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		events:     eventSink{publisher: publisher, flags: flags},
	}
}

// Subscribe makes subscriberID follow authorID and returns the author entry
// with up to recipesLimit recipes (negative means all).
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID, authorID uint, recipesLimit int) (*models.SubscriptionEntry, error) {
	if subscriberID == authorID {
		return nil, models.NewConflictError("You cannot subscribe to yourself")
	}
	author, err := s.userRepo.GetByID(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if err := s.subRepo.Create(ctx, subscriberID, authorID); err != nil {
		return nil, err
	}
	observability.RelationToggles.WithLabelValues("subscription", "add").Inc()

	if subscriber, err := s.userRepo.GetByID(ctx, subscriberID); err == nil {
		s.events.publish(ctx, subscriberID, []uint{authorID}, notifications.NewEvent(
			notifications.EventNewSubscriber,
			notifications.NewSubscriberPayload{
				Subscriber: notifications.AuthorRef{ID: subscriber.ID, Username: subscriber.Username},
			},
		))
	}

	author.IsSubscribed = true
	entry, err := s.entry(ctx, *author, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Unsubscribe removes the follow relation. A missing relation is a validation error.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID, authorID uint) error {
	if _, err := s.userRepo.GetByID(ctx, authorID); err != nil {
		return err
	}
	if err := s.subRepo.Delete(ctx, subscriberID, authorID); err != nil {
		return err
	}
	observability.RelationToggles.WithLabelValues("subscription", "remove").Inc()
	return nil
}

// List returns a page of the authors subscriberID follows.
func (s *SubscriptionService) List(ctx context.Context, subscriberID uint, recipesLimit, limit, offset int) ([]models.SubscriptionEntry, int64, error) {
	authors, total, err := s.subRepo.ListAuthors(ctx, subscriberID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	entries := make([]models.SubscriptionEntry, 0, len(authors))
	for _, author := range authors {
		entry, err := s.entry(ctx, author, recipesLimit)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	return entries, total, nil
}

func (s *SubscriptionService) entry(ctx context.Context, author models.User, recipesLimit int) (models.SubscriptionEntry, error) {
	count, err := s.recipeRepo.CountByAuthor(ctx, author.ID)
	if err != nil {
		return models.SubscriptionEntry{}, err
	}
	recipes := []models.RecipeShort{}
	if recipesLimit != 0 {
		limit := recipesLimit
		if limit < 0 {
			limit = 0
		}
		recipes, err = s.recipeRepo.ListShortByAuthor(ctx, author.ID, limit)
		if err != nil {
			return models.SubscriptionEntry{}, err
		}
		if recipes == nil {
			recipes = []models.RecipeShort{}
		}
	}
	return models.SubscriptionEntry{User: author, Recipes: recipes, RecipesCount: count}, nil
}
