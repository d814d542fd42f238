package repository

import (
	"context"

	"foodgram/internal/models"

	"gorm.io/gorm"
)

// SubscriptionRepository stores follow relations between users.
type SubscriptionRepository interface {
	Create(ctx context.Context, subscriberID, authorID uint) error
	Delete(ctx context.Context, subscriberID, authorID uint) error
	ListAuthors(ctx context.Context, subscriberID uint, limit, offset int) ([]models.User, int64, error)
	SubscriberIDs(ctx context.Context, authorID uint) ([]uint, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, subscriberID, authorID uint) error {
	sub := models.Subscription{SubscriberID: subscriberID, AuthorID: authorID}
	if err := r.db.WithContext(ctx).Create(&sub).Error; err != nil {
		switch {
		case isUniqueConstraintError(err):
			return models.NewConflictError("You are already subscribed to this user")
		case isCheckConstraintError(err):
			return models.NewConflictError("You cannot subscribe to yourself")
		case isForeignKeyError(err):
			return models.NewNotFoundError("User", authorID)
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, authorID uint) error {
	res := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND author_id = ?", subscriberID, authorID).
		Delete(&models.Subscription{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewValidationError("You are not subscribed to this user")
	}
	return nil
}

// ListAuthors returns the users followed by subscriberID, oldest subscription first.
func (r *subscriptionRepository) ListAuthors(ctx context.Context, subscriberID uint, limit, offset int) ([]models.User, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.Subscription{}).Where("subscriber_id = ?", subscriberID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	users := []models.User{}
	if total == 0 {
		return users, 0, nil
	}
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.*").
		Joins("JOIN subscriptions s ON s.author_id = users.id").
		Where("s.subscriber_id = ?", subscriberID).
		Order("s.id ASC").
		Limit(limit).Offset(offset).
		Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	for i := range users {
		users[i].IsSubscribed = true
	}
	return users, total, nil
}

func (r *subscriptionRepository) SubscriberIDs(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("author_id = ?", authorID).
		Pluck("subscriber_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
