// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"
	"log/slog"
	"strings"

	"foodgram/internal/middleware"
	"foodgram/internal/models"
	"foodgram/internal/repository"
	"foodgram/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the POST /users/ body.
type RegisterInput struct {
	Email     string `json:"email" validate:"required,email,max=254"`
	Username  string `json:"username" validate:"required,max=150,username"`
	FirstName string `json:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" validate:"required,max=150"`
	Password  string `json:"password" validate:"required,max=128"`
}

// SetPasswordInput is the POST /users/set_password/ body.
type SetPasswordInput struct {
	NewPassword     string `json:"new_password" validate:"required"`
	CurrentPassword string `json:"current_password" validate:"required"`
}

// UserService provides registration, authentication and profile logic.
type UserService struct {
	userRepo  repository.UserRepository
	media     MediaStore
	validator *validation.Validator
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository, media MediaStore) *UserService {
	return &UserService{
		userRepo:  userRepo,
		media:     media,
		validator: validation.New(),
	}
}

// Register creates an account after validating the input and uniqueness.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password, in.Username, in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("A user with that email already exists")
	}
	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, models.NewValidationError("A user with that username already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user owning email if password matches.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	invalid := models.NewValidationError("Unable to log in with provided credentials")
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalid
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, invalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, invalid
	}
	return user, nil
}

// Get returns a profile with is_subscribed computed for viewerID.
func (s *UserService) Get(ctx context.Context, viewerID, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flags, err := s.userRepo.SubscribedTo(ctx, viewerID, []uint{id})
	if err != nil {
		return nil, err
	}
	user.IsSubscribed = flags[id]
	return user, nil
}

// List returns a page of users with is_subscribed computed for viewerID.
func (s *UserService) List(ctx context.Context, viewerID uint, limit, offset int) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]uint, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	flags, err := s.userRepo.SubscribedTo(ctx, viewerID, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range users {
		users[i].IsSubscribed = flags[users[i].ID]
	}
	return users, total, nil
}

// SetPassword replaces the password after checking the current one.
func (s *UserService) SetPassword(ctx context.Context, userID uint, in SetPasswordInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	user, err := s.userRepo.GetWithCredentials(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.CurrentPassword)) != nil {
		return models.NewValidationError("current_password: invalid password")
	}
	if err := validation.ValidatePassword(in.NewPassword, user.Username, user.Email); err != nil {
		return models.NewValidationError("new_password: " + err.Error())
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hash))
}

// SetAvatar stores a new avatar image and returns its URL.
func (s *UserService) SetAvatar(ctx context.Context, userID uint, dataURI string) (string, error) {
	if strings.TrimSpace(dataURI) == "" {
		return "", models.NewValidationError("avatar: this field is required")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	url, err := s.media.SaveImage(ctx, AvatarImageDir, dataURI)
	if err != nil {
		return "", err
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, &url); err != nil {
		_ = s.media.Delete(url)
		return "", err
	}
	s.discard(ctx, user.Avatar)
	return url, nil
}

// DeleteAvatar clears the avatar.
func (s *UserService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdateAvatar(ctx, userID, nil); err != nil {
		return err
	}
	s.discard(ctx, user.Avatar)
	return nil
}

func (s *UserService) discard(ctx context.Context, url *string) {
	if url == nil || *url == "" {
		return
	}
	if err := s.media.Delete(*url); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to remove media file", slog.String("url", *url), slog.String("error", err.Error()))
	}
}
