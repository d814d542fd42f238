package service

import (
	"context"
	"sync"

	"foodgram/internal/models"
	"foodgram/internal/notifications"
	"foodgram/internal/repository"
)

type userRepoStub struct {
	getByIDFn            func(context.Context, uint) (*models.User, error)
	getWithCredentialsFn func(context.Context, uint) (*models.User, error)
	getByEmailFn         func(context.Context, string) (*models.User, error)
	getByUsernameFn      func(context.Context, string) (*models.User, error)
	createFn             func(context.Context, *models.User) error
	updatePasswordFn     func(context.Context, uint, string) error
	updateAvatarFn       func(context.Context, uint, *string) error
	listFn               func(context.Context, int, int) ([]models.User, int64, error)
	subscribedToFn       func(context.Context, uint, []uint) (map[uint]bool, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetWithCredentials(ctx context.Context, id uint) (*models.User, error) {
	return s.getWithCredentialsFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) UpdateAvatar(ctx context.Context, id uint, avatar *string) error {
	return s.updateAvatarFn(ctx, id, avatar)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) SubscribedTo(ctx context.Context, subscriberID uint, authorIDs []uint) (map[uint]bool, error) {
	return s.subscribedToFn(ctx, subscriberID, authorIDs)
}

type recipeRepoStub struct {
	createFn            func(context.Context, *models.Recipe) error
	updateFn            func(context.Context, *models.Recipe) error
	deleteFn            func(context.Context, *models.Recipe) error
	getByIDFn           func(context.Context, uint) (*models.Recipe, error)
	getShortFn          func(context.Context, uint) (*models.RecipeShort, error)
	listFn              func(context.Context, repository.RecipeFilter, int, int) ([]models.Recipe, int64, error)
	countByAuthorFn     func(context.Context, uint) (int64, error)
	listShortByAuthorFn func(context.Context, uint, int) ([]models.RecipeShort, error)
	annotateFn          func(context.Context, uint, []models.Recipe) error
}

func (s *recipeRepoStub) Create(ctx context.Context, recipe *models.Recipe) error {
	return s.createFn(ctx, recipe)
}
func (s *recipeRepoStub) Update(ctx context.Context, recipe *models.Recipe) error {
	return s.updateFn(ctx, recipe)
}
func (s *recipeRepoStub) Delete(ctx context.Context, recipe *models.Recipe) error {
	return s.deleteFn(ctx, recipe)
}
func (s *recipeRepoStub) GetByID(ctx context.Context, id uint) (*models.Recipe, error) {
	return s.getByIDFn(ctx, id)
}
func (s *recipeRepoStub) GetShort(ctx context.Context, id uint) (*models.RecipeShort, error) {
	return s.getShortFn(ctx, id)
}
func (s *recipeRepoStub) List(ctx context.Context, filter repository.RecipeFilter, limit, offset int) ([]models.Recipe, int64, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *recipeRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}
func (s *recipeRepoStub) ListShortByAuthor(ctx context.Context, authorID uint, limit int) ([]models.RecipeShort, error) {
	return s.listShortByAuthorFn(ctx, authorID, limit)
}
func (s *recipeRepoStub) Annotate(ctx context.Context, viewerID uint, recipes []models.Recipe) error {
	if s.annotateFn == nil {
		return nil
	}
	return s.annotateFn(ctx, viewerID, recipes)
}

type ingredientRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.Ingredient, error)
	searchFn        func(context.Context, string, string) ([]models.Ingredient, error)
	countExistingFn func(context.Context, []uint) (int64, error)
	upsertManyFn    func(context.Context, []models.Ingredient) (int64, error)
}

func (s *ingredientRepoStub) GetByID(ctx context.Context, id uint) (*models.Ingredient, error) {
	return s.getByIDFn(ctx, id)
}
func (s *ingredientRepoStub) Search(ctx context.Context, name, search string) ([]models.Ingredient, error) {
	return s.searchFn(ctx, name, search)
}
func (s *ingredientRepoStub) CountExisting(ctx context.Context, ids []uint) (int64, error) {
	return s.countExistingFn(ctx, ids)
}
func (s *ingredientRepoStub) UpsertMany(ctx context.Context, items []models.Ingredient) (int64, error) {
	return s.upsertManyFn(ctx, items)
}

type pairRepoStub struct {
	addFn          func(context.Context, uint, uint) error
	removeFn       func(context.Context, uint, uint) error
	shoppingListFn func(context.Context, uint) ([]models.ShoppingListLine, error)
}

func (s *pairRepoStub) Add(ctx context.Context, userID, recipeID uint) error {
	return s.addFn(ctx, userID, recipeID)
}
func (s *pairRepoStub) Remove(ctx context.Context, userID, recipeID uint) error {
	return s.removeFn(ctx, userID, recipeID)
}
func (s *pairRepoStub) ShoppingList(ctx context.Context, userID uint) ([]models.ShoppingListLine, error) {
	return s.shoppingListFn(ctx, userID)
}

type subscriptionRepoStub struct {
	createFn        func(context.Context, uint, uint) error
	deleteFn        func(context.Context, uint, uint) error
	listAuthorsFn   func(context.Context, uint, int, int) ([]models.User, int64, error)
	subscriberIDsFn func(context.Context, uint) ([]uint, error)
}

func (s *subscriptionRepoStub) Create(ctx context.Context, subscriberID, authorID uint) error {
	return s.createFn(ctx, subscriberID, authorID)
}
func (s *subscriptionRepoStub) Delete(ctx context.Context, subscriberID, authorID uint) error {
	return s.deleteFn(ctx, subscriberID, authorID)
}
func (s *subscriptionRepoStub) ListAuthors(ctx context.Context, subscriberID uint, limit, offset int) ([]models.User, int64, error) {
	return s.listAuthorsFn(ctx, subscriberID, limit, offset)
}
func (s *subscriptionRepoStub) SubscriberIDs(ctx context.Context, authorID uint) ([]uint, error) {
	return s.subscriberIDsFn(ctx, authorID)
}

type mediaStub struct {
	saveFn  func(context.Context, string, string) (string, error)
	deleted []string
}

func (s *mediaStub) SaveImage(ctx context.Context, dir, dataURI string) (string, error) {
	if s.saveFn == nil {
		return "/media/" + dir + "/stub.webp", nil
	}
	return s.saveFn(ctx, dir, dataURI)
}
func (s *mediaStub) Delete(url string) error {
	s.deleted = append(s.deleted, url)
	return nil
}

type publishedEvent struct {
	userIDs []uint
	event   notifications.Event
}

type publisherStub struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *publisherStub) PublishEvent(_ context.Context, userIDs []uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userIDs: userIDs, event: ev})
	return nil
}
