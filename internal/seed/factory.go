package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"foodgram/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every generated account.
const DemoPassword = "foodgram-demo-2024"

// Options tune the factory.
type Options struct {
	// Seed makes generated content reproducible; zero uses the clock.
	Seed int64
	// SkipBcrypt stores a cheap hash, for tests that never log in.
	SkipBcrypt bool
}

// Factory builds demo users, recipes and relations and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	hash  string
	seq   int
}

// NewFactory creates a Factory bound to db.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed)}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return "", err
	}
	f.hash = string(h)
	return f.hash, nil
}

// CreateUser persists a user with fake profile data. Overrides run before
// the insert.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, fmt.Errorf("hash demo password: %w", err)
	}
	f.seq++
	username := fmt.Sprintf("%s%d", f.faker.Username(), f.seq)
	user := &models.User{
		Email:     fmt.Sprintf("%s@%s", username, f.faker.DomainName()),
		Username:  username,
		FirstName: f.faker.FirstName(),
		LastName:  f.faker.LastName(),
		Password:  hash,
	}
	for _, o := range overrides {
		o(user)
	}
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreateRecipe persists a recipe by author using up to five of the given
// ingredients with random amounts.
func (f *Factory) CreateRecipe(ctx context.Context, author *models.User, pool []models.Ingredient, overrides ...func(*models.Recipe)) (*models.Recipe, error) {
	if len(pool) == 0 {
		return nil, fmt.Errorf("no ingredients to build a recipe from")
	}

	n := f.faker.Number(1, min(5, len(pool)))
	picked := f.faker.Rand.Perm(len(pool))[:n]
	items := make([]models.RecipeIngredient, 0, n)
	for _, idx := range picked {
		items = append(items, models.RecipeIngredient{
			IngredientID: pool[idx].ID,
			Amount:       f.faker.Number(1, 500),
		})
	}

	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        truncate(f.recipeName(), 150),
		Image:       fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
		Text:        f.faker.Paragraph(2, 3, 12, "\n\n"),
		CookingTime: f.faker.Number(5, 180),
		Ingredients: items,
	}
	for _, o := range overrides {
		o(recipe)
	}
	if err := f.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return nil, err
	}
	return recipe, nil
}

func (f *Factory) recipeName() string {
	switch f.faker.Number(0, 4) {
	case 0:
		return f.faker.Breakfast()
	case 1:
		return f.faker.Lunch()
	case 2:
		return f.faker.Dinner()
	case 3:
		return f.faker.Dessert()
	default:
		return f.faker.Snack()
	}
}

// DemoSpec sizes a demo data set.
type DemoSpec struct {
	Users          int
	RecipesPerUser int
}

// DemoSummary counts what Demo created.
type DemoSummary struct {
	Users         int
	Recipes       int
	Favorites     int
	CartItems     int
	Subscriptions int
}

// Demo fills the database with users, their recipes and a random web of
// favorites, cart items and subscriptions. Ingredients must be loaded first.
func (f *Factory) Demo(ctx context.Context, spec DemoSpec) (DemoSummary, error) {
	var summary DemoSummary

	var pool []models.Ingredient
	if err := f.db.WithContext(ctx).Limit(500).Find(&pool).Error; err != nil {
		return summary, err
	}
	if len(pool) == 0 {
		return summary, fmt.Errorf("ingredient table is empty; load ingredients first")
	}

	users := make([]*models.User, 0, spec.Users)
	for i := 0; i < spec.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return summary, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	summary.Users = len(users)

	var recipes []*models.Recipe
	for _, u := range users {
		for j := 0; j < spec.RecipesPerUser; j++ {
			r, err := f.CreateRecipe(ctx, u, pool)
			if err != nil {
				return summary, fmt.Errorf("create recipe: %w", err)
			}
			recipes = append(recipes, r)
		}
	}
	summary.Recipes = len(recipes)

	var (
		favorites []models.Favorite
		cart      []models.ShoppingCartItem
		subs      []models.Subscription
	)
	for _, u := range users {
		for _, r := range recipes {
			if f.faker.Number(1, 100) <= 20 {
				favorites = append(favorites, models.Favorite{UserID: u.ID, RecipeID: r.ID})
			}
			if f.faker.Number(1, 100) <= 10 {
				cart = append(cart, models.ShoppingCartItem{UserID: u.ID, RecipeID: r.ID})
			}
		}
		for _, author := range users {
			if author.ID != u.ID && f.faker.Number(1, 100) <= 30 {
				subs = append(subs, models.Subscription{SubscriberID: u.ID, AuthorID: author.ID})
			}
		}
	}

	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(favorites) > 0 {
			if err := tx.CreateInBatches(&favorites, 500).Error; err != nil {
				return err
			}
		}
		if len(cart) > 0 {
			if err := tx.CreateInBatches(&cart, 500).Error; err != nil {
				return err
			}
		}
		if len(subs) > 0 {
			if err := tx.CreateInBatches(&subs, 500).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return summary, fmt.Errorf("create relations: %w", err)
	}
	summary.Favorites = len(favorites)
	summary.CartItems = len(cart)
	summary.Subscriptions = len(subs)

	log.Printf("seeded %d users, %d recipes, %d favorites, %d cart items, %d subscriptions",
		summary.Users, summary.Recipes, summary.Favorites, summary.CartItems, summary.Subscriptions)
	return summary, nil
}

// ClearAll removes every user-generated row. Ingredients are kept.
func (f *Factory) ClearAll(ctx context.Context) error {
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{
			&models.Favorite{},
			&models.ShoppingCartItem{},
			&models.Subscription{},
			&models.RecipeIngredient{},
			&models.Recipe{},
			&models.User{},
		} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
