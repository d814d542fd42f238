package cli

import (
	"runtime"

	"foodgram/internal/database"
	"foodgram/internal/repository"
	"foodgram/internal/seed"

	"github.com/spf13/cobra"
)

func (c *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeFn, err := c.db()
			if err != nil {
				return err
			}
			defer closeFn()

			if err := database.Migrate(db); err != nil {
				return err
			}
			c.printf("schema is up to date (%d tables)\n", len(database.PersistentModels()))
			return nil
		},
	}
}

func (c *CLI) newLoadIngredientsCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "load-ingredients",
		Short: "Load the ingredient reference list from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeFn, err := c.db()
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := seed.LoadIngredients(cmd.Context(), repository.NewIngredientRepository(db), path)
			if err != nil {
				return err
			}
			c.printf("loaded %d new ingredients from %s\n", n, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "data/ingredients.yml", "ingredient fixture")
	return cmd
}

func (c *CLI) newSeedCmd() *cobra.Command {
	var (
		spec   seed.DemoSpec
		clean  bool
		random int64
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with demo users, recipes and relations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeFn, err := c.db()
			if err != nil {
				return err
			}
			defer closeFn()

			f := seed.NewFactory(db, seed.Options{Seed: random})
			if clean {
				if err := f.ClearAll(cmd.Context()); err != nil {
					return err
				}
			}
			summary, err := f.Demo(cmd.Context(), spec)
			if err != nil {
				return err
			}
			c.printf("created %d users, %d recipes, %d favorites, %d cart items, %d subscriptions\n",
				summary.Users, summary.Recipes, summary.Favorites, summary.CartItems, summary.Subscriptions)
			c.printf("every demo account uses the password %q\n", seed.DemoPassword)
			return nil
		},
	}
	cmd.Flags().IntVar(&spec.Users, "users", 20, "number of users to create")
	cmd.Flags().IntVar(&spec.RecipesPerUser, "recipes", 3, "recipes per user")
	cmd.Flags().BoolVar(&clean, "clean", false, "delete existing users and recipes first")
	cmd.Flags().Int64Var(&random, "seed", 0, "random seed for reproducible data")
	return cmd
}

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			c.printf("foodgramctl %s (%s %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
