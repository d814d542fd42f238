package database

import (
	"testing"

	"foodgram/internal/config"
	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestConfigurePool(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		name    string
		wantErr bool
	}{
		{"postgres", "postgres", false},
		{"", "postgres", false},
		{"sqlite", "sqlite", false},
		{"mysql", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := Dialector(&config.Config{DBDriver: tt.driver, DBSQLitePath: ":memory:"})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "foodgram.db?_foreign_keys=on", SQLiteDSN(""))
	assert.Equal(t, "file::memory:?cache=shared&_foreign_keys=on", SQLiteDSN("file::memory:?cache=shared"))
}

func TestOpenSQLiteMigratesEveryModel(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m), "missing table for %T", m)
	}
}

func TestSQLiteEnforcesConstraints(t *testing.T) {
	db, err := OpenSQLite(":memory:")
	require.NoError(t, err)

	author := models.User{Email: "a@example.org", Username: "author", FirstName: "A", LastName: "B", Password: "x"}
	require.NoError(t, db.Create(&author).Error)

	t.Run("cooking time check", func(t *testing.T) {
		err := db.Create(&models.Recipe{AuthorID: author.ID, Name: "Tea", Text: "Boil", CookingTime: 0}).Error
		assert.Error(t, err)
	})

	t.Run("self subscription check", func(t *testing.T) {
		err := db.Create(&models.Subscription{SubscriberID: author.ID, AuthorID: author.ID}).Error
		assert.Error(t, err)
	})

	t.Run("cascade on user delete", func(t *testing.T) {
		recipe := models.Recipe{AuthorID: author.ID, Name: "Soup", Text: "Stir", CookingTime: 5}
		require.NoError(t, db.Create(&recipe).Error)
		require.NoError(t, db.Delete(&models.User{}, author.ID).Error)

		var count int64
		require.NoError(t, db.Model(&models.Recipe{}).Count(&count).Error)
		assert.Zero(t, count)
	})
}
