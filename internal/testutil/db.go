// Package testutil provides a migrated sqlite database and catalog fixtures
// for service and handler tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/infrastructure/database/postgres"
	"github.com/pawverse/petstore-backend/internal/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB opens a fresh sqlite database in the test's temp dir and runs the
// production migrations against it
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path+"?_busy_timeout=5000"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	migration := postgres.NewMigration(db, logger.Discard())
	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())

	return db
}

// Catalog holds the rows created by SeedCatalog
type Catalog struct {
	Store   catalog.Store
	Dog     catalog.Pet
	Cat     catalog.Pet
	Food    catalog.Product
	Toy     catalog.Product
	FoodCat catalog.ProductCategory
}

// SeedCatalog inserts two pets priced 100.00 and 250.50 and two products
// priced 10.25 and 3.00
func SeedCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()

	c := &Catalog{}
	c.Store = catalog.Store{Name: "Test Store", Address: "1 Test Lane", City: "Pune"}
	require.NoError(t, db.Create(&c.Store).Error)

	dogs := catalog.PetCategory{Name: "Dogs"}
	require.NoError(t, db.Create(&dogs).Error)

	c.Dog = catalog.Pet{Name: "Rex", CategoryID: dogs.ID, Breed: "Beagle", Age: 1, Price: decimal.RequireFromString("100.00"), StoreID: c.Store.ID}
	c.Cat = catalog.Pet{Name: "Tom", CategoryID: dogs.ID, Age: 2, Price: decimal.RequireFromString("250.50"), StoreID: c.Store.ID}
	require.NoError(t, db.Create(&c.Dog).Error)
	require.NoError(t, db.Create(&c.Cat).Error)

	c.FoodCat = catalog.ProductCategory{Name: "Food", PetCategoryID: dogs.ID, Slug: "food-dogs"}
	require.NoError(t, db.Create(&c.FoodCat).Error)

	c.Food = catalog.Product{Name: "Kibble", CategoryID: c.FoodCat.ID, Price: decimal.RequireFromString("10.25"), StoreID: c.Store.ID}
	c.Toy = catalog.Product{Name: "Ball", CategoryID: c.FoodCat.ID, Price: decimal.RequireFromString("3.00"), StoreID: c.Store.ID}
	require.NoError(t, db.Create(&c.Food).Error)
	require.NoError(t, db.Create(&c.Toy).Error)

	return c
}

// UintPtr returns a pointer to v
func UintPtr(v uint) *uint {
	return &v
}
