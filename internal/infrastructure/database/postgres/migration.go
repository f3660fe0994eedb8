// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/pawverse/petstore-backend/internal/domain/booking"
	"github.com/pawverse/petstore-backend/internal/domain/cart"
	"github.com/pawverse/petstore-backend/internal/domain/catalog"
	"github.com/pawverse/petstore-backend/internal/domain/order"
	"github.com/pawverse/petstore-backend/internal/domain/review"
	"github.com/pawverse/petstore-backend/internal/domain/user"
	"github.com/pawverse/petstore-backend/internal/domain/wishlist"
	"github.com/pawverse/petstore-backend/internal/pkg/slug"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("🔄 Running database auto-migrations...")

	// dependency order
	models := []interface{}{
		&user.User{},

		&catalog.Store{},
		&catalog.PetCategory{},
		&catalog.Pet{},
		&catalog.ProductCategory{},
		&catalog.Product{},

		&cart.Cart{},
		&cart.CartLine{},

		&order.Order{},

		&wishlist.WishlistEntry{},

		&review.Review{},

		&booking.Service{},
		&booking.ServiceCenter{},
		&booking.Booking{},
	}

	for _, model := range models {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates the ownership constraints and additional indexes.
// Constraint failures abort; plain index failures are only logged.
func (m *Migration) CreateIndexes() error {
	m.logger.Info("🔄 Creating additional database indexes...")

	// Partial unique indexes: one line per item per owner scope, one cart
	// per session token and per user.
	constraints := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_lines_user_item ON cart_lines(user_id, item_type, item_id) WHERE user_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_cart_lines_cart_item ON cart_lines(cart_id, item_type, item_id) WHERE cart_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_session_token ON carts(session_token) WHERE session_token IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_user ON carts(user_id) WHERE user_id IS NOT NULL",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlist_entries_user_item ON wishlist_entries(user_id, item_type, item_id)",
	}

	for _, stmt := range constraints {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create constraint index: %w", err)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_cart_lines_status ON cart_lines(status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_method_status ON orders(payment_method, payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_pets_price ON pets(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings(booking_date, booking_time)",
		"CREATE INDEX IF NOT EXISTS idx_services_display_order ON services(display_order, title)",
		"CREATE INDEX IF NOT EXISTS idx_pet_reviews_pet_approved ON pet_reviews(pet_id, approved, created_at DESC)",
	}

	successCount := 0
	failCount := 0
	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			m.logger.WithError(err).Warn("⚠️ Failed to create index")
			failCount++
		} else {
			successCount++
		}
	}

	m.logger.Infof("✅ Created %d indexes successfully (%d failed)", successCount+len(constraints), failCount)
	return nil
}

// SeedInitialData inserts a small development catalog
func (m *Migration) SeedInitialData() error {
	m.logger.Info("🌱 Seeding initial data...")

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := m.seedCatalog(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	if err := m.seedServices(); err != nil {
		return fmt.Errorf("failed to seed services: %w", err)
	}

	m.logger.Info("✅ Initial data seeded successfully")
	return nil
}

func (m *Migration) seedAdminUser() error {
	var count int64
	m.db.Model(&user.User{}).Where("email = ?", "admin@pawverse.local").Count(&count)
	if count > 0 {
		m.logger.Info("⏭️ Admin user already exists")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin12345"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := user.User{
		Email:     "admin@pawverse.local",
		Password:  string(hashed),
		FirstName: "Store",
		LastName:  "Admin",
		IsActive:  true,
		IsAdmin:   true,
	}
	if err := m.db.Create(&admin).Error; err != nil {
		return err
	}

	m.logger.Info("✅ Created admin user: admin@pawverse.local (password: admin12345)")
	return nil
}

func (m *Migration) seedCatalog() error {
	var count int64
	m.db.Model(&catalog.Store{}).Count(&count)
	if count > 0 {
		m.logger.Info("⏭️ Catalog already seeded")
		return nil
	}

	return m.db.Transaction(func(tx *gorm.DB) error {
		store := catalog.Store{Name: "Pawverse Indiranagar", Address: "12 100 Feet Road", City: "Bengaluru", ContactPhone: "+91 80 4000 1234"}
		if err := tx.Create(&store).Error; err != nil {
			return err
		}

		dogs := catalog.PetCategory{Name: "Dogs"}
		cats := catalog.PetCategory{Name: "Cats"}
		birds := catalog.PetCategory{Name: "Birds"}
		for _, c := range []*catalog.PetCategory{&dogs, &cats, &birds} {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		pets := []catalog.Pet{
			{Name: "Bruno", CategoryID: dogs.ID, Breed: "Golden Retriever", Age: 0.5, Price: decimal.RequireFromString("25000.00"), StoreID: store.ID, Description: "Playful and vaccinated."},
			{Name: "Misty", CategoryID: cats.ID, Breed: "Persian", Age: 1, Price: decimal.RequireFromString("18000.00"), StoreID: store.ID, Description: "Calm indoor cat."},
			{Name: "Kiwi", CategoryID: birds.ID, Breed: "Budgerigar", Age: 0.3, Price: decimal.RequireFromString("1500.00"), StoreID: store.ID, Description: "Chirpy and hand-tamed."},
		}
		if err := tx.Create(&pets).Error; err != nil {
			return err
		}

		food := catalog.ProductCategory{Name: "Food", PetCategoryID: dogs.ID, Slug: slug.Make("Food " + dogs.Name)}
		toys := catalog.ProductCategory{Name: "Toys", PetCategoryID: cats.ID, Slug: slug.Make("Toys " + cats.Name)}
		for _, c := range []*catalog.ProductCategory{&food, &toys} {
			if err := tx.Create(c).Error; err != nil {
				return err
			}
		}

		products := []catalog.Product{
			{Name: "Puppy Kibble 3kg", CategoryID: food.ID, Price: decimal.RequireFromString("899.00"), StoreID: store.ID, Description: "Chicken and rice formula."},
			{Name: "Feather Wand", CategoryID: toys.ID, Price: decimal.RequireFromString("249.50"), StoreID: store.ID, Description: "Interactive teaser toy."},
		}
		if err := tx.Create(&products).Error; err != nil {
			return err
		}

		m.logger.Infof("✅ Seeded %d pets and %d products", len(pets), len(products))
		return nil
	})
}

func (m *Migration) seedServices() error {
	var count int64
	m.db.Model(&booking.Service{}).Count(&count)
	if count > 0 {
		m.logger.Info("⏭️ Services already seeded")
		return nil
	}

	services := []booking.Service{
		{Title: "Grooming", Description: "Bath, trim and nail care.", IconClass: "fas fa-cut", DisplayOrder: 1},
		{Title: "Veterinary Checkup", Description: "General health examination.", IconClass: "fas fa-stethoscope", DisplayOrder: 2},
		{Title: "Training", Description: "Obedience sessions for dogs.", IconClass: "fas fa-dog", DisplayOrder: 3},
	}
	for i := range services {
		services[i].Slug = slug.Make(services[i].Title)
	}
	if err := m.db.Create(&services).Error; err != nil {
		return err
	}

	center := booking.ServiceCenter{Name: "Pawverse Care Center", Address: "45 Residency Road, Bengaluru", Latitude: 12.9716, Longitude: 77.5946}
	if err := m.db.Create(&center).Error; err != nil {
		return err
	}

	m.logger.Infof("✅ Seeded %d services and 1 service center", len(services))
	return nil
}

// GetTableInfo logs the row count of every table
func (m *Migration) GetTableInfo() error {
	tables, err := m.db.Migrator().GetTables()
	if err != nil {
		return err
	}

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}
		m.logger.Infof("%s %-25s | %d records", status, table, count)
	}

	m.logger.Infof("📈 Total records across %d tables: %d", len(tables), totalRecords)
	return nil
}

// DropAllTables drops every application table
func (m *Migration) DropAllTables() error {
	m.logger.Warn("⚠️ WARNING: Dropping all database tables...")

	tables := []string{
		"bookings", "service_centers", "services",
		"pet_reviews", "wishlist_entries", "orders", "cart_lines", "carts",
		"products", "product_categories", "pets", "pet_categories", "stores",
		"users",
	}
	for _, table := range tables {
		if err := m.db.Migrator().DropTable(table); err != nil {
			m.logger.WithError(err).Warnf("⚠️ Failed to drop table %s", table)
		} else {
			m.logger.Infof("🗑️ Dropped table: %s", table)
		}
	}

	return nil
}
