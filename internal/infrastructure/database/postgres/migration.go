// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/your-org/wishlist-backend/internal/domain/user"
	"github.com/your-org/wishlist-backend/internal/domain/wishlist"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("🔄 Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		&user.User{},
		&wishlist.Wishlist{},
		&wishlist.WishlistItem{},
		&wishlist.Reservation{},
		&wishlist.Contribution{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("✅ Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance. The unique
// index on reservations.wishlist_item_id backs the one-reservation-per-item
// invariant under concurrent writers.
func (m *Migration) CreateIndexes() error {
	log.Println("🔄 Creating additional database indexes...")

	indexes := []string{
		// Capability lookups: every secret resolves via an index scan
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlists_slug ON wishlists(slug)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_wishlists_creator_secret ON wishlists(creator_secret)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_reserver_secret ON reservations(reserver_secret)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_contributions_contributor_secret ON contributions(contributor_secret)",

		// At most one live reservation per item
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_wishlist_item ON reservations(wishlist_item_id)",

		// Projection loads
		"CREATE INDEX IF NOT EXISTS idx_wishlist_items_wishlist_sort ON wishlist_items(wishlist_id, sort_order)",
		"CREATE INDEX IF NOT EXISTS idx_contributions_wishlist_item ON contributions(wishlist_item_id)",

		// Dashboard
		"CREATE INDEX IF NOT EXISTS idx_wishlists_user_created ON wishlists(user_id, created_at DESC)",

		// User lookups
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email)",
		"CREATE INDEX IF NOT EXISTS idx_users_password_reset_token ON users(password_reset_token)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("⚠️ Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("✅ Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("📊 Database Tables Information:")
	log.Println("================================")

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count

		status := "✅"
		if count == 0 {
			status = "📭"
		}

		log.Printf("%s %-25s | %d records", status, table, count)
	}

	log.Println("================================")
	log.Printf("📈 Total records across all tables: %d", totalRecords)
	log.Printf("🗂️ Total tables: %d", len(tables))

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("⚠️ WARNING: Dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"contributions",
		"reservations",
		"wishlist_items",
		"wishlists",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("⚠️ Failed to drop table %s: %v", table, err)
		} else {
			log.Printf("🗑️ Dropped table: %s", table)
		}
	}

	log.Println("✅ All tables dropped successfully")
	return nil
}
