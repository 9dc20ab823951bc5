package db

import (
	"fmt"

	"omnichat/internal/config"
	"omnichat/pkg/models"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase creates a new database connection
func NewDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.Port,
		cfg.SSLMode,
		cfg.TimeZone,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	}

	gdb, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return gdb, nil
}

// RunMigrations runs GORM AutoMigrate plus the custom constraints the
// identity/conversation mappings rely on
func RunMigrations(gdb *gorm.DB) error {
	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn().Err(err).Msg("Could not create uuid-ossp extension")
	}

	if err := gdb.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to run GORM AutoMigrate: %w", err)
	}

	if err := createCustomIndexes(gdb); err != nil {
		log.Warn().Err(err).Msg("Failed to create some custom indexes")
	}

	return nil
}

func createCustomIndexes(gdb *gorm.DB) error {
	indexes := []string{
		// Conversation listing is always scoped per tenant+user and ordered by recency
		`CREATE INDEX IF NOT EXISTS idx_conversations_tenant_user ON conversations(tenant_id, user_id, updated_at DESC)`,

		// Message replay for a conversation is ordered by insertion time
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at ASC)`,

		// One enabled integration per tenant+platform is looked up on every webhook
		`CREATE INDEX IF NOT EXISTS idx_integrations_tenant_platform ON integrations(tenant_id, platform) WHERE enabled = true`,
	}

	for _, idx := range indexes {
		if err := gdb.Exec(idx).Error; err != nil {
			log.Warn().Err(err).Str("index", idx).Msg("Failed to create index")
		}
	}

	return nil
}
