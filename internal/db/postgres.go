package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/draftdeck-backend/internal/domain"
	"github.com/yungbote/draftdeck-backend/internal/platform/envutil"
	"github.com/yungbote/draftdeck-backend/internal/platform/logger"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	host := envutil.Str("POSTGRES_HOST", "localhost")
	port := envutil.Str("POSTGRES_PORT", "5432")
	user := envutil.Str("POSTGRES_USER", "postgres")
	password := envutil.Str("POSTGRES_PASSWORD", "")
	name := envutil.Str("POSTGRES_NAME", "draftdeck")

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, name)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := gdb.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB { return s.db }

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&domain.Organization{},
		&domain.SourceContent{},
		&domain.Chunk{},
		&domain.Content{},
		&domain.ContentVersion{},
		&domain.Conversation{},
		&domain.ConversationMessage{},
		&domain.ConversationLog{},
	)
	if err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}

	// Partial unique indexes backing the (org, source_type, external_id)
	// identity classes; NULL external_id is its own class.
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_source_content_identity
			ON source_content (organization_id, source_type, external_id)
			WHERE external_id IS NOT NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_source_content_identity_null
			ON source_content (organization_id, source_type)
			WHERE external_id IS NULL;`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_chunk_source_index
			ON chunk (source_content_id, chunk_index);`,
	}
	for _, stmt := range stmts {
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Index migration failed", "error", err)
			return err
		}
	}
	return nil
}
