package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/models"
)

type StorageType string

const (
	StorageTypeSQLite   StorageType = "sqlite"
	StorageTypePostgres StorageType = "postgres"
	StorageTypeInMemory StorageType = "inMemory"
)

type FactoryConfig struct {
	StorageType  StorageType
	PostgresDSN  *string
	SqliteDBPath *string
}

// NewConnectionFactory открывает хранилище нужного типа и прогоняет миграции.
// Возвращает *gorm.DB для sqlite/postgres и *MemoryStorage для inMemory.
func NewConnectionFactory(ctx context.Context, config FactoryConfig) (any, error) {
	switch config.StorageType {
	case StorageTypePostgres:
		if config.PostgresDSN == nil || *config.PostgresDSN == "" {
			return nil, errors.New("postgres dsn is empty")
		}
		conn, err := NewPostgres(ctx, *config.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres connection: %w", err)
		}
		return conn, nil
	case StorageTypeSQLite:
		if config.SqliteDBPath == nil || *config.SqliteDBPath == "" {
			return nil, errors.New("sqlite db path is empty")
		}
		conn, err := NewSQLite(ctx, *config.SqliteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite connection: %w", err)
		}
		return conn, nil
	case StorageTypeInMemory:
		return NewMemStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", config.StorageType)
	}
}

// Migrate создает или обновляет схему `links`.
func Migrate(ctx context.Context, conn *gorm.DB) error {
	if err := conn.WithContext(ctx).AutoMigrate(&models.Link{}); err != nil {
		return fmt.Errorf("migrating sql: %w", err)
	}
	return nil
}

// Close закрывает соединение, если хранилище его держит.
func Close(conn any) error {
	gormDB, ok := conn.(*gorm.DB)
	if !ok {
		return nil
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err = sqlDB.Close(); err != nil {
		return fmt.Errorf("close sql db: %w", err)
	}
	return nil
}
