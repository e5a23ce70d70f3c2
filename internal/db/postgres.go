package db

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgres открывает подключение к PostgreSQL (драйвер pgx) и прогоняет миграции.
//
// Параметры:
//   - ctx: контекст выполнения
//   - dsn: строка подключения к базе данных (Data Source Name)
//
// Возвращает:
//   - *gorm.DB: подключение
//   - error: ошибка создания подключения
func NewPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	// пока не будем ничего усложнять, а сделаем миграцию прямо здесь
	if err = Migrate(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return conn, nil
}
