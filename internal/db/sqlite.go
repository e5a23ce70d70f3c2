package db

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqliteParams блокировка на запись берется сразу при BEGIN, так что транзакции не упираются
// в апгрейд блокировки, а конкурентные писатели ждут до 5 секунд вместо SQLITE_BUSY.
const sqliteParams = "_busy_timeout=5000&_txlock=immediate"

func NewSQLite(ctx context.Context, dbPath string) (*gorm.DB, error) {
	conn, connErr := connectSQLite(dbPath)
	if connErr != nil {
		return nil, fmt.Errorf("init database error: %w", connErr)
	}
	if migrateErr := Migrate(ctx, conn); migrateErr != nil {
		return nil, fmt.Errorf("migrate database error: %w", migrateErr)
	}
	return conn, nil
}

func connectSQLite(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(sqliteDSN(dbPath)), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database with path %s error: %w", dbPath, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	// SQLite допускает одного писателя. Одно соединение сериализует транзакции на уровне пула
	// и не дает потерять базу `:memory:` при пересоздании соединения.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return db, nil
}

func sqliteDSN(dbPath string) string {
	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + sqliteParams
}
