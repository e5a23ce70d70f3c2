package sql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/repositories"
)

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ConvertErrorType приводит ошибку gorm/драйвера к ошибке уровня репозитория, сохраняя исходный текст.
func ConvertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case isUniqueViolation(err):
		nativeErr = repositories.ErrKeyConflict
	case errors.Is(err, gorm.ErrRecordNotFound):
		nativeErr = repositories.ErrNotFound
	case isSerializationFailure(err):
		nativeErr = repositories.ErrTransaction
	default:
		nativeErr = repositories.ErrUnknown
	}
	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	// проверка errors.Is на gorm.ErrDuplicatedKey срабатывает не для всех версий драйвера sqlite
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isSerializationFailure(err error) bool {
	if errors.Is(err, repositories.ErrTransaction) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return strings.Contains(err.Error(), "database is locked")
}
