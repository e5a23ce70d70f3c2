// Package sql предоставляет реализацию repositories.LinkStore поверх gorm (SQLite или PostgreSQL).
//
// Все методы репозитория преобразуют ошибки драйвера в общие ошибки уровня репозитория
// с помощью ConvertErrorType:
//   - нарушение уникальности (gorm.ErrDuplicatedKey, 23505, UNIQUE constraint failed) -> repositories.ErrKeyConflict
//   - gorm.ErrRecordNotFound -> repositories.ErrNotFound
//   - ошибка сериализации (40001, 40P01, database is locked) -> repositories.ErrTransaction
//   - другие ошибки -> repositories.ErrUnknown
//
// Transaction повторяет транзакцию, упавшую с ошибкой сериализации, не более maxTxAttempts раз.
package sql
