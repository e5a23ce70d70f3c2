// Package memstore предоставляет реализацию repositories.LinkStore для in-memory хранилища.
//
// Записи лежат в db.MemoryStorage под строковым идентификатором, отдельный индекс хранит
// соответствие ключ -> идентификатор. Транзакция берет эксклюзивную блокировку репозитория
// и откатывает свои изменения по журналу, если fn вернула ошибку.
//
// Все методы репозитория преобразуют внутренние ошибки хранилища в общие ошибки уровня репозитория
// с помощью convertErrorType:
//   - memory.ErrDuplicateKey -> repositories.ErrKeyConflict
//   - memory.ErrNotFound -> repositories.ErrNotFound
//   - другие ошибки -> repositories.ErrUnknown
package memstore
