package repositories

import (
	"context"

	"github.com/fsdevblog/shortlinks/internal/models"
)

// UnsetID значение идентификатора, которое хранилище никогда не выдает.
const UnsetID uint64 = 0

// LinkStore хранилище соответствий ключ -> ссылка.
//
// Каждый метод атомарен сам по себе. Для составных операций (проверка ключа, выделение записи и
// её заполнение) используется Transaction: переданная в fn копия хранилища работает внутри одной
// транзакции с самым строгим уровнем изоляции, который поддерживает бэкенд.
type LinkStore interface {
	// Allocate создает пустую заготовку и возвращает её идентификатор.
	// Идентификаторы строго возрастают.
	Allocate(ctx context.Context) (uint64, error)
	// Finalize записывает ключ и ссылку в заготовку id.
	// Ошибки: ErrInvalidArgument, ErrNotFound, ErrKeyConflict, ErrAlreadyFinalized.
	Finalize(ctx context.Context, id uint64, key, rawURL string) error
	// Exists сообщает, есть ли заполненная запись с таким ключом. Пустая строка ключом не считается.
	Exists(ctx context.Context, key string) (bool, error)
	// Resolve возвращает запись по ключу. Отсутствие записи не ошибка: (nil, false, nil).
	Resolve(ctx context.Context, key string) (*models.Link, bool, error)
	// Get возвращает запись по идентификатору или ErrNotFound.
	Get(ctx context.Context, id uint64) (*models.Link, error)
	// Transaction выполняет fn в одной сериализуемой транзакции.
	Transaction(ctx context.Context, fn func(store LinkStore) error) error
}
