package memory

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// MStorage потокобезопасное key/value хранилище. Значения хранятся сериализованными в json,
// поэтому наружу никогда не отдаются ссылки на внутренние данные.
type MStorage struct {
	data map[string][]byte
	m    sync.RWMutex
}

func NewMemStorage() *MStorage {
	return &MStorage{
		data: make(map[string][]byte),
	}
}

func (m *MStorage) Len() int {
	m.m.RLock()
	defer m.m.RUnlock()

	return len(m.data)
}

func (m *MStorage) IsExist(key string) bool {
	m.m.RLock()
	defer m.m.RUnlock()

	_, ok := m.data[key]
	return ok
}

// Delete удаляет значение по ключу. Отсутствие ключа не ошибка.
func (m *MStorage) Delete(key string) {
	m.m.Lock()
	defer m.m.Unlock()

	delete(m.data, key)
}

type SetOptions struct {
	overwrite bool
}

// WithOverwrite разрешает Set перезаписать существующий ключ.
func WithOverwrite() func(*SetOptions) {
	return func(o *SetOptions) {
		o.overwrite = true
	}
}

func Get[T any](ctx context.Context, key string, m *MStorage) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m.m.RLock()
	val, ok := m.data[key]
	m.m.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	var result T
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
	}
	return &result, nil
}

// Set Сохраняет новые пары ключ/значение. Ключ обязан быть уникальным, иначе вернется ошибка ErrDuplicateKey.
// Опция WithOverwrite снимает это ограничение.
func Set[T any](ctx context.Context, key string, val *T, m *MStorage, opts ...func(*SetOptions)) error {
	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	var options SetOptions
	for _, opt := range opts {
		opt(&options)
	}

	bytes, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal json for object `%+v`", val)
	}

	m.m.Lock()
	defer m.m.Unlock()

	if _, ok := m.data[key]; ok && !options.overwrite {
		return ErrDuplicateKey
	}
	m.data[key] = bytes
	return nil
}

// FilterAll возвращает все значения, для которых fn вернула true.
func FilterAll[T any](ctx context.Context, m *MStorage, fn func(T) bool) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck
	}

	m.m.RLock()
	defer m.m.RUnlock()

	var result = make([]T, 0)
	for key, bytes := range m.data {
		var val T
		if err := json.Unmarshal(bytes, &val); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal json by key `%s`", key)
		}
		if fn(val) {
			result = append(result, val)
		}
	}
	return result, nil
}
