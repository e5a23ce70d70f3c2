package memstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/db/memory"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

// linkIndex общее состояние всех копий репозитория: счетчик идентификаторов и индекс ключей.
type linkIndex struct {
	seq  uint64
	keys map[string]uint64
}

// LinkRepo представляет собой репозиторий для работы со ссылками в памяти.
type LinkRepo struct {
	s      *db.MemoryStorage
	mu     *sync.RWMutex
	idx    *linkIndex
	logger *logrus.Entry
	// journal не nil только внутри транзакции: блокировка уже взята, изменения журналируются.
	journal *[]func()
}

// NewLinkRepo создает новый экземпляр репозитория ссылок.
//
// Если в хранилище уже есть записи, индекс ключей и счетчик идентификаторов восстанавливаются по ним.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//   - logger: логгер
//
// Возвращает:
//   - *LinkRepo: инициализированный репозиторий
func NewLinkRepo(store *db.MemoryStorage, logger *logrus.Logger) *LinkRepo {
	repo := &LinkRepo{
		s:  store,
		mu: new(sync.RWMutex),
		idx: &linkIndex{
			keys: make(map[string]uint64),
		},
		logger: logger.WithField("module", "repository/memstore/link"),
	}
	repo.restoreIndex()
	return repo
}

func (u *LinkRepo) restoreIndex() {
	links, err := memory.FilterAll[models.Link](context.Background(), u.s.MStorage, func(models.Link) bool {
		return true
	})
	if err != nil {
		u.logger.WithError(err).Error("failed to restore key index")
		return
	}
	for _, link := range links {
		u.idx.seq = max(u.idx.seq, link.ID)
		if link.IsFinalized() {
			u.idx.keys[link.Key] = link.ID
		}
	}
}

func (u *LinkRepo) Allocate(ctx context.Context) (uint64, error) {
	defer u.lock()()

	if err := ctx.Err(); err != nil {
		return repositories.UnsetID, err //nolint:wrapcheck
	}

	u.idx.seq++
	for u.s.IsExist(recordKey(u.idx.seq)) {
		u.idx.seq++
	}
	id := u.idx.seq
	now := time.Now().UTC()
	link := &models.Link{ID: id, CreatedAt: now, UpdatedAt: now}
	if err := memory.Set[models.Link](ctx, recordKey(id), link, u.s.MStorage); err != nil {
		u.logger.WithError(err).Error("failed to allocate record")
		return repositories.UnsetID, fmt.Errorf("failed to allocate record: %w", convertErrorType(err))
	}
	u.remember(func() {
		u.s.Delete(recordKey(id))
	})
	return id, nil
}

func (u *LinkRepo) Finalize(ctx context.Context, id uint64, key, rawURL string) error {
	if id == repositories.UnsetID {
		return fmt.Errorf("%w: id is not set", repositories.ErrInvalidArgument)
	}
	if key == "" || rawURL == "" {
		return fmt.Errorf("%w: key and url must not be empty", repositories.ErrInvalidArgument)
	}

	defer u.lock()()

	link, err := memory.Get[models.Link](ctx, recordKey(id), u.s.MStorage)
	if err != nil {
		return fmt.Errorf("failed to get record %d: %w", id, convertErrorType(err))
	}
	if link.IsFinalized() {
		return fmt.Errorf("%w: id %d", repositories.ErrAlreadyFinalized, id)
	}
	if _, taken := u.idx.keys[key]; taken {
		return fmt.Errorf("%w: key %s", repositories.ErrKeyConflict, key)
	}

	prev := *link
	link.Key = key
	link.URL = rawURL
	link.UpdatedAt = time.Now().UTC()
	if err = memory.Set[models.Link](ctx, recordKey(id), link, u.s.MStorage, memory.WithOverwrite()); err != nil {
		u.logger.WithError(err).Errorf("failed to finalize record %d", id)
		return fmt.Errorf("failed to finalize record %d: %w", id, convertErrorType(err))
	}
	u.idx.keys[key] = id

	u.remember(func() {
		delete(u.idx.keys, key)
		if restoreErr := memory.Set[models.Link](
			context.Background(), recordKey(id), &prev, u.s.MStorage, memory.WithOverwrite(),
		); restoreErr != nil {
			u.logger.WithError(restoreErr).Errorf("failed to roll back record %d", id)
		}
	})
	return nil
}

func (u *LinkRepo) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	defer u.rlock()()

	if err := ctx.Err(); err != nil {
		return false, err //nolint:wrapcheck
	}
	_, ok := u.idx.keys[key]
	return ok, nil
}

func (u *LinkRepo) Resolve(ctx context.Context, key string) (*models.Link, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	defer u.rlock()()

	if err := ctx.Err(); err != nil {
		return nil, false, err //nolint:wrapcheck
	}
	id, ok := u.idx.keys[key]
	if !ok {
		return nil, false, nil
	}
	link, err := memory.Get[models.Link](ctx, recordKey(id), u.s.MStorage)
	if err != nil {
		return nil, false, fmt.Errorf(
			"failed to get record by key %s: %w",
			key, convertErrorType(err),
		)
	}
	return link, true, nil
}

func (u *LinkRepo) Get(ctx context.Context, id uint64) (*models.Link, error) {
	defer u.rlock()()

	link, err := memory.Get[models.Link](ctx, recordKey(id), u.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, convertErrorType(err))
	}
	return link, nil
}

// Transaction выполняет fn под эксклюзивной блокировкой. Если fn вернула ошибку,
// изменения откатываются в обратном порядке. Счетчик идентификаторов не откатывается.
func (u *LinkRepo) Transaction(ctx context.Context, fn func(store repositories.LinkStore) error) error {
	if u.journal != nil {
		return fn(u)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err //nolint:wrapcheck
	}

	var journal []func()
	tx := &LinkRepo{
		s:       u.s,
		mu:      u.mu,
		idx:     u.idx,
		logger:  u.logger,
		journal: &journal,
	}
	if err := fn(tx); err != nil {
		for i := len(journal) - 1; i >= 0; i-- {
			journal[i]()
		}
		return err
	}
	return nil
}

// Ping хранилище в памяти всегда доступно.
func (u *LinkRepo) Ping(ctx context.Context) error {
	return ctx.Err() //nolint:wrapcheck
}

func (u *LinkRepo) lock() func() {
	if u.journal != nil {
		return func() {}
	}
	u.mu.Lock()
	return u.mu.Unlock
}

func (u *LinkRepo) rlock() func() {
	if u.journal != nil {
		return func() {}
	}
	u.mu.RLock()
	return u.mu.RUnlock
}

func (u *LinkRepo) remember(undo func()) {
	if u.journal != nil {
		*u.journal = append(*u.journal, undo)
	}
}

func recordKey(id uint64) string {
	return strconv.FormatUint(id, 10)
}
