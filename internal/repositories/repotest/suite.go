// Package repotest содержит общий набор тестов контракта repositories.LinkStore.
// Каждая реализация хранилища прогоняет его из своего _test.go.
package repotest

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/shortlinks/internal/repositories"
)

var errRollback = errors.New("rollback")

// LinkStoreSuite контрактные тесты хранилища. NewStore должен возвращать пустое хранилище.
type LinkStoreSuite struct {
	suite.Suite
	NewStore func(t *testing.T) repositories.LinkStore

	store repositories.LinkStore
}

func (s *LinkStoreSuite) SetupTest() {
	s.store = s.NewStore(s.T())
}

func (s *LinkStoreSuite) TestAllocate_Monotonic() {
	ctx := s.T().Context()

	var prev uint64
	for range 5 {
		id, err := s.store.Allocate(ctx)
		s.Require().NoError(err)
		s.Greater(id, prev)
		prev = id
	}
}

func (s *LinkStoreSuite) TestFinalize_Resolve() {
	ctx := s.T().Context()

	id, err := s.store.Allocate(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Finalize(ctx, id, "foo", "http://a.com"))

	link, ok, err := s.store.Resolve(ctx, "foo")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(id, link.ID)
	s.Equal("foo", link.Key)
	s.Equal("http://a.com", link.URL)

	exists, err := s.store.Exists(ctx, "foo")
	s.Require().NoError(err)
	s.True(exists)

	byID, err := s.store.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(link.Key, byID.Key)
	s.Equal(link.URL, byID.URL)
}

func (s *LinkStoreSuite) TestFinalize_Errors() {
	ctx := s.T().Context()

	id, err := s.store.Allocate(ctx)
	s.Require().NoError(err)

	tests := []struct {
		name    string
		id      uint64
		key     string
		url     string
		wantErr error
	}{
		{name: "unset id", id: repositories.UnsetID, key: "k", url: "http://a.com", wantErr: repositories.ErrInvalidArgument},
		{name: "empty key", id: id, key: "", url: "http://a.com", wantErr: repositories.ErrInvalidArgument},
		{name: "empty url", id: id, key: "k", url: "", wantErr: repositories.ErrInvalidArgument},
		{name: "unknown id", id: id + 1000, key: "k", url: "http://a.com", wantErr: repositories.ErrNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.ErrorIs(s.store.Finalize(ctx, tt.id, tt.key, tt.url), tt.wantErr)
		})
	}

	s.Require().NoError(s.store.Finalize(ctx, id, "once", "http://a.com"))
	s.ErrorIs(s.store.Finalize(ctx, id, "twice", "http://b.com"), repositories.ErrAlreadyFinalized)

	link, ok, err := s.store.Resolve(ctx, "once")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal("http://a.com", link.URL)
}

func (s *LinkStoreSuite) TestFinalize_KeyConflict() {
	ctx := s.T().Context()

	first, err := s.store.Allocate(ctx)
	s.Require().NoError(err)
	second, err := s.store.Allocate(ctx)
	s.Require().NoError(err)

	s.Require().NoError(s.store.Finalize(ctx, first, "dup", "http://a.com"))
	s.ErrorIs(s.store.Finalize(ctx, second, "dup", "http://b.com"), repositories.ErrKeyConflict)

	link, ok, err := s.store.Resolve(ctx, "dup")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(first, link.ID)
	s.Equal("http://a.com", link.URL)
}

func (s *LinkStoreSuite) TestPlaceholders_AreNotKeys() {
	ctx := s.T().Context()

	for range 3 {
		_, err := s.store.Allocate(ctx)
		s.Require().NoError(err)
	}

	exists, err := s.store.Exists(ctx, "")
	s.Require().NoError(err)
	s.False(exists)

	link, ok, err := s.store.Resolve(ctx, "")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(link)
}

func (s *LinkStoreSuite) TestResolve_Absent() {
	ctx := s.T().Context()

	link, ok, err := s.store.Resolve(ctx, "nothing")
	s.Require().NoError(err)
	s.False(ok)
	s.Nil(link)

	exists, err := s.store.Exists(ctx, "nothing")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *LinkStoreSuite) TestGet_NotFound() {
	_, err := s.store.Get(s.T().Context(), 424242)
	s.ErrorIs(err, repositories.ErrNotFound)
}

func (s *LinkStoreSuite) TestTransaction_Commit() {
	ctx := s.T().Context()

	var id uint64
	err := s.store.Transaction(ctx, func(tx repositories.LinkStore) error {
		var allocErr error
		if id, allocErr = tx.Allocate(ctx); allocErr != nil {
			return allocErr
		}
		return tx.Finalize(ctx, id, "commit", "http://a.com")
	})
	s.Require().NoError(err)

	link, ok, err := s.store.Resolve(ctx, "commit")
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Equal(id, link.ID)
}

func (s *LinkStoreSuite) TestTransaction_Rollback() {
	ctx := s.T().Context()

	var rolledBackID uint64
	err := s.store.Transaction(ctx, func(tx repositories.LinkStore) error {
		id, allocErr := tx.Allocate(ctx)
		if allocErr != nil {
			return allocErr
		}
		rolledBackID = id
		if finErr := tx.Finalize(ctx, id, "rollback", "http://a.com"); finErr != nil {
			return finErr
		}
		return errRollback
	})
	s.Require().ErrorIs(err, errRollback)

	exists, err := s.store.Exists(ctx, "rollback")
	s.Require().NoError(err)
	s.False(exists)

	_, err = s.store.Get(ctx, rolledBackID)
	s.ErrorIs(err, repositories.ErrNotFound)

	id, err := s.store.Allocate(ctx)
	s.Require().NoError(err)
	s.Greater(id, uint64(0))
}

// TestTransaction_ConcurrentSameKey проверка и захват ключа в одной транзакции:
// из конкурентных попыток занять один ключ успешна ровно одна.
func (s *LinkStoreSuite) TestTransaction_ConcurrentSameKey() {
	ctx := s.T().Context()
	const workers = 16

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Transaction(ctx, func(tx repositories.LinkStore) error {
				exists, err := tx.Exists(ctx, "race")
				if err != nil {
					return err
				}
				if exists {
					return repositories.ErrKeyConflict
				}
				id, err := tx.Allocate(ctx)
				if err != nil {
					return err
				}
				return tx.Finalize(ctx, id, "race", fmt.Sprintf("http://example.com/%d", i))
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, repositories.ErrKeyConflict):
				conflicts++
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(1, succeeded)
	s.Equal(workers-1, conflicts)
}

// Run запускает набор для конкретной реализации хранилища.
func Run(t *testing.T, newStore func(t *testing.T) repositories.LinkStore) {
	t.Helper()
	suite.Run(t, &LinkStoreSuite{NewStore: newStore})
}
