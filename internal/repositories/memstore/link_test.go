package memstore

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories"
	"github.com/fsdevblog/shortlinks/internal/repositories/repotest"
)

func newRepo() *LinkRepo {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLinkRepo(db.NewMemStorage(), logger)
}

func TestLinkRepo_InMemory(t *testing.T) {
	repotest.Run(t, func(*testing.T) repositories.LinkStore {
		return newRepo()
	})
}

func TestLinkRepo_TransactionKeepsSequence(t *testing.T) {
	repo := newRepo()
	ctx := t.Context()

	var inside uint64
	err := repo.Transaction(ctx, func(tx repositories.LinkStore) error {
		var allocErr error
		inside, allocErr = tx.Allocate(ctx)
		require.NoError(t, allocErr)
		return repositories.ErrUnknown
	})
	require.ErrorIs(t, err, repositories.ErrUnknown)

	next, err := repo.Allocate(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, inside, "id sequence is never reused")
	assert.Equal(t, 1, repo.s.Len())
}

func TestLinkRepo_RollbackRestoresPlaceholder(t *testing.T) {
	repo := newRepo()
	ctx := t.Context()

	id, err := repo.Allocate(ctx)
	require.NoError(t, err)

	err = repo.Transaction(ctx, func(tx repositories.LinkStore) error {
		require.NoError(t, tx.Finalize(ctx, id, "undo", "http://a.com"))
		return repositories.ErrUnknown
	})
	require.Error(t, err)

	link, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, link.IsFinalized())

	require.NoError(t, repo.Finalize(ctx, id, "redo", "http://b.com"))
}

func TestLinkRepo_CanceledContext(t *testing.T) {
	repo := newRepo()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := repo.Allocate(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Transaction(ctx, func(repositories.LinkStore) error { return nil }), context.Canceled)
}

func TestNewLinkRepo_RestoresIndex(t *testing.T) {
	ctx := t.Context()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := db.NewMemStorage()

	first := NewLinkRepo(store, logger)
	id, err := first.Allocate(ctx)
	require.NoError(t, err)
	require.NoError(t, first.Finalize(ctx, id, "kept", "http://a.com"))
	placeholder, err := first.Allocate(ctx)
	require.NoError(t, err)

	second := NewLinkRepo(store, logger)
	link, ok, err := second.Resolve(ctx, "kept")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, id, link.ID)

	next, err := second.Allocate(ctx)
	require.NoError(t, err)
	assert.Greater(t, next, placeholder)
	assert.ErrorIs(t, second.Finalize(ctx, next, "kept", "http://b.com"), repositories.ErrKeyConflict)
}
