package sql

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories"
	"github.com/fsdevblog/shortlinks/internal/repositories/repotest"
)

func newSQLiteRepo(t *testing.T) *LinkRepo {
	t.Helper()

	conn, err := db.NewSQLite(t.Context(), filepath.Join(t.TempDir(), "links.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(conn)
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewLinkRepo(conn, logger)
}

func TestLinkRepo_SQLite(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repositories.LinkStore {
		return newSQLiteRepo(t)
	})
}

func TestLinkRepo_Ping(t *testing.T) {
	repo := newSQLiteRepo(t)
	require.NoError(t, repo.Ping(t.Context()))
}

func TestNewLinkRepo_Options(t *testing.T) {
	repo := newSQLiteRepo(t)
	require.Nil(t, repo.txOptions)
	require.Equal(t, defaultMaxTxAttempts, repo.maxTxAttempts)

	conn := repo.db
	logger := logrus.New()
	custom := NewLinkRepo(conn, logger, func(o *Options) {
		o.MaxTxAttempts = 0
	})
	require.Equal(t, 1, custom.maxTxAttempts)
}
