package sql

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/repositories"
)

func TestConvertErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: repositories.ErrKeyConflict},
		{name: "pg unique violation", err: &pgconn.PgError{Code: "23505"}, want: repositories.ErrKeyConflict},
		{name: "sqlite unique", err: errors.New("UNIQUE constraint failed: links.short_key"), want: repositories.ErrKeyConflict},
		{name: "not found", err: gorm.ErrRecordNotFound, want: repositories.ErrNotFound},
		{name: "pg serialization", err: &pgconn.PgError{Code: "40001"}, want: repositories.ErrTransaction},
		{name: "pg deadlock", err: &pgconn.PgError{Code: "40P01"}, want: repositories.ErrTransaction},
		{name: "sqlite locked", err: errors.New("database is locked"), want: repositories.ErrTransaction},
		{name: "other", err: errors.New("boom"), want: repositories.ErrUnknown},
		{name: "sqlite duplicate column", err: errors.New("duplicate column name: short_key"), want: repositories.ErrUnknown},
		{name: "pg other constraint", err: &pgconn.PgError{Code: "23503"}, want: repositories.ErrUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ConvertErrorType(tt.err)
			assert.ErrorIs(t, got, tt.want)
			assert.Contains(t, got.Error(), tt.err.Error())
		})
	}
}
