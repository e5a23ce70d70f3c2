package services

import (
	"context"

	"github.com/fsdevblog/shortlinks/internal/models"
)

// LinkShortener операции над короткими ссылками, доступные контроллерам и командам cli.
type LinkShortener interface {
	// Create создает запись. Пустой customKey означает, что ключ будет выведен из идентификатора.
	Create(ctx context.Context, rawURL, customKey string) (*models.Link, error)
	// Resolve находит запись по ключу или возвращает ErrRecordNotFound.
	Resolve(ctx context.Context, key string) (*models.Link, error)
	GetByID(ctx context.Context, id uint64) (*models.Link, error)
}
