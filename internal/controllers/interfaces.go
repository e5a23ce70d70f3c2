package controllers

import (
	"context"

	"github.com/fsdevblog/shortlinks/internal/models"
)

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

type LinkShortener interface {
	// Create создает запись. Пустой customKey - ключ выводится из идентификатора записи.
	Create(ctx context.Context, rawURL, customKey string) (*models.Link, error)
	Resolve(ctx context.Context, key string) (*models.Link, error)
}
