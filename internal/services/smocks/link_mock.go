package smocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fsdevblog/shortlinks/internal/models"
)

type LinkMock struct {
	mock.Mock
}

func (l *LinkMock) Create(ctx context.Context, rawURL, customKey string) (*models.Link, error) {
	args := l.Called(ctx, rawURL, customKey)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkMock) Resolve(ctx context.Context, key string) (*models.Link, error) {
	args := l.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

func (l *LinkMock) GetByID(ctx context.Context, id uint64) (*models.Link, error) {
	args := l.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1) //nolint:wrapcheck,errcheck
	}
	return args.Get(0).(*models.Link), args.Error(1) //nolint:wrapcheck,errcheck
}

type PingMock struct {
	mock.Mock
}

func (p *PingMock) CheckConnection(ctx context.Context) error {
	return p.Called(ctx).Error(0) //nolint:wrapcheck
}
