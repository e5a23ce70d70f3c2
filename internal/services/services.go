package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/repositories"
	"github.com/fsdevblog/shortlinks/internal/repositories/memstore"
	"github.com/fsdevblog/shortlinks/internal/repositories/sql"
)

type ServiceType string

const (
	ServiceTypeSQLite   ServiceType = "sqlite"
	ServiceTypePostgres ServiceType = "postgres"
	ServiceTypeInMemory ServiceType = "inMemory"
)

type Services struct {
	LinkService *LinkService
	PingService *PingService
}

// storeWithPing хранилище, которое умеет проверять соединение.
type storeWithPing interface {
	repositories.LinkStore
	Pinger
}

// Factory собирает сервисы поверх соединения, полученного из db.NewConnectionFactory.
func Factory(conn any, sType ServiceType, logger *logrus.Logger) (*Services, error) {
	switch sType {
	case ServiceTypeSQLite, ServiceTypePostgres:
		gormDB, ok := conn.(*gorm.DB)
		if !ok {
			return nil, errors.New("invalid connection type. expected *gorm.DB")
		}
		return newServices(sql.NewLinkRepo(gormDB, logger), logger), nil
	case ServiceTypeInMemory:
		store, ok := conn.(*db.MemoryStorage)
		if !ok {
			return nil, errors.New("invalid connection type. expected *db.MemoryStorage")
		}
		return newServices(memstore.NewLinkRepo(store, logger), logger), nil
	default:
		return nil, fmt.Errorf("unknown service type: %s", sType)
	}
}

func newServices(store storeWithPing, logger *logrus.Logger) *Services {
	return &Services{
		LinkService: NewLinkService(store, logger),
		PingService: NewPingService(store),
	}
}
