package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlinks/internal/config"
	"github.com/fsdevblog/shortlinks/internal/controllers"
	"github.com/fsdevblog/shortlinks/internal/db"
	"github.com/fsdevblog/shortlinks/internal/services"
)

type App struct {
	config   config.Config
	conn     any
	services *services.Services
	Logger   *logrus.Logger
}

// New открывает хранилище (с миграцией схемы) и собирает сервисный слой.
func New(ctx context.Context, conf config.Config, logger *logrus.Logger) (*App, error) {
	conn, connErr := db.NewConnectionFactory(ctx, factoryConfig(&conf))
	if connErr != nil {
		return nil, fmt.Errorf("open storage: %w", connErr)
	}

	dbServices, servicesErr := services.Factory(conn, services.ServiceType(conf.DBType), logger)
	if servicesErr != nil {
		_ = db.Close(conn)
		return nil, fmt.Errorf("init services: %w", servicesErr)
	}

	return &App{
		config:   conf,
		conn:     conn,
		services: dbServices,
		Logger:   logger,
	}, nil
}

// Must вызывает панику если произошла ошибка.
func Must(a *App, err error) *App {
	if err != nil {
		panic(err)
	}
	return a
}

func (a *App) Services() *services.Services {
	return a.services
}

// Handler http обработчик приложения.
func (a *App) Handler() http.Handler {
	return controllers.SetupRouter(controllers.RouterParams{
		LinkService: a.services.LinkService,
		PingService: a.services.PingService,
		BaseURL:     a.config.BaseURL,
		Logger:      a.Logger,
	})
}

// Run запускает web сервер и блокируется до отмены ctx или ошибки сервера.
// После отмены ctx сервер дожидается активных запросов не дольше ShutdownTimeout.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.ServerAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", a.config.ServerAddress, err)
	}
	return a.Serve(ctx, ln)
}

// Serve как Run, но на готовом listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           a.Handler(),
		ReadHeaderTimeout: controllers.DefaultRequestTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		a.Logger.WithField("address", ln.Addr().String()).Info("Starting server")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("Shutdown command received")
	case serverErr = <-errChan:
		a.Logger.WithError(serverErr).Error("router error")
		return serverErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

// Close закрывает соединение с хранилищем.
func (a *App) Close() error {
	return db.Close(a.conn) //nolint:wrapcheck
}

// Migrate создает или обновляет схему и закрывает соединение.
// Для inMemory миграция не нужна.
func Migrate(ctx context.Context, conf config.Config) error {
	if conf.DBType == config.DBTypeInMemory {
		return nil
	}
	conn, err := db.NewConnectionFactory(ctx, factoryConfig(&conf))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return db.Close(conn) //nolint:wrapcheck
}

func factoryConfig(conf *config.Config) db.FactoryConfig {
	return db.FactoryConfig{
		StorageType:  db.StorageType(conf.DBType),
		PostgresDSN:  &conf.DatabaseDSN,
		SqliteDBPath: &conf.SQLitePath,
	}
}
