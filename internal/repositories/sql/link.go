package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

const defaultMaxTxAttempts = 5

// LinkRepo реализация repositories.LinkStore на gorm.
type LinkRepo struct {
	db            *gorm.DB
	logger        *logrus.Entry
	txOptions     *sql.TxOptions
	maxTxAttempts int
	inTx          bool
}

// Options настройки LinkRepo.
type Options struct {
	// TxOptions параметры транзакции. По умолчанию для postgres SERIALIZABLE, для sqlite nil:
	// sqlite сериализуема сама по себе, а уровни изоляции драйвер не принимает.
	TxOptions *sql.TxOptions
	// MaxTxAttempts сколько раз выполнять транзакцию при ошибках сериализации.
	MaxTxAttempts int
}

// NewLinkRepo создает репозиторий поверх открытого подключения.
func NewLinkRepo(db *gorm.DB, logger *logrus.Logger, opts ...func(*Options)) *LinkRepo {
	options := Options{
		MaxTxAttempts: defaultMaxTxAttempts,
	}
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		options.TxOptions = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.MaxTxAttempts < 1 {
		options.MaxTxAttempts = 1
	}

	return &LinkRepo{
		db:            db,
		logger:        logger.WithField("module", "repository/sql/link"),
		txOptions:     options.TxOptions,
		maxTxAttempts: options.MaxTxAttempts,
	}
}

func (u *LinkRepo) Allocate(ctx context.Context) (uint64, error) {
	var link models.Link
	if err := u.db.WithContext(ctx).Create(&link).Error; err != nil {
		u.logger.WithError(err).Error("failed to allocate record")
		return repositories.UnsetID, ConvertErrorType(err)
	}
	return link.ID, nil
}

func (u *LinkRepo) Finalize(ctx context.Context, id uint64, key, rawURL string) error {
	if id == repositories.UnsetID {
		return fmt.Errorf("%w: id is not set", repositories.ErrInvalidArgument)
	}
	if key == "" || rawURL == "" {
		return fmt.Errorf("%w: key and url must not be empty", repositories.ErrInvalidArgument)
	}

	res := u.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("id = ? AND short_key = ?", id, "").
		Updates(map[string]any{"short_key": key, "url": rawURL})
	if res.Error != nil {
		converted := ConvertErrorType(res.Error)
		if !errors.Is(converted, repositories.ErrKeyConflict) {
			u.logger.WithError(res.Error).Errorf("failed to finalize record %d", id)
		}
		return converted
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// ничего не обновили: либо записи нет, либо она уже заполнена
	if _, err := u.Get(ctx, id); err != nil {
		return err
	}
	return fmt.Errorf("%w: id %d", repositories.ErrAlreadyFinalized, id)
}

func (u *LinkRepo) Exists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}

	var count int64
	err := u.db.WithContext(ctx).
		Model(&models.Link{}).
		Where("short_key = ?", key).
		Count(&count).Error
	if err != nil {
		u.logger.WithError(err).Errorf("failed to check key %s", key)
		return false, ConvertErrorType(err)
	}
	return count > 0, nil
}

func (u *LinkRepo) Resolve(ctx context.Context, key string) (*models.Link, bool, error) {
	if key == "" {
		return nil, false, nil
	}

	var link models.Link
	if err := u.db.WithContext(ctx).Where("short_key = ?", key).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		u.logger.WithError(err).Errorf("failed to get record by key %s", key)
		return nil, false, ConvertErrorType(err)
	}
	return &link, true, nil
}

func (u *LinkRepo) Get(ctx context.Context, id uint64) (*models.Link, error) {
	var link models.Link
	if err := u.db.WithContext(ctx).First(&link, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			u.logger.WithError(err).Errorf("failed to get record by id %d", id)
		}
		return nil, ConvertErrorType(err)
	}
	return &link, nil
}

// Transaction выполняет fn в транзакции. Вложенный вызов присоединяется к внешней транзакции.
// При ошибке сериализации транзакция повторяется целиком.
func (u *LinkRepo) Transaction(ctx context.Context, fn func(store repositories.LinkStore) error) error {
	if u.inTx {
		return fn(u)
	}

	var txOpts []*sql.TxOptions
	if u.txOptions != nil {
		txOpts = append(txOpts, u.txOptions)
	}

	var err error
	for attempt := 1; attempt <= u.maxTxAttempts; attempt++ {
		err = u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(u.withTx(tx))
		}, txOpts...)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		u.logger.WithError(err).Warnf("serialization failure, retrying transaction (%d/%d)", attempt, u.maxTxAttempts)
	}

	if errors.Is(err, repositories.ErrTransaction) {
		return err
	}
	return fmt.Errorf("%w: %s", repositories.ErrTransaction, err.Error())
}

// Ping проверяет соединение с базой.
func (u *LinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := u.db.DB()
	if err != nil {
		return fmt.Errorf("get sql db: %w", err)
	}
	if err = sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}
	return nil
}

// withTx вспомогательный метод для работы с sql транзакциями.
func (u *LinkRepo) withTx(tx *gorm.DB) *LinkRepo {
	return &LinkRepo{
		db:            tx,
		logger:        u.logger,
		txOptions:     u.txOptions,
		maxTxAttempts: u.maxTxAttempts,
		inTx:          true,
	}
}
