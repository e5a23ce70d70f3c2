package services

import (
	"context"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fsdevblog/shortlinks/internal/keycodec"
	"github.com/fsdevblog/shortlinks/internal/models"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

// maxAllocateAttempts сколько раз можно выделить новую запись, если ключ, выведенный из
// идентификатора, уже занят пользовательским ключом.
const maxAllocateAttempts = 10

// hostnameRegex имя хоста в соответствии с `RFC 1123`, одиночные метки (`intranet`) допустимы.
var hostnameRegex = regexp.MustCompile(`^([a-zA-Z0-9](-?[a-zA-Z0-9])*\.)*([a-zA-Z0-9](-?[a-zA-Z0-9])*)$`)

// reservedKeys совпадают со статическими маршрутами верхнего уровня (см. controllers.SetupRouter),
// запрос `/<key>` для них никогда не дойдет до редиректа.
var reservedKeys = map[string]struct{}{
	"ping": {},
}

// IsReservedKey ключ занят маршрутом сервиса.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// LinkService Сервис работает с хранилищем в контексте таблицы `links`.
type LinkService struct {
	store  repositories.LinkStore
	logger *logrus.Entry
}

func NewLinkService(store repositories.LinkStore, logger *logrus.Logger) *LinkService {
	return &LinkService{
		store:  store,
		logger: logger.WithField("module", "service/link"),
	}
}

// Create создает короткую ссылку.
//
// Проверка ключа, выделение записи и её заполнение идут в одной транзакции, поэтому из
// конкурентных запросов с одинаковым customKey успешен только один, остальные получают ErrKeyConflict.
//
// Зарезервированный customKey отклоняется как занятый.
//
// Ошибки: ErrInvalidURL, ErrInvalidKey, ErrKeyConflict, ErrUnknown.
func (s *LinkService) Create(ctx context.Context, rawURL, customKey string) (*models.Link, error) {
	rawURL = strings.TrimSpace(rawURL)
	customKey = strings.TrimSpace(customKey)

	if rawURL == "" {
		return nil, errors.Wrap(ErrInvalidURL, "missing url")
	}
	if customKey != "" && !keycodec.Valid(customKey) {
		return nil, errors.Wrapf(ErrInvalidKey, "key %q", customKey)
	}
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	if IsReservedKey(customKey) {
		return nil, errors.Wrapf(ErrKeyConflict, "key %s is reserved", customKey)
	}

	var link *models.Link
	txErr := s.store.Transaction(ctx, func(tx repositories.LinkStore) error {
		var createErr error
		if customKey != "" {
			link, createErr = s.createWithKey(ctx, tx, target, customKey)
		} else {
			link, createErr = s.createDerived(ctx, tx, target)
		}
		return createErr
	})
	if txErr != nil {
		return nil, s.convertError(txErr)
	}
	return link, nil
}

func (s *LinkService) createWithKey(
	ctx context.Context,
	tx repositories.LinkStore,
	target, key string,
) (*models.Link, error) {
	exists, err := tx.Exists(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "check key %s", key)
	}
	if exists {
		return nil, errors.Wrapf(ErrKeyConflict, "key %s", key)
	}

	id, err := tx.Allocate(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "allocate record")
	}
	if err = tx.Finalize(ctx, id, key, target); err != nil {
		return nil, errors.Wrapf(err, "finalize record %d", id)
	}
	return tx.Get(ctx, id) //nolint:wrapcheck
}

func (s *LinkService) createDerived(
	ctx context.Context,
	tx repositories.LinkStore,
	target string,
) (*models.Link, error) {
	for range maxAllocateAttempts {
		id, err := tx.Allocate(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "allocate record")
		}

		key := keycodec.Encode(id)
		if IsReservedKey(key) {
			s.logger.WithField("id", id).Warnf("derived key %s is reserved, allocating again", key)
			continue
		}
		exists, err := tx.Exists(ctx, key)
		if err != nil {
			return nil, errors.Wrapf(err, "check key %s", key)
		}
		if exists {
			// ключ уже занят пользователем, заготовка остается без ключа
			s.logger.WithField("id", id).Warnf("derived key %s already taken, allocating again", key)
			continue
		}

		if err = tx.Finalize(ctx, id, key, target); err != nil {
			return nil, errors.Wrapf(err, "finalize record %d", id)
		}
		return tx.Get(ctx, id) //nolint:wrapcheck
	}
	return nil, errors.Wrap(ErrUnknown, "allocate attempts exceeded")
}

// Resolve находит запись по ключу.
//
// Наличие ключа и сама запись читаются в одной транзакции. Если ключ есть, а записи нет, это
// нарушение целостности хранилища: оно логируется и возвращается как ErrInconsistentState.
func (s *LinkService) Resolve(ctx context.Context, key string) (*models.Link, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, errors.Wrap(ErrRecordNotFound, "empty key")
	}

	var link *models.Link
	txErr := s.store.Transaction(ctx, func(tx repositories.LinkStore) error {
		exists, err := tx.Exists(ctx, key)
		if err != nil {
			return errors.Wrapf(err, "check key %s", key)
		}
		if !exists {
			return errors.Wrapf(ErrRecordNotFound, "key %s not found", key)
		}

		found, ok, err := tx.Resolve(ctx, key)
		if err != nil {
			return errors.Wrapf(err, "resolve key %s", key)
		}
		if !ok {
			s.logger.WithField("key", key).Error("key exists but record is missing")
			return errors.Wrapf(ErrInconsistentState, "key %s", key)
		}
		link = found
		return nil
	})
	if txErr != nil {
		return nil, s.convertError(txErr)
	}
	return link, nil
}

func (s *LinkService) GetByID(ctx context.Context, id uint64) (*models.Link, error) {
	link, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, s.convertError(err)
	}
	if !link.IsFinalized() {
		return nil, errors.Wrapf(ErrRecordNotFound, "id %d is not finalized", id)
	}
	return link, nil
}

// convertError приводит ошибку хранилища к ошибке сервиса. Ошибки сервиса проходят как есть.
func (s *LinkService) convertError(err error) error {
	for _, known := range []error{
		ErrRecordNotFound, ErrKeyConflict, ErrInvalidKey, ErrInvalidURL, ErrInconsistentState, ErrUnknown,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	switch {
	case errors.Is(err, repositories.ErrKeyConflict):
		return errors.Wrap(ErrKeyConflict, err.Error())
	case errors.Is(err, repositories.ErrNotFound):
		return errors.Wrap(ErrRecordNotFound, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		s.logger.WithError(err).Error("storage error")
		return errors.Wrap(ErrUnknown, err.Error())
	}
}

// NormalizeURL дописывает схему `http://`, если ссылка начинается не с `http://` или `https://`,
// и проверяет, что результат - абсолютная ссылка с корректным хостом.
func NormalizeURL(rawURL string) (string, error) {
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		rawURL = "http://" + rawURL
	}
	if len(rawURL) > models.MaxURLLength {
		return "", errors.Wrapf(ErrInvalidURL, "url longer than %d", models.MaxURLLength)
	}

	parsedURL, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", errors.Wrap(ErrInvalidURL, "invalid URL format")
	}
	if parsedURL.Host == "" {
		return "", errors.Wrap(ErrInvalidURL, "URL must have a host")
	}
	host := parsedURL.Hostname()
	if !hostnameRegex.MatchString(host) && net.ParseIP(host) == nil {
		return "", errors.Wrap(ErrInvalidURL, "invalid hostname")
	}
	return rawURL, nil
}

// ShortURL склеивает базовый адрес и ключ.
func ShortURL(baseURL, key string) string {
	return strings.TrimRight(baseURL, "/") + "/" + key
}
