package memstore

import (
	"errors"
	"fmt"

	"github.com/fsdevblog/shortlinks/internal/db/memory"
	"github.com/fsdevblog/shortlinks/internal/repositories"
)

// convertErrorType конвертирует специфичные ошибки хранилища в памяти
// в общие ошибки уровня репозитория.
func convertErrorType(err error) error {
	if err == nil {
		return nil
	}

	var nativeErr error
	switch {
	case errors.Is(err, memory.ErrDuplicateKey):
		nativeErr = repositories.ErrKeyConflict
	case errors.Is(err, memory.ErrNotFound):
		nativeErr = repositories.ErrNotFound
	default:
		nativeErr = repositories.ErrUnknown
	}

	return fmt.Errorf("%w: %s", nativeErr, err.Error())
}
