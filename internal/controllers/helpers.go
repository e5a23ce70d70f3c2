package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/fsdevblog/shortlinks/internal/services"
)

const (
	DefaultRequestTimeout = 3 * time.Second
)

// statusFromError переводит ошибку сервиса в http статус.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, services.ErrKeyConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidKey), errors.Is(err, services.ErrInvalidURL):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
