package controllers

import "errors"

// Ошибки.
var (
	ErrRecordNotFound = errors.New("record not found") // Запись не найдена
	ErrInternal       = errors.New("internal error")   // Прочая ошибка
	ErrBadRequest     = errors.New("invalid request body")
)

const (
	msgMissingURL = "Missing URL!"
	msgKeyTaken   = "Custom url '%s' already exists! Try something else!"
)
