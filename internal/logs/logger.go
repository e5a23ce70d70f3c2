package logs

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// EncodingType определяет формат вывода логов.
type EncodingType string

// EncodingTypeText Форматирование для консоли.
// EncodingTypeJSON Форматирование в JSON.
const (
	EncodingTypeText EncodingType = "text"
	EncodingTypeJSON EncodingType = "json"
)

// LoggerOptions настройки логгера.
type LoggerOptions struct {
	Level         string        // Уровень логирования
	Encoding      EncodingType  // Формат вывода
	Output        io.Writer     // Куда пишем
	InitialFields logrus.Fields // Поля, которые хук добавляет к каждой записи
}

// WithLevel задает уровень. Пустая строка оставляет уровень по умолчанию.
func WithLevel(level string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if level != "" {
			o.Level = level
		}
	}
}

func WithOutput(w io.Writer) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		o.Output = w
	}
}

func WithEncoding(enc EncodingType) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		o.Encoding = enc
	}
}

func WithFields(fields logrus.Fields) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		o.InitialFields = fields
	}
}

// New создает новый логгер с указанными настройками.
//
// В релизе (GIN_MODE=release) по умолчанию JSON и уровень info, иначе текст и debug.
//
// Параметры:
//   - opts: функции для настройки логгера
//
// Возвращает:
//   - *logrus.Logger: настроенный логгер
//   - error: ошибка разбора уровня
func New(opts ...func(*LoggerOptions)) (*logrus.Logger, error) {
	isProduction := os.Getenv("GIN_MODE") == "release"

	options := LoggerOptions{
		Level:    logrus.DebugLevel.String(),
		Encoding: EncodingTypeText,
		Output:   os.Stdout,
	}
	if isProduction {
		options.Level = logrus.InfoLevel.String()
		options.Encoding = EncodingTypeJSON
	}

	for _, opt := range opts {
		opt(&options)
	}

	lvl, errLvl := logrus.ParseLevel(options.Level)
	if errLvl != nil {
		return nil, fmt.Errorf("parse level: %s", errLvl.Error())
	}

	logger := logrus.New()
	logger.SetOutput(options.Output)
	logger.SetLevel(lvl)

	switch options.Encoding {
	case EncodingTypeJSON:
		logger.SetFormatter(new(logrus.JSONFormatter))
	case EncodingTypeText:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown encoding: %s", options.Encoding)
	}

	if len(options.InitialFields) > 0 {
		logger.AddHook(fieldsHook(options.InitialFields))
	}
	return logger, nil
}

// MustNew создает новый логгер с указанными настройками.
// В случае ошибки вызывает panic.
func MustNew(opts ...func(*LoggerOptions)) *logrus.Logger {
	log, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return log
}

type fieldsHook logrus.Fields

func (h fieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h fieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
