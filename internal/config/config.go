package config

import (
	"net/url"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeInMemory DBType = "inMemory"
)

const (
	DefaultServerAddress   = "localhost:8080"
	DefaultSQLitePath      = "./shortener.sqlite"
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 5 * time.Second

	defaultConfigDir  = "./configs"
	defaultConfigName = "config"
)

// Имена флагов командной строки.
const (
	FlagServerAddress   = "address"
	FlagBaseURL         = "base-url"
	FlagDBType          = "db"
	FlagSQLitePath      = "sqlite-path"
	FlagDatabaseDSN     = "database-dsn"
	FlagLogLevel        = "log-level"
	FlagShutdownTimeout = "shutdown-timeout"
)

type Config struct {
	// Адрес, на котором запустится сервер
	ServerAddress string
	// Базовый адрес результирующего сокращенного URL. nil - брать Scheme://Host из запроса.
	BaseURL *url.URL
	// Тип хранилища
	DBType      DBType
	SQLitePath  string
	DatabaseDSN string
	LogLevel    string
	// Сколько ждать завершения активных запросов при остановке
	ShutdownTimeout time.Duration
}

// rawConfig значения в том виде, в каком они приходят из файла, окружения и флагов.
type rawConfig struct {
	ServerAddress   string        `env:"SERVER_ADDRESS"   mapstructure:"server_address"`
	BaseURL         string        `env:"BASE_URL"         mapstructure:"base_url"`
	DBType          string        `env:"DB"               mapstructure:"db"`
	SQLitePath      string        `env:"SQLITE_PATH"      mapstructure:"sqlite_path"`
	DatabaseDSN     string        `env:"DATABASE_DSN"     mapstructure:"database_dsn"`
	LogLevel        string        `env:"LOG_LEVEL"        mapstructure:"log_level"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" mapstructure:"shutdown_timeout"`
}

// BindFlags регистрирует флаги конфигурации.
func BindFlags(fs *pflag.FlagSet) {
	fs.StringP(FlagServerAddress, "a", DefaultServerAddress, "Адрес сервера")
	fs.StringP(FlagBaseURL, "b", "",
		"Базовый адрес результирующего сокращенного URL (по умолчанию Scheme://Host запущенного сервера)")
	fs.String(FlagDBType, "", "Тип хранилища: sqlite, postgres или inMemory")
	fs.String(FlagSQLitePath, DefaultSQLitePath, "Путь к файлу sqlite")
	fs.StringP(FlagDatabaseDSN, "d", "", "DSN базы postgres")
	fs.String(FlagLogLevel, DefaultLogLevel, "Уровень логирования")
	fs.Duration(FlagShutdownTimeout, DefaultShutdownTimeout, "Время на завершение активных запросов")
}

// Load собирает конфигурацию. Приоритет по возрастанию: значения по умолчанию, yaml файл,
// переменные окружения, явно заданные флаги.
//
// configFile пустой - ищем ./configs/config.yaml, его отсутствие не ошибка.
// fs может быть nil.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	raw := rawConfig{
		ServerAddress:   DefaultServerAddress,
		SQLitePath:      DefaultSQLitePath,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
	}

	if err := loadFile(configFile, &raw); err != nil {
		return nil, err
	}

	if err := env.Parse(&raw); err != nil {
		return nil, errors.Wrap(err, "parse ENV config error")
	}

	if fs != nil {
		if err := loadFlags(fs, &raw); err != nil {
			return nil, err
		}
	}

	return raw.build()
}

func loadFile(configFile string, raw *rawConfig) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(defaultConfigDir)
		v.SetConfigName(defaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config file error")
	}
	// в карте только ключи из файла, остальные поля raw не трогаются
	if err := v.Unmarshal(raw); err != nil {
		return errors.Wrap(err, "unmarshal config file error")
	}
	return nil
}

// loadFlags переносит только флаги, которые пользователь задал явно.
func loadFlags(fs *pflag.FlagSet, raw *rawConfig) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case FlagServerAddress:
			raw.ServerAddress = f.Value.String()
		case FlagBaseURL:
			raw.BaseURL = f.Value.String()
		case FlagDBType:
			raw.DBType = f.Value.String()
		case FlagSQLitePath:
			raw.SQLitePath = f.Value.String()
		case FlagDatabaseDSN:
			raw.DatabaseDSN = f.Value.String()
		case FlagLogLevel:
			raw.LogLevel = f.Value.String()
		case FlagShutdownTimeout:
			raw.ShutdownTimeout, err = fs.GetDuration(FlagShutdownTimeout)
		}
	})
	return errors.Wrap(err, "parse flags error")
}

func (r *rawConfig) build() (*Config, error) {
	conf := Config{
		ServerAddress:   r.ServerAddress,
		DBType:          whatIsDBStorageType(r),
		SQLitePath:      r.SQLitePath,
		DatabaseDSN:     r.DatabaseDSN,
		LogLevel:        r.LogLevel,
		ShutdownTimeout: r.ShutdownTimeout,
	}

	if r.BaseURL != "" {
		parsedURL, err := url.ParseRequestURI(r.BaseURL)
		if err != nil || parsedURL.Host == "" {
			return nil, errors.Errorf("failed to parse base url %q", r.BaseURL)
		}
		// создаем новый инстанс, отсекая тем самым Path и Query если они заданы в базовом урле.
		conf.BaseURL = &url.URL{
			Scheme: parsedURL.Scheme,
			Host:   parsedURL.Host,
		}
	}

	switch conf.DBType {
	case DBTypeSQLite:
		if conf.SQLitePath == "" {
			return nil, errors.New("sqlite path is empty")
		}
	case DBTypePostgres:
		if conf.DatabaseDSN == "" {
			return nil, errors.New("postgres storage requires database dsn")
		}
	case DBTypeInMemory:
	default:
		return nil, errors.Errorf("unknown db type %q", conf.DBType)
	}

	if conf.ShutdownTimeout <= 0 {
		return nil, errors.Errorf("shutdown timeout must be positive, got %s", conf.ShutdownTimeout)
	}
	return &conf, nil
}

// whatIsDBStorageType тип хранилища не задан явно: есть DSN - postgres, иначе sqlite.
func whatIsDBStorageType(r *rawConfig) DBType {
	if r.DBType != "" {
		return DBType(r.DBType)
	}
	if r.DatabaseDSN != "" {
		return DBTypePostgres
	}
	return DBTypeSQLite
}

// ConfigFileFromEnv путь к файлу конфигурации из CONFIG, если флаг --config не задан.
func ConfigFileFromEnv() string {
	return os.Getenv("CONFIG")
}
