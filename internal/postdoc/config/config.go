// Конфигурация сервиса постов из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации по тегам env у полей структуры.
//   - Маскировка секретных значений (пароль в DSN) в логах.
//   - Значения по умолчанию и ограничения для размеров истории, числа сессий и таймаутов.
package config

import (
	"log/slog"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultDatabaseDSN  = "postdoc.db"
	DefaultListenAddr   = ":8080"
	DefaultMetricsAddr  = ":2112"
	DefaultHistoryDepth = 100
	MaxHistoryDepth     = 1000
	DefaultMaxSessions  = 256
	DefaultIdleMinutes  = 30
	DefaultBodyLimit    = "5M"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_URL"`

	ListenAddr  string `env:"LISTEN_ADDR"`
	MetricsAddr string `env:"METRICS_ADDR"`
	BodyLimit   string `env:"BODY_LIMIT"`

	HistoryDepth       int `env:"HISTORY_DEPTH"`
	MaxSessions        int `env:"MAX_SESSIONS"`
	SessionIdleMinutes int `env:"SESSION_IDLE_MINUTES"`

	MetricsDisabled bool `env:"METRICS_DISABLED"`
}

// ReadConfig читает переменные окружения и дополняет пустые значения значениями по умолчанию.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)

	if config.DatabaseDSN == "" {
		config.DatabaseDSN = DefaultDatabaseDSN
	}
	if config.ListenAddr == "" {
		config.ListenAddr = DefaultListenAddr
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = DefaultMetricsAddr
	}
	if config.BodyLimit == "" {
		config.BodyLimit = DefaultBodyLimit
	}

	if config.HistoryDepth <= 0 {
		config.HistoryDepth = DefaultHistoryDepth
	}
	if config.HistoryDepth > MaxHistoryDepth {
		config.HistoryDepth = MaxHistoryDepth
	}

	if config.MaxSessions <= 0 {
		config.MaxSessions = DefaultMaxSessions
	}

	if config.SessionIdleMinutes <= 0 {
		config.SessionIdleMinutes = DefaultIdleMinutes
	}

	return config
}

func (c *Config) SessionIdle() time.Duration {
	return time.Duration(c.SessionIdleMinutes) * time.Minute
}

// IsPostgres - DSN указывает на PostgreSQL, иначе используется файл SQLite.
func (c *Config) IsPostgres() bool {
	return strings.HasPrefix(c.DatabaseDSN, "postgres://") || strings.HasPrefix(c.DatabaseDSN, "postgresql://")
}

// envConfig присваивает полям структуры значения переменных окружения. Имя переменной берется
// из тега key. Нечисловое значение для int и некорректное для bool пропускается с предупреждением.
func envConfig(key string, s interface{}) {
	v := reflect.ValueOf(s).Elem()
	typeParam := v.Type()
	for i := 0; i < v.NumField(); i++ {
		fName := typeParam.Field(i).Name
		fEnvTag := typeParam.Field(i).Tag.Get(key)
		if fEnvTag == "" {
			continue
		}

		value, ok := os.LookupEnv(fEnvTag)
		if !ok || value == "" {
			continue
		}

		field := v.Field(i)
		switch field.Kind() {
		case reflect.String:
			field.SetString(value)
		case reflect.Int:
			n, err := strconv.Atoi(value)
			if err != nil {
				slog.Warn("Skip config value", "key", fEnvTag, "err", err)
				continue
			}
			field.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(value)
			if err != nil {
				slog.Warn("Skip config value", "key", fEnvTag, "err", err)
				continue
			}
			field.SetBool(b)
		default:
			continue
		}

		slog.Info("Set config value",
			slog.String("key", typeParam.Name()+"."+fName),
			slog.String("value", maskValue(fName, value)),
			slog.String("source", "ENVIRONMENT"),
		)
	}
}

// maskValue скрывает секреты в логах: пароли целиком, кроме крайних символов, и пароль внутри DSN.
func maskValue(field, value string) string {
	name := strings.ToLower(field)
	if strings.Contains(name, "pass") || strings.Contains(name, "secret") || strings.Contains(name, "token") {
		return maskSecret(value)
	}
	if strings.Contains(name, "dsn") {
		if u, err := url.Parse(value); err == nil && u.User != nil {
			return u.Redacted()
		}
	}
	return value
}

func maskSecret(value string) string {
	pass := strings.Split(value, "")
	if len(pass) < 3 {
		return strings.Repeat("*", len(pass))
	}
	res := pass[0]
	for i := 1; i < len(pass)-1; i++ {
		res += "*"
	}
	return res + pass[len(pass)-1]
}
