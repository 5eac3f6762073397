package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"wtfBlog/database"
	"wtfBlog/domain"
)

// Config is the app configuration, read from a .config.json file.
type Config struct {
	Port     int            `json:"port"`
	Env      string         `json:"env"`
	Pepper   string         `json:"pepper"`
	HMACKey  string         `json:"hmac_key"`
	CSRFKey  string         `json:"csrf_key"`
	PageSize int            `json:"page_size"`
	Database DatabaseConfig `json:"database"`
}

// IsProd reports whether the app runs in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// DatabaseConfig holds the connection settings of either dialect.
// Path is only read by sqlite, the other fields only by postgres.
type DatabaseConfig struct {
	Dialect  string `json:"dialect"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// ConnectionInfo returns the dsn gorm opens the database with.
func (dc DatabaseConfig) ConnectionInfo() string {
	if dc.Dialect == database.DialectSQLite {
		if dc.Path == ":memory:" {
			return database.SQLiteMemory()
		}
		return database.SQLiteFile(dc.Path)
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

// DefaultConfig is the dev setup, a sqlite file in the working directory.
func DefaultConfig() Config {
	return Config{
		Port:     1111,
		Env:      "dev",
		Pepper:   "secret-random-string",
		HMACKey:  "secret-hmac-key",
		CSRFKey:  "32-byte-long-csrf-key-for-dev-!!",
		PageSize: domain.DefaultPageSize,
		Database: DefaultDatabaseConfig(),
	}
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Dialect: database.DialectSQLite,
		Path:    "wtf_blog.db",
	}
}

// DefaultPostgresConfig is what a local postgres installation usually looks like.
func DefaultPostgresConfig() DatabaseConfig {
	return DatabaseConfig{
		Dialect: database.DialectPostgres,
		Host:    "localhost",
		Port:    5432,
		User:    "postgres",
		Name:    "wtf_blog",
	}
}

// LoadConfig reads the config file at path. Without a file, the default dev setup is
// used, unless we're in production where the file is required. Fields missing from
// the file keep their default values.
func LoadConfig(path string, isProd bool) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if isProd {
			return Config{}, errors.Wrapf(err, "a %s file is required in production", path)
		}
		return DefaultConfig(), nil
	}
	defer f.Close()

	c := DefaultConfig()
	if err := json.NewDecoder(f).Decode(&c); err != nil {
		return Config{}, errors.Wrapf(err, "decoding %s", path)
	}
	if isProd {
		c.Env = "prod"
	}
	return c, nil
}
