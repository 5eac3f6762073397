package database

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wtfBlog/domain"
)

// Supported values of DB.Dialect.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

// DB provides the database connection.
type DB struct {
	// Object-relational mapping.
	Gorm *gorm.DB
	// Either DialectPostgres or DialectSQLite.
	Dialect string
	// Connection info string containing database name, user, port etc.
	// For sqlite it's the file name or an in-memory uri.
	ConnectionInfo string
}

// NewDB returns a new instance of DB.
func NewDB(dialect, connectionInfo string) *DB {
	return &DB{
		Dialect:        dialect,
		ConnectionInfo: connectionInfo,
	}
}

// Open opens a new database connection. It also configures logging
// based on whether we're in development or in production.
func Open(db *DB, isProd bool) (err error) {
	if db.ConnectionInfo == "" {
		return fmt.Errorf("connectionInfo required")
	}
	logMode := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if !isProd {
		logMode.Logger = logger.Default.LogMode(logger.Info)
	}
	switch db.Dialect {
	case DialectPostgres, "":
		db.Gorm, err = gorm.Open(postgres.Open(db.ConnectionInfo), logMode)
		if err != nil {
			return fmt.Errorf("err opening gorm postgres connection: %w", err)
		}
	case DialectSQLite:
		db.Gorm, err = gorm.Open(sqlite.Open(db.ConnectionInfo), logMode)
		if err != nil {
			return fmt.Errorf("err opening gorm sqlite connection: %w", err)
		}
		// sqlite serializes writers anyway, and in-memory databases
		// only live as long as their single connection.
		sqlDb, err := db.Gorm.DB()
		if err != nil {
			return err
		}
		sqlDb.SetMaxOpenConns(1)
	default:
		return fmt.Errorf("unknown dialect %q", db.Dialect)
	}
	return nil
}

// SQLiteMemory returns the connection info of a fresh, private in-memory sqlite database
// with foreign keys enforced.
func SQLiteMemory() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
}

// SQLiteFile returns the connection info of a file backed sqlite database.
func SQLiteFile(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on", path)
}

// models lists every table in dependency order, parents first.
func models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Group{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Follow{},
	}
}

// AutoMigrate runs database migrations for all tables.
func AutoMigrate(db *DB) error {
	return db.Gorm.AutoMigrate(models()...)
}

// DestructiveReset drops all tables and rebuilds them.
func DestructiveReset(db *DB) error {
	m := models()
	// Children first, so that no foreign key blocks a drop.
	for i := len(m) - 1; i >= 0; i-- {
		if err := db.Gorm.Migrator().DropTable(m[i]); err != nil {
			return err
		}
	}
	return AutoMigrate(db)
}

// Close closes the database connection.
func Close(db *DB) error {
	sqlDb, err := db.Gorm.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}
