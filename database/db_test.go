package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfBlog/domain"
)

func TestOpenMigrateReset(t *testing.T) {
	db := NewDB(DialectSQLite, SQLiteMemory())
	require.NoError(t, Open(db, true))
	defer Close(db)
	require.NoError(t, AutoMigrate(db))

	for _, m := range models() {
		assert.True(t, db.Gorm.Migrator().HasTable(m))
	}

	user := domain.User{Username: "leo", PasswordHash: "x", RememberHash: "y"}
	require.NoError(t, db.Gorm.Create(&user).Error)

	require.NoError(t, DestructiveReset(db))
	var count int64
	require.NoError(t, db.Gorm.Model(&domain.User{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestOpenRequiresConnectionInfo(t *testing.T) {
	assert.Error(t, Open(NewDB(DialectSQLite, ""), true))
	assert.Error(t, Open(NewDB("mysql", "x"), true))
}

func TestSQLiteMemoryIsPrivate(t *testing.T) {
	assert.NotEqual(t, SQLiteMemory(), SQLiteMemory())
}
