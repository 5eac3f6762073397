package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wtfBlog/database"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.json")

	c, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
	assert.False(t, c.IsProd())

	_, err = LoadConfig(path, true)
	assert.Error(t, err)
}

func TestLoadConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"port": 8080, "pepper": "pep", "database": {"dialect": "postgres", "host": "db", "port": 5432, "user": "blog", "password": "pw", "name": "blog"}}`)

	c, err := LoadConfig(path, true)
	require.NoError(t, err)
	assert.Equal(t, 8080, c.Port)
	assert.Equal(t, "pep", c.Pepper)
	assert.Equal(t, DefaultConfig().HMACKey, c.HMACKey)
	assert.Equal(t, 10, c.PageSize)
	assert.True(t, c.IsProd())
	assert.Equal(t, "host=db port=5432 user=blog password=pw dbname=blog sslmode=disable", c.Database.ConnectionInfo())
}

func TestLoadConfigInvalid(t *testing.T) {
	path := writeConfig(t, `{"port": "eighty"`)

	_, err := LoadConfig(path, false)
	assert.Error(t, err)
}

func TestConnectionInfo(t *testing.T) {
	pg := DefaultPostgresConfig()
	assert.Equal(t, "host=localhost port=5432 user=postgres dbname=wtf_blog sslmode=disable", pg.ConnectionInfo())

	lite := DatabaseConfig{Dialect: database.DialectSQLite, Path: "blog.db"}
	assert.Equal(t, "file:blog.db?_foreign_keys=on", lite.ConnectionInfo())

	mem := DatabaseConfig{Dialect: database.DialectSQLite, Path: ":memory:"}
	assert.True(t, strings.HasPrefix(mem.ConnectionInfo(), "file:"))
	assert.Contains(t, mem.ConnectionInfo(), "mode=memory")
	assert.NotEqual(t, mem.ConnectionInfo(), mem.ConnectionInfo())
}

func TestGroupCommands(t *testing.T) {
	dir := t.TempDir()
	configPath := writeConfig(t, `{"database": {"dialect": "sqlite", "path": "`+filepath.ToSlash(filepath.Join(dir, "blog.db"))+`"}}`)

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(append(args, "--config", configPath))
		require.NoError(t, rootCmd.Execute())
		return out.String()
	}

	run("migrate")
	run("group", "create", "cats", "--title", "Cats", "--description", "All about cats")
	run("group", "create", "dogs", "--title", "Dogs")
	assert.Equal(t, "1\tcats\tCats\n2\tdogs\tDogs\n", run("group", "list"))

	run("group", "delete", "cats")
	assert.Equal(t, "2\tdogs\tDogs\n", run("group", "list"))
}
