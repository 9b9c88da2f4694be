package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "contacteur.db", cfg.Database.Path)
	assert.Equal(t, "https://french.compassforsuccess.ca", cfg.Portal.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Portal.Timeout)
	assert.Equal(t, "Level", cfg.Gradebook.DefaultScale)
	assert.Equal(t, "Retakes", cfg.Gradebook.RetakeSheet)
	assert.False(t, cfg.Exports.CSV)
	assert.Equal(t, 10, cfg.Exports.Keep)
}

func TestLoadFileReadsEnvFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DB_DRIVER=POSTGRES\nPORTAL_TIMEOUT=5s\nPORTAL_BASE_URL=http://portal.test/\nEXPORTS_CSV=true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("GRADEBOOK_PATH", "/tmp/book.xlsx")
	t.Setenv("PORTAL_TIMEOUT", "bogus")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "http://portal.test", cfg.Portal.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Portal.Timeout)
	assert.Equal(t, "/tmp/book.xlsx", cfg.Gradebook.Path)
	assert.True(t, cfg.Exports.CSV)
}
