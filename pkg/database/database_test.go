package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gradesync/pkg/config"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBootstrapSeedsAndIsRepeatable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, Bootstrap(ctx, db))
	require.NoError(t, Bootstrap(ctx, db))

	var scales []string
	require.NoError(t, db.SelectContext(ctx, &scales, "SELECT name FROM scale ORDER BY id"))
	assert.Equal(t, []string{"Level", "Percentage"}, scales)

	var labels int
	require.NoError(t, db.GetContext(ctx, &labels, "SELECT COUNT(*) FROM label"))
	assert.Equal(t, 2, labels)

	var types int
	require.NoError(t, db.GetContext(ctx, &types, "SELECT COUNT(*) FROM contact_type"))
	assert.Equal(t, 4, types)
}

func TestBootstrapEnforcesForeignKeys(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Bootstrap(ctx, db))

	_, err := db.ExecContext(ctx, "INSERT INTO student(given_name, family_name, course_id) VALUES ('a', 'b', 42)")
	assert.Error(t, err)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, Bootstrap(ctx, db))

	boom := errors.New("boom")
	err := WithTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO course(code) VALUES ('ENG4U1-01')"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM course"))
	assert.Zero(t, n)

	require.NoError(t, WithTx(ctx, db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO course(code) VALUES ('ENG4U1-01')")
		return err
	}))
	require.NoError(t, db.GetContext(ctx, &n, "SELECT COUNT(*) FROM course"))
	assert.Equal(t, 1, n)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
}

func TestTxOptionsPerDialect(t *testing.T) {
	db := openTestDB(t)
	assert.Nil(t, TxOptions(db))
}

func TestPostgresDSNQuotesValues(t *testing.T) {
	dsn := postgresDSN(config.DatabaseConfig{
		Host: "db", Port: 5432, User: "sync", Password: `it's secret`, Name: "gradesync", SSLMode: "disable",
	})
	assert.Equal(t, `host='db' port='5432' user='sync' password='it\'s secret' dbname='gradesync' sslmode='disable' application_name='gradesync'`, dsn)
}
