package database

import (
	"database/sql/driver"
	"path/filepath"
	"testing"

	"github.com/doug-martin/goqu/v9"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

func TestCreateConnectionString(t *testing.T) {
	assert.Equal(t,
		`dbname='tracetool' host='localhost' password='p\'s\\w'`,
		CreateConnectionString(map[string]string{"host": "localhost", "dbname": "tracetool", "password": `p's\w`}),
	)
	assert.Equal(t, "", CreateConnectionString(nil))
}

func TestOpen_UnknownType(t *testing.T) {
	_, _, err := Open(Config{Type: "mysql"})
	assert.True(t, tracetoolerrors.IsInput(err))
}

func TestOpenSqlite_MissingFile(t *testing.T) {
	_, _, err := OpenSqlite(filepath.Join(t.TempDir(), "missing.db"))
	assert.True(t, tracetoolerrors.IsStore(err))
}

func TestWithTestDb(t *testing.T) {
	err := WithTestDb([]string{"CREATE TABLE t (x INTEGER)", "INSERT INTO t VALUES (1), (2)"}, func(db *goqu.Database) error {
		var count int64
		found, err := db.From("t").Select(goqu.COUNT("*")).ScanVal(&count)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(2), count)
		return nil
	})
	require.NoError(t, err)
}

func TestOpenSqlite_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	db, closeDb, err := CreateSqlite(filepath.Join(home, "events.db"))
	require.NoError(t, err)
	closeDb()
	require.NotNil(t, db)

	_, closeDb, err = OpenSqlite("~/events.db")
	require.NoError(t, err)
	closeDb()
}

func TestErrorClassification(t *testing.T) {
	tests := map[string]struct {
		err            error
		connection     bool
		undefinedTable bool
	}{
		"bad connection":  {err: errors.WithStack(driver.ErrBadConn), connection: true},
		"connection lost": {err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, connection: true},
		"undefined table": {err: errors.Wrap(&pgconn.PgError{Code: pgerrcode.UndefinedTable}, "select"), undefinedTable: true},
		"syntax error":    {err: &pgconn.PgError{Code: pgerrcode.SyntaxError}},
		"other":           {err: errors.New("boom")},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.connection, IsConnectionError(tc.err))
			assert.Equal(t, tc.undefinedTable, IsUndefinedTable(tc.err))
		})
	}
}
