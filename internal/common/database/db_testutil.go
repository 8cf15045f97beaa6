package database

import (
	"os"
	"path/filepath"

	"github.com/doug-martin/goqu/v9"
	"github.com/pkg/errors"
)

// WithTestDb creates an sqlite database in a temporary directory for testing
//  schema: statements executed before entering the action callback
//  action: callback for client code
// The database and its directory are removed afterwards.
func WithTestDb(schema []string, action func(db *goqu.Database) error) error {
	dir, err := os.MkdirTemp("", "tracetool-test-")
	if err != nil {
		return errors.WithStack(err)
	}
	defer os.RemoveAll(dir)

	db, closeDb, err := CreateSqlite(filepath.Join(dir, "test.db"))
	if err != nil {
		return err
	}
	defer closeDb()

	for _, statement := range schema {
		if _, err := db.Exec(statement); err != nil {
			return errors.Wrapf(err, "executing %q", statement)
		}
	}
	return action(db)
}
