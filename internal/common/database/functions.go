package database

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/tracetool/tracetool/internal/common/tracetoolerrors"
)

const (
	connectAttempts   = 3
	connectRetryDelay = 500 * time.Millisecond
)

func CreateConnectionString(values map[string]string) string {
	// https://www.postgresql.org/docs/10/libpq-connect.html#id-1.7.3.8.3.5
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "='" + replacer.Replace(values[k]) + "'"
	}
	return strings.Join(parts, " ")
}

// Open connects to the configured event store and wraps it in a goqu.Database using the matching dialect.
// The returned function closes the connection.
func Open(config Config) (*goqu.Database, func(), error) {
	switch config.Type {
	case Sqlite, "":
		return OpenSqlite(config.Path)
	case Postgres:
		return OpenPostgres(config.Postgres)
	default:
		return nil, func() {}, &tracetoolerrors.ErrInput{Name: "database.type", Value: config.Type, Message: "must be sqlite or postgres"}
	}
}

// OpenSqlite opens an existing sqlite database file. A leading ~ is expanded to the home directory.
func OpenSqlite(path string) (*goqu.Database, func(), error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, func() {}, &tracetoolerrors.ErrInput{Name: "database.path", Value: path, Message: err.Error()}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, func() {}, tracetoolerrors.NewStoreError(fmt.Sprintf("open sqlite database %s", path), err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, func() {}, tracetoolerrors.NewStoreError(fmt.Sprintf("open sqlite database %s", path), err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, func() {}, tracetoolerrors.NewStoreError("enable write-ahead logging", err)
	}
	return goqu.New("sqlite3", db), closer(db), nil
}

// OpenPostgres connects to postgres through the pgx database/sql driver.
func OpenPostgres(config PostgresConfig) (*goqu.Database, func(), error) {
	connConfig, err := pgx.ParseConfig(CreateConnectionString(config.Connection))
	if err != nil {
		return nil, func() {}, &tracetoolerrors.ErrInput{Name: "database.postgres.connection", Value: "<redacted>", Message: err.Error()}
	}
	db := stdlib.OpenDB(*connConfig)
	err = retry.Do(
		db.Ping,
		retry.Attempts(connectAttempts),
		retry.Delay(connectRetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debugf("connecting to postgres failed (attempt %d): %v", n+1, err)
		}),
	)
	if err != nil {
		_ = db.Close()
		return nil, func() {}, tracetoolerrors.NewStoreError("connect to postgres", err)
	}
	return goqu.New("postgres", db), closer(db), nil
}

func closer(db *sql.DB) func() {
	return func() {
		if err := db.Close(); err != nil {
			log.Warnf("error closing database: %v", err)
		}
	}
}

// CreateSqlite creates (or truncates) an sqlite database file, used to set up fixtures.
func CreateSqlite(path string) (*goqu.Database, func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, func() {}, errors.WithStack(err)
	}
	if err := f.Close(); err != nil {
		return nil, func() {}, errors.WithStack(err)
	}
	return OpenSqlite(path)
}
