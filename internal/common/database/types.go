package database

const (
	Sqlite   = "sqlite"
	Postgres = "postgres"
)

type Config struct {
	// Type of database backing the event store, either "sqlite" or "postgres".
	Type string `validate:"oneof=sqlite postgres"`
	// Path of the sqlite database file.
	Path     string
	Postgres PostgresConfig
}

type PostgresConfig struct {
	// libpq style connection parameters, e.g. host, port, user, password, dbname.
	Connection map[string]string
}
