package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

type Storage struct {
	Connection *sql.DB
}

// New opens, or creates, the SQLite database found at the given path and
// idempotently applies the schema. An unreachable storage medium is a fatal
// startup-class error; there's no point in registering handlers without it.
func New(logger logrus.FieldLogger, path string) (storage Storage, err error) {

	logger.Println("initialising SQLite DB")

	connection, err := sql.Open("sqlite3", getConnectionString(path))
	if err != nil {
		return storage, fmt.Errorf("opening database %q: %w", path, err)
	}

	if _, err = connection.Exec(schema); err != nil {
		return storage, fmt.Errorf("ensuring database schema: %w", err)
	}

	// opening the DB will fail silently when the package is compiled without CGO_ENABLED
	if err = connection.Ping(); err != nil {
		return storage, fmt.Errorf("pinging database: %w", err)
	}

	storage.Connection = connection
	return storage, nil
}

// getConnectionString configures a busy timeout for concurrent request
// handlers. Foreign keys remain declared but unenforced: recipe deletion
// cleans dependants explicitly rather than through cascades.
func getConnectionString(path string) string {
	if strings.ContainsRune(path, '?') {
		return path + "&_busy_timeout=5000"
	}
	return path + "?_busy_timeout=5000"
}

func (s Storage) Close() error {
	return s.Connection.Close()
}
