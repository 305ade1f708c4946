package database

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver identifies the SQL backend behind a Connection.
type Driver string

const (
	// DriverPostgres is PostgreSQL through pgx.
	DriverPostgres Driver = "postgres"
	// DriverSQLite is the embedded pure-Go SQLite driver.
	DriverSQLite Driver = "sqlite"
)

func (d Driver) String() string {
	return string(d)
}

// IsValid reports whether the driver is one ordo knows how to open.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// DetectDriver guesses the driver from a connection string.
// An empty string selects SQLite so the CLI works without any setup.
func DetectDriver(url string) Driver {
	switch {
	case url == "":
		return DriverSQLite
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite
	}
	for _, ext := range []string{".db", ".sqlite", ".sqlite3"} {
		if strings.HasSuffix(url, ext) {
			return DriverSQLite
		}
	}
	return DriverPostgres
}

// ParseDriver validates a configured driver name.
func ParseDriver(name string) (Driver, error) {
	d := Driver(strings.ToLower(strings.TrimSpace(name)))
	if !d.IsValid() {
		return "", fmt.Errorf("unsupported database driver: %q", name)
	}
	return d, nil
}

// Rebind rewrites '?' placeholders into the form the driver expects.
// Queries are written once with '?' and rebound for PostgreSQL ($1, $2, ...).
func Rebind(d Driver, query string) string {
	if d != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
