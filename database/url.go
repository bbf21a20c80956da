package database

import (
	"fmt"
	"strings"
)

// Driver identifies the storage engine behind a database URL
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDatabaseURL picks the driver for url. postgres:// and postgresql://
// URLs select PostgreSQL; sqlite:// URLs and bare paths select SQLite, in
// which case the returned location is the file path.
func ParseDatabaseURL(url string) (Driver, string, error) {
	url = strings.TrimSpace(url)
	switch {
	case url == "":
		return "", "", fmt.Errorf("database URL is empty")
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, url, nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(url, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite URL has no path")
		}
		return DriverSQLite, path, nil
	case strings.Contains(url, "://"):
		return "", "", fmt.Errorf("unsupported database scheme in %q", url)
	default:
		return DriverSQLite, url, nil
	}
}

// ConstructDatabaseURL combines a PostgreSQL base URL with a database name and
// adds sslmode=disable when no sslmode is present
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	var databaseURL string

	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}
