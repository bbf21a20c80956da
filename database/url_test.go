package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		driver   Driver
		location string
	}{
		{name: "postgres scheme", url: "postgres://u:p@localhost:5432/coin", driver: DriverPostgres, location: "postgres://u:p@localhost:5432/coin"},
		{name: "postgresql scheme", url: "postgresql://localhost/coin", driver: DriverPostgres, location: "postgresql://localhost/coin"},
		{name: "sqlite scheme", url: "sqlite://data/coin.db", driver: DriverSQLite, location: "data/coin.db"},
		{name: "bare path", url: "coin.db", driver: DriverSQLite, location: "coin.db"},
		{name: "surrounding whitespace", url: "  coin.db \n", driver: DriverSQLite, location: "coin.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver, location, err := ParseDatabaseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestParseDatabaseURL_Errors(t *testing.T) {
	for _, url := range []string{"", "   ", "mysql://localhost/coin", "sqlite://"} {
		_, _, err := ParseDatabaseURL(url)
		assert.Error(t, err, url)
	}
}

func TestConstructDatabaseURL(t *testing.T) {
	tests := []struct {
		name         string
		baseURL      string
		databaseName string
		expected     string
	}{
		{name: "no database name", baseURL: "postgres://localhost:5432", databaseName: "", expected: "postgres://localhost:5432"},
		{name: "appends name and sslmode", baseURL: "postgres://localhost:5432/", databaseName: "coin", expected: "postgres://localhost:5432/coin?sslmode=disable"},
		{name: "keeps query parameters", baseURL: "postgres://localhost:5432?connect_timeout=5", databaseName: "coin", expected: "postgres://localhost:5432/coin?connect_timeout=5&sslmode=disable"},
		{name: "keeps explicit sslmode", baseURL: "postgres://localhost:5432?sslmode=require", databaseName: "coin", expected: "postgres://localhost:5432/coin?sslmode=require"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ConstructDatabaseURL(tt.baseURL, tt.databaseName))
		})
	}
}
