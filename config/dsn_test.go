package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	p := ConnectionParameters{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Database: "postgres",
	}

	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=postgres",
		p.DSN())

	p.SSLMode = "require"
	assert.Contains(t, p.DSN(), "sslmode=require")
}

func TestQuoteDSN(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{"empty", "", "''"},
		{"plain", "postgres", "postgres"},
		{"hyphen and dot", "db-1.internal", "db-1.internal"},
		{"space", "my database", "'my database'"},
		{"single quote", "o'brien", `'o\'brien'`},
		{"backslash", `a\b`, `'a\\b'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, quoteDSN(tt.value))
		})
	}
}
