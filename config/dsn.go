package config

import (
	"fmt"
	"strings"
)

// DSN renders the parameters as a libpq keyword/value connection string.
// Both client implementations parse this through pgx.
func (p ConnectionParameters) DSN() string {
	parts := []string{
		fmt.Sprintf("host=%s", quoteDSN(p.Host)),
		fmt.Sprintf("port=%d", p.Port),
		fmt.Sprintf("user=%s", quoteDSN(p.User)),
		fmt.Sprintf("password=%s", quoteDSN(p.Password)),
		fmt.Sprintf("dbname=%s", quoteDSN(p.Database)),
	}

	if p.SSLMode != "" {
		parts = append(parts, fmt.Sprintf("sslmode=%s", p.SSLMode))
	}

	return strings.Join(parts, " ")
}

// quoteDSN quotes a DSN value according to libpq rules:
// empty values become '', backslashes and single quotes are escaped, and the
// value is wrapped in single quotes when it contains special characters.
func quoteDSN(value string) string {
	if value == "" {
		return "''"
	}

	needsQuoting := false
	for _, r := range value {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') &&
			(r < '0' || r > '9') && r != '.' && r != '_' && r != '-' {
			needsQuoting = true
			break
		}
	}

	if !needsQuoting {
		return value
	}

	escaped := strings.ReplaceAll(value, "\\", "\\\\")
	escaped = strings.ReplaceAll(escaped, "'", "\\'")

	return "'" + escaped + "'"
}
