// Package builder provides the SQL generation primitives shared by the model
// layer: a squirrel statement builder configured for PostgreSQL placeholders
// and identifier escaping for table and column names.
package builder

import (
	"strings"

	"github.com/Masterminds/squirrel"
)

// New returns a statement builder using PostgreSQL $1, $2, ... placeholders.
func New() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// EscapeIdentifier quotes a table or column name as a PostgreSQL identifier.
// Dotted names are quoted part by part (schema.table), already quoted parts
// are left alone, and embedded quotes are doubled so untrusted configuration
// can never break out of the identifier position.
func EscapeIdentifier(identifier string) string {
	parts := strings.Split(identifier, ".")
	for i, part := range parts {
		if len(part) >= 2 && part[0] == '"' && part[len(part)-1] == '"' {
			continue
		}
		parts[i] = `"` + strings.ReplaceAll(part, `"`, `""`) + `"`
	}

	return strings.Join(parts, ".")
}

// EscapeIdentifiers escapes every name in the list.
func EscapeIdentifiers(identifiers []string) []string {
	escaped := make([]string, len(identifiers))
	for i, id := range identifiers {
		escaped[i] = EscapeIdentifier(id)
	}
	return escaped
}
