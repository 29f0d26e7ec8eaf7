package db

import (
	"github.com/Masterminds/squirrel"

	"github.com/cheesedrawer/dbmodel/db/internal/builder"
)

// StatementBuilder returns a squirrel builder configured for PostgreSQL
// placeholders. All model-layer SQL is generated through it so data values
// always travel as bound parameters.
func StatementBuilder() squirrel.StatementBuilderType {
	return builder.New()
}

// EscapeIdentifier quotes a table or column name as a PostgreSQL identifier.
func EscapeIdentifier(identifier string) string {
	return builder.EscapeIdentifier(identifier)
}

// EscapeIdentifiers quotes every name in the list.
func EscapeIdentifiers(identifiers []string) []string {
	return builder.EscapeIdentifiers(identifiers)
}
