package checker

import "strings"

// SplitStatements splits a SQL text on semicolons, ignoring semicolons
// inside quoted strings. Empty fragments are dropped.
func SplitStatements(sqlContent string) []string {
	var statements []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false

	for _, char := range sqlContent {
		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
		case char == ';' && !inSingleQuote && !inDoubleQuote:
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteRune(char)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}

// stringLiterals returns the contents of single-quoted literals, the only
// place user-controlled values can hide inside a statement.
func stringLiterals(stmt string) []string {
	var literals []string
	var current strings.Builder
	inQuote := false
	for _, char := range stmt {
		if char == '\'' {
			if inQuote {
				literals = append(literals, current.String())
				current.Reset()
			}
			inQuote = !inQuote
			continue
		}
		if inQuote {
			current.WriteRune(char)
		}
	}
	return literals
}
