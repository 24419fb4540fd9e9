// Package sqlutil provides small SQL helpers shared by the query engine.
package sqlutil

import "strings"

// QuoteIdentifier quotes a table or column name with backticks, escaping
// any embedded backticks.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Qualify returns a backtick-quoted table.column reference.
func Qualify(table, column string) string {
	return QuoteIdentifier(table) + "." + QuoteIdentifier(column)
}
