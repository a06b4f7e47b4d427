package core

import "strings"

// Normalize lower-cases text, collapses whitespace runs to a single space and
// trims the ends. It is idempotent.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}
