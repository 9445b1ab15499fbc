package shout

import "strings"

// Loud upper-cases s and appends an exclamation mark.
func Loud(s string) string {
	return strings.ToUpper(s) + "!"
}
