package shared

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nameCaser = cases.Title(language.Und, cases.NoLower)

// NormalizeName collapses whitespace and title-cases fully lowercased
// person names, leaving mixed-case input (e.g. "McGregor") untouched.
func NormalizeName(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	if name == strings.ToLower(name) {
		return nameCaser.String(name)
	}
	return name
}
