package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	titleCaser = cases.Title(language.English)
	upperCaser = cases.Upper(language.English)
)

// collapseSpaces trims s and squeezes inner whitespace runs to one space.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEntityName title-cases an organization name:
// "computer science club" becomes "Computer Science Club".
func NormalizeEntityName(name string) string {
	return titleCaser.String(strings.ToLower(collapseSpaces(name)))
}

// NormalizePersonName upper-cases a person's name.
func NormalizePersonName(name string) string {
	return upperCaser.String(collapseSpaces(name))
}

// NormalizeCode upper-cases an organization code and strips whitespace.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), ""))
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CouncilIdentity derives the code and name of a college's student council.
// Both the public preview and provisioning use it.
func CouncilIdentity(college *College) (code, name string) {
	code = NormalizeCode(college.Code) + "-SC"
	name = NormalizeEntityName(college.Name) + " Student Council"
	return code, name
}
