package domain

import "strings"

// NormalizeEmail lowercases and trims an email address so that two submissions
// differing only in case or surrounding whitespace compare equal.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeHumanName trims leading/trailing whitespace and collapses internal
// whitespace runs. It is used for customer display names.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
