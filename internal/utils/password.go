package utils

import "unicode"

// ValidPassword requires at least 6 characters including a lower case letter,
// an upper case letter and a digit or symbol.
func ValidPassword(p string) bool {
	if len([]rune(p)) < 6 {
		return false
	}
	var lower, upper, other bool
	for _, r := range p {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r), !unicode.IsLetter(r):
			other = true
		}
	}
	return lower && upper && other
}
