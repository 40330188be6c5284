package util

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

const DiaryDateLayout = "20060102"

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether the address has a plausible shape
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePasswordPolicy requires 8 to 72 bytes using at least three
// character classes out of upper case, lower case, digits and symbols.
func ValidatePasswordPolicy(password string) bool {
	if len(password) < 8 || len(password) > MaxPasswordBytes {
		return false
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	classes := 0
	for _, ok := range []bool{upper, lower, digit, special} {
		if ok {
			classes++
		}
	}
	return classes >= 3
}

// ParseDiaryDate parses an 8-digit YYYYMMDD date and rejects impossible days
func ParseDiaryDate(date string) (time.Time, bool) {
	if len(date) != 8 {
		return time.Time{}, false
	}
	for _, r := range date {
		if r < '0' || r > '9' {
			return time.Time{}, false
		}
	}
	t, err := time.Parse(DiaryDateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// IsNumericCode reports whether code consists of exactly length decimal digits
func IsNumericCode(code string, length int) bool {
	if len(code) != length {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
