package service

import (
	"fmt"
	"maps"
	"net/mail"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits mirror the column sizes in migrations.
const (
	maxNameLength     = 30
	maxEmailLength    = 50
	minPasswordLength = 8
	maxPasswordLength = 256
	maxTitleLength    = 50
	maxAuthorLength   = 50

	// MinBookYear is the oldest publication year accepted for a listing.
	MinBookYear = 2020
)

var weakPasswords = []string{"password123", "qwerty123"}

// ValidationError lists every invalid input field with a reason.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = reason
	}
}

// err returns nil when nothing was recorded.
func (e *ValidationError) err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func validateName(v *ValidationError, field, value string) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		v.add(field, "must not be empty")
	case utf8.RuneCountInString(value) > maxNameLength:
		v.add(field, fmt.Sprintf("must be at most %d characters", maxNameLength))
	}
}

func validateEmail(v *ValidationError, value string) {
	if utf8.RuneCountInString(value) > maxEmailLength {
		v.add("e_mail", fmt.Sprintf("must be at most %d characters", maxEmailLength))
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add("e_mail", "must be a valid email address")
	}
}

// validatePassword enforces the password policy. Reasons never echo the password.
func validatePassword(v *ValidationError, password string) {
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength || n > maxPasswordLength {
		v.add("password", fmt.Sprintf("must be between %d and %d characters", minPasswordLength, maxPasswordLength))
		return
	}

	var lower, upper, digit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			v.add("password", "must not contain whitespace")
			return
		case unicode.Is(unicode.Cyrillic, r):
			v.add("password", "must not contain Cyrillic letters")
			return
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	switch {
	case !lower:
		v.add("password", "must contain a lowercase letter")
	case !upper:
		v.add("password", "must contain an uppercase letter")
	case !digit:
		v.add("password", "must contain a digit")
	case slices.Contains(weakPasswords, strings.ToLower(password)):
		v.add("password", "is too common")
	}
}

func validateBookFields(v *ValidationError, title, author string, year, pages, currentYear int) {
	validateText(v, "title", title, maxTitleLength)
	validateText(v, "author", author, maxAuthorLength)

	if year < MinBookYear || year > currentYear {
		v.add("year", fmt.Sprintf("must be between %d and %d", MinBookYear, currentYear))
	}
	if pages <= 0 {
		v.add("count_pages", "must be positive")
	}
}

func validateText(v *ValidationError, field, value string, limit int) {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		v.add(field, "must not be empty")
	case utf8.RuneCountInString(value) > limit:
		v.add(field, fmt.Sprintf("must be at most %d characters", limit))
	}
}
