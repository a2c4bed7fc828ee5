package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		password string
		valid    bool
	}{
		{"valid", "Ivan123/", true},
		{"valid max length", "Aa1" + strings.Repeat("x", 253), true},
		{"too short", "Iv12/", false},
		{"too long", "Aa1" + strings.Repeat("x", 254), false},
		{"whitespace", "Ivan 123/", false},
		{"tab", "Ivan\t123/", false},
		{"cyrillic", "Иван123/A", false},
		{"no lowercase", "IVAN123/", false},
		{"no uppercase", "ivan123/", false},
		{"no digit", "Ivanovich/", false},
		{"weak list any case", "Password123", false},
		{"weak list upper", "QWERTY123a", true},
		{"weak list qwerty", "Qwerty123", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := &ValidationError{}
			validatePassword(v, tt.password)
			if tt.valid {
				assert.Empty(t, v.Fields)
				return
			}
			require.Contains(t, v.Fields, "password")
			assert.NotContains(t, v.Fields["password"], tt.password)
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		email string
		valid bool
	}{
		{"ivan@ivanov.com", true},
		{"Ivan.Petrov+books@mail.example.org", true},
		{"", false},
		{"not-an-email", false},
		{"Ivan <ivan@ivanov.com>", false},
		{" ivan@ivanov.com", false},
		{strings.Repeat("a", 40) + "@example.com", false},
	}

	for _, tt := range tests {
		v := &ValidationError{}
		validateEmail(v, tt.email)
		assert.Equal(t, tt.valid, len(v.Fields) == 0, "email %q", tt.email)
	}
}

func TestValidateName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		valid bool
	}{
		{"Ivan", true},
		{"Иван", true},
		{strings.Repeat("n", 30), true},
		{strings.Repeat("n", 31), false},
		{"", false},
		{"   ", false},
	}

	for _, tt := range tests {
		v := &ValidationError{}
		validateName(v, "first_name", tt.value)
		assert.Equal(t, tt.valid, len(v.Fields) == 0, "name %q", tt.value)
	}
}

func TestValidateBookFields(t *testing.T) {
	t.Parallel()

	const currentYear = 2026

	tests := []struct {
		name   string
		title  string
		author string
		year   int
		pages  int
		fields []string
	}{
		{"valid", "Clean Code", "Robert Martin", 2025, 464, nil},
		{"min year", "Go", "Pike", MinBookYear, 1, nil},
		{"current year", "Go", "Pike", currentYear, 1, nil},
		{"too old", "Go", "Pike", 1986, 10, []string{"year"}},
		{"future", "Go", "Pike", currentYear + 1, 10, []string{"year"}},
		{"zero pages", "Go", "Pike", 2021, 0, []string{"count_pages"}},
		{"empty title", "", "Pike", 2021, 10, []string{"title"}},
		{"long author", "Go", strings.Repeat("a", 51), 2021, 10, []string{"author"}},
		{"everything", "", "", 0, -1, []string{"title", "author", "year", "count_pages"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := &ValidationError{}
			validateBookFields(v, tt.title, tt.author, tt.year, tt.pages, currentYear)
			assert.Len(t, v.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, v.Fields, f)
			}
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()

	v := &ValidationError{}
	assert.NoError(t, v.err())

	v.add("year", "must be between 2020 and 2026")
	v.add("title", "must not be empty")
	v.add("title", "ignored second reason")

	err := v.err()
	require.Error(t, err)
	assert.Equal(t, "validation failed: title: must not be empty; year: must be between 2020 and 2026", err.Error())
}
