package services

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// MaxNameRunes matches the varchar(100) natural keys of people and dogs.
const MaxNameRunes = 100

var whitespaceRE = regexp.MustCompile(`\s+`)

// NormalizeName trims, collapses inner whitespace and applies Unicode NFC so
// that visually identical names map to the same primary key.
func NormalizeName(s string) (string, error) {
	s = norm.NFC.String(whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " "))
	if s == "" || utf8.RuneCountInString(s) > MaxNameRunes {
		return "", ErrInvalidName
	}
	return s, nil
}
