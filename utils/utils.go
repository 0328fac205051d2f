package utils

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/text/unicode/norm"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}

func GenerateSlug(name string) string {
	// strip accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := strings.ToLower(b.String())
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func ParseIntDefault(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// ParseFloatQuery returns nil when the value is absent.
func ParseFloatQuery(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
