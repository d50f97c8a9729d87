package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugRegex       = regexp.MustCompile(`[^a-z0-9-]+`)
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Slugify turns a title into a URL slug. Accents are stripped and Cyrillic
// is transliterated, so "Нова Сторінка" becomes "nova-storinka".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)
	result = strings.Join(strings.Fields(result), "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// SlugWithSuffix appends a short random suffix used when a slug collides.
func SlugWithSuffix(slug string) string {
	return slug + "-" + strings.ToLower(RandomString(4))
}
