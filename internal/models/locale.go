package models

import (
	"strings"

	"golang.org/x/text/language"
)

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleUK Locale = "uk"

	// LocaleNone addresses the single unit of a non-localized item.
	LocaleNone Locale = ""
)

var Locales = []Locale{LocaleEN, LocaleUK}

var localeMatcher = language.NewMatcher([]language.Tag{language.English, language.Ukrainian})

func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleUK
}

// ParseLocale accepts "en", "uk", BCP 47 tags such as "uk-UA" and the
// legacy "ua" code. An empty string or "all" yields LocaleNone.
func ParseLocale(s string) (Locale, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "all", "single":
		return LocaleNone, true
	case "en":
		return LocaleEN, true
	case "uk", "ua":
		return LocaleUK, true
	}

	tag, err := language.Parse(s)
	if err != nil {
		return LocaleNone, false
	}
	base, _ := tag.Base()
	switch base.String() {
	case "en":
		return LocaleEN, true
	case "uk":
		return LocaleUK, true
	}
	return LocaleNone, false
}

// MatchLocale picks the preferred hub locale from an Accept-Language header.
func MatchLocale(acceptLanguage string) Locale {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return LocaleEN
	}
	_, idx, _ := localeMatcher.Match(tags...)
	if idx == 1 {
		return LocaleUK
	}
	return LocaleEN
}
