package location

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/Kyz7/hub/internal/models"
)

var (
	postcodePattern = regexp.MustCompile(`^\d{5}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	phonePattern    = regexp.MustCompile(`^\+380\d{9}$`)
)

// NormalizePhone turns the usual Ukrainian spellings ("067 123 45 67",
// "380671234567", "+38 (067) 123-45-67") into +380XXXXXXXXX.
func NormalizePhone(raw string) (string, bool) {
	n := phoneSeparators.Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(n, "+380"):
	case strings.HasPrefix(n, "380"):
		n = "+" + n
	case strings.HasPrefix(n, "0") && len(n) == 10:
		n = "+38" + n
	}
	if !phonePattern.MatchString(n) {
		return "", false
	}
	return n, true
}

func ValidPostcode(s string) bool {
	return postcodePattern.MatchString(s)
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validStatus(s models.DisplayStatus) bool {
	return s == models.StatusHide || s == models.StatusDisplay
}
