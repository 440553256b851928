package whatsapp

import (
	"strings"

	"github.com/sagi-ba/photo-to-photo/internal/domain"
)

// CountryPrefix is the international prefix substituted for a leading "0".
const CountryPrefix = "972"

// minPhoneDigits is the shortest digit string accepted from users.
const minPhoneDigits = 9

// ValidatePhone rejects malformed user input before any network call:
// digits only, at least nine of them.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if len(phone) < minPhoneDigits {
		return domain.ErrInvalidPhone
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return domain.ErrInvalidPhone
		}
	}
	return nil
}

// NormalizePhone converts a digit string to international form: non-digits
// are stripped, a leading "0" is replaced by the country prefix, and the
// prefix is prepended when absent. The function is idempotent.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	clean := digits.String()
	switch {
	case clean == "":
		return ""
	case strings.HasPrefix(clean, "0"):
		return CountryPrefix + clean[1:]
	case strings.HasPrefix(clean, CountryPrefix):
		return clean
	default:
		return CountryPrefix + clean
	}
}
