// Package privacy normalizes and one-way hashes personal identifiers before
// they are handed to advertising platforms.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// CountryCode is Egypt's calling code, used to turn local numbers into E.164 digits.
const CountryCode = "20"

// Hash returns the hex SHA-256 digest of an already normalized value.
// Empty input yields an empty string so callers can omit the field.
func Hash(normalized string) string {
	if normalized == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

func HashEmail(raw string) string {
	return Hash(NormalizeEmail(raw))
}

func HashPhone(raw string) string {
	return Hash(NormalizePhone(raw))
}

func HashExternalID(raw string) string {
	return Hash(NormalizeExternalID(raw))
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func NormalizeExternalID(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizePhone keeps digits only and rewrites local numbers to start with
// the country code: "010 1234-5678" -> "201012345678".
func NormalizePhone(raw string) string {
	digits := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9':
			return r
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		}
		return -1
	}, raw)

	switch {
	case digits == "":
		return ""
	case strings.HasPrefix(digits, "00"):
		return digits[2:]
	case strings.HasPrefix(digits, "0"):
		return CountryCode + digits[1:]
	case strings.HasPrefix(digits, CountryCode):
		return digits
	default:
		return CountryCode + digits
	}
}
