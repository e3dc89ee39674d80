// Package phone converts phone numbers between the form's US display format,
// the canonical international format used for storage and equality
// comparison (+<country code><national digits>), and legacy stored values.
package phone

import (
	"strings"
)

const DefaultCountryCode = "1"

// Parsed is a stored phone number split for pre-filling the form.
type Parsed struct {
	CountryCode    string `json:"phoneCountryCode"`
	NationalDigits string `json:"phoneNational"`
}

// Digits strips everything that is not an ASCII digit.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatForDisplay renders up to 10 digits progressively as (xxx) xxx-xxxx.
// Partial input yields partial formatting; empty input yields "".
func FormatForDisplay(raw string) string {
	d := Digits(raw)
	if len(d) > 10 {
		d = d[:10]
	}
	switch {
	case len(d) == 0:
		return ""
	case len(d) <= 3:
		return "(" + d
	case len(d) <= 6:
		return "(" + d[:3] + ") " + d[3:]
	default:
		return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
	}
}

// ToCanonical returns +<code><digits>, or "" when the number is incomplete.
// US/Canada numbers need exactly 10 national digits; other countries need at
// least one digit and are not length-checked.
func ToCanonical(countryCode, nationalDigits string) string {
	code := Digits(countryCode)
	if code == "" {
		code = DefaultCountryCode
	}
	digits := Digits(nationalDigits)

	if code == DefaultCountryCode {
		if len(digits) != 10 {
			return ""
		}
		return "+" + code + digits
	}
	if len(digits) == 0 {
		return ""
	}
	return "+" + code + digits
}

// IsCanonical reports whether s is something ToCanonical could have produced.
func IsCanonical(s string) bool {
	if !strings.HasPrefix(s, "+") || len(s) < 3 {
		return false
	}
	if Digits(s[1:]) != s[1:] {
		return false
	}
	p := ParseCanonicalOrLegacy(s)
	return ToCanonical(p.CountryCode, p.NationalDigits) == s
}

// ParseCanonicalOrLegacy splits a stored value. Values with a leading + are
// canonical; anything else is a legacy US national number.
func ParseCanonicalOrLegacy(stored string) Parsed {
	trimmed := strings.TrimSpace(stored)
	if trimmed == "" {
		return Parsed{CountryCode: DefaultCountryCode}
	}

	digits := Digits(trimmed)

	if !strings.HasPrefix(trimmed, "+") {
		if len(digits) > 10 {
			digits = digits[:10]
		}
		return Parsed{CountryCode: DefaultCountryCode, NationalDigits: digits}
	}

	if strings.HasPrefix(digits, "1") {
		national := digits[1:]
		if len(national) > 10 {
			national = national[:10]
		}
		return Parsed{CountryCode: DefaultCountryCode, NationalDigits: national}
	}
	if len(digits) < 2 {
		if digits == "" {
			digits = DefaultCountryCode
		}
		return Parsed{CountryCode: digits}
	}

	// outside +1 the first two digits are taken as the country code
	return Parsed{CountryCode: digits[:2], NationalDigits: digits[2:]}
}
