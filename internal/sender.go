package internal

import (
	"regexp"
	"strings"
)

// senderStripper removes zero-width, directional and BOM characters plus tilde decorations
var senderStripper = strings.NewReplacer(
	"\u200b", "", "\u200c", "", "\u200d", "", "\u200e", "", "\u200f", "",
	"\u202a", "", "\u202b", "", "\u202c", "", "\u202d", "", "\u202e", "",
	"\u2066", "", "\u2067", "", "\u2068", "", "\u2069", "",
	"\ufeff", "", "~", "",
)

var (
	phonePrefix = regexp.MustCompile(`^\+\d`)
	maskedPhone = regexp.MustCompile(`^\+\d*\*{5}\d{4}$`)
	nonDigit    = regexp.MustCompile(`\D`)
)

const (
	minPhoneDigits   = 8
	nationalDigits   = 10
	fallbackCodeSize = 2
)

// CleanSender normalizes a raw sender field into a display identity.
// Phone-number identities are masked to "+<country>*****<last4>".
// CleanSender(CleanSender(s)) == CleanSender(s).
func CleanSender(raw string) string {
	s := senderStripper.Replace(raw)
	s = strings.Join(strings.Fields(s), " ")

	if !phonePrefix.MatchString(s) || maskedPhone.MatchString(s) {
		return s
	}

	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) < minPhoneDigits {
		return s
	}

	country := digits[:fallbackCodeSize]
	if len(digits) > nationalDigits {
		country = digits[:len(digits)-nationalDigits]
	}
	return "+" + country + "*****" + digits[len(digits)-4:]
}
