package notify

import "strings"

// NormalizePhone converts an Indonesian phone number to the 62-prefixed
// digits-only form WhatsApp providers expect.
func NormalizePhone(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	p := b.String()

	switch {
	case strings.HasPrefix(p, "62"):
		return p
	case strings.HasPrefix(p, "0"):
		return "62" + p[1:]
	default:
		return p
	}
}
