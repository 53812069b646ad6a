package vault

import "strings"

// sanitizeNumber strips the separators people type into card fields.
func sanitizeNumber(number string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, number)
}

// luhnValid reports whether number is 12 to 19 digits with a valid mod-10 check digit.
func luhnValid(number string) bool {
	if len(number) < 12 || len(number) > 19 {
		return false
	}
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		c := number[i]
		if c < '0' || c > '9' {
			return false
		}
		d := int(c - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

var eloPrefixes = []string{
	"4011", "4312", "4389", "4514", "4576", "5041", "5066", "5067", "509",
	"6277", "6362", "6363", "650", "6516", "6550",
}

// Brand derives the card network from the IIN. Elo and Hipercard are checked first
// because their ranges overlap Visa and Discover.
func Brand(number string) string {
	switch {
	case hasAnyPrefix(number, eloPrefixes...):
		return "elo"
	case hasAnyPrefix(number, "606282", "3841"):
		return "hipercard"
	case hasAnyPrefix(number, "34", "37"):
		return "amex"
	case strings.HasPrefix(number, "4"):
		return "visa"
	case inRange(number, 2, 51, 55), inRange(number, 4, 2221, 2720):
		return "mastercard"
	case hasAnyPrefix(number, "6011", "65"), inRange(number, 3, 644, 649):
		return "discover"
	}
	return "unknown"
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// inRange checks whether the first n digits of s fall in [lo, hi].
func inRange(s string, n, lo, hi int) bool {
	if len(s) < n {
		return false
	}
	v := 0
	for _, c := range s[:n] {
		if c < '0' || c > '9' {
			return false
		}
		v = v*10 + int(c-'0')
	}
	return v >= lo && v <= hi
}
