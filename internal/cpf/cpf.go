// Package cpf validates Brazilian individual taxpayer numbers (CPF).
package cpf

import "strings"

// Length is the number of digits of a CPF
const Length = 11

// Digits keeps only the ASCII digits of s
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

// Validate reports whether s is a valid CPF. Formatting characters are
// ignored, so "111.444.777-35" and "11144477735" are both valid.
func Validate(s string) bool {
	d := Digits(s)
	if len(d) != Length {
		return false
	}
	if allSame(d) {
		return false
	}

	return checkDigit(d[:9], 10) == int(d[9]-'0') &&
		checkDigit(d[:10], 11) == int(d[10]-'0')
}

// checkDigit computes the modulo-11 verifier over digits with weights
// starting at weight and decreasing to 2
func checkDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := 11 - sum%11
	if rest >= 10 {
		return 0
	}
	return rest
}

func allSame(d string) bool {
	for i := 1; i < len(d); i++ {
		if d[i] != d[0] {
			return false
		}
	}
	return true
}

// Format renders an 11-digit CPF as 111.444.777-35.
// Inputs without 11 digits are returned digit-filtered.
func Format(s string) string {
	d := Digits(s)
	if len(d) != Length {
		return d
	}
	return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:11]
}

// Mask hides all but the last four digits: ***.***.*77-35
func Mask(s string) string {
	d := Digits(s)
	if len(d) != Length {
		return strings.Repeat("*", len(d))
	}
	return "***.***.*" + d[7:9] + "-" + d[9:11]
}
