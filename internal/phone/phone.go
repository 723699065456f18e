// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package phone normalizes free-form Russian phone numbers into the
// canonical 8-XXX-XXX-XX-XX form.
package phone

import "strings"

// Error is a normalization failure reason.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrInvalidChars reports characters outside digits, whitespace and ()+-. .
	ErrInvalidChars Error = "phone number contains invalid characters"
	// ErrWrongDigitCount reports a digit count that is neither 10 nor a
	// valid 11-digit number with a 7 or 8 prefix.
	ErrWrongDigitCount Error = "phone number has a wrong number of digits"
)

// Normalize parses a free-form phone string and returns it formatted as
// 8-XXX-XXX-XX-XX. The country prefix in the output is always the literal
// digit 8 regardless of the prefix in the input.
func Normalize(input string) (string, error) {
	for _, r := range input {
		if !isAllowed(r) {
			return "", ErrInvalidChars
		}
	}

	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	d := digits.String()
	switch len(d) {
	case 11:
		if d[0] != '7' && d[0] != '8' {
			return "", ErrWrongDigitCount
		}
		d = d[1:]
	case 10:
		// Subscriber number as-is.
	default:
		return "", ErrWrongDigitCount
	}

	return "8-" + d[:3] + "-" + d[3:6] + "-" + d[6:8] + "-" + d[8:], nil
}

func isAllowed(r rune) bool {
	if r >= '0' && r <= '9' {
		return true
	}
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', '(', ')', '+', '-', '.':
		return true
	}
	return false
}
