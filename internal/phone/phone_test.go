// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package phone

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plus seven with punctuation", "+7 (977) 888-22-50", "8-977-888-22-50"},
		{"eight with parens", "8(977)8882250", "8-977-888-22-50"},
		{"dots", "977.888.22.50", "8-977-888-22-50"},
		{"spaces", "123 456 75 90", "8-123-456-75-90"},
		{"bare ten digits", "9778882250", "8-977-888-22-50"},
		{"eleven starting with seven", "79778882250", "8-977-888-22-50"},
		{"newline separator", "977\n888 22 50", "8-977-888-22-50"},
		{"mixed whitespace", "\t977\r\n888\v22\f50 ", "8-977-888-22-50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q; want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrWrongDigitCount},
		{"nine digits", "977888225", ErrWrongDigitCount},
		{"twelve digits", "897788822505", ErrWrongDigitCount},
		{"eleven with bad prefix", "99234567890", ErrWrongDigitCount},
		{"star", "123456-7*5-90", ErrInvalidChars},
		{"letters", "phone123", ErrInvalidChars},
		{"comma", "977,888,22,50", ErrInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Normalize(%q) error = %v; want %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestNormalizeCharsetCheckedBeforeDigitCount(t *testing.T) {
	// A too-short number with a bad character reports InvalidChars first.
	if _, err := Normalize("12*"); !errors.Is(err, ErrInvalidChars) {
		t.Errorf("error = %v; want %v", err, ErrInvalidChars)
	}
}
