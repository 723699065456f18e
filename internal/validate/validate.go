// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package validate implements the credential field rules shared by the
// signup, admin-create and change-password forms. Each rule is an
// independent predicate so the check order stays explicit and the first
// failing rule is the one reported.
package validate

// Error is a validation failure reason. Callers map it to user-facing text.
type Error string

func (e Error) Error() string {
	return string(e)
}

// Login failure reasons, in check order.
const (
	ErrLoginEmpty        Error = "login is empty"
	ErrLoginTooShort     Error = "login is shorter than 5 characters"
	ErrLoginInvalidChars Error = "login contains characters outside Latin letters and digits"
)

// Password failure reasons, in check order.
const (
	ErrPasswordLength        Error = "password length is out of the 8..128 range"
	ErrPasswordNoUppercase   Error = "password has no uppercase letter"
	ErrPasswordNoLowercase   Error = "password has no lowercase letter"
	ErrPasswordNoDigit       Error = "password has no digit"
	ErrPasswordHasWhitespace Error = "password contains whitespace"
	ErrPasswordInvalidChars  Error = "password contains characters outside the allowed set"
)

const (
	loginMinLen    = 5
	passwordMinLen = 8
	passwordMaxLen = 128
)

// passwordPunct is the fixed punctuation set allowed in passwords.
const passwordPunct = `~!?@#$%^&*_-+()[]{}<>/\|"',.:;`

// CheckLogin validates a login string. Returns nil if the login is at
// least 5 characters of Latin letters and digits only.
func CheckLogin(login string) error {
	if login == "" {
		return ErrLoginEmpty
	}
	if len([]rune(login)) < loginMinLen {
		return ErrLoginTooShort
	}
	for _, r := range login {
		if !isLatinLetter(r) && !isDigit(r) {
			return ErrLoginInvalidChars
		}
	}
	return nil
}

// CheckPassword validates a password string. Rules run in a fixed order
// and the first failure is returned: length, uppercase, lowercase, digit,
// whitespace, allowed character set.
func CheckPassword(password string) error {
	runes := []rune(password)
	if len(runes) < passwordMinLen || len(runes) > passwordMaxLen {
		return ErrPasswordLength
	}
	if !containsFunc(runes, isUpper) {
		return ErrPasswordNoUppercase
	}
	if !containsFunc(runes, isLower) {
		return ErrPasswordNoLowercase
	}
	if !containsFunc(runes, isDigit) {
		return ErrPasswordNoDigit
	}
	if containsFunc(runes, isSpace) {
		return ErrPasswordHasWhitespace
	}
	for _, r := range runes {
		if !isAllowedPasswordRune(r) {
			return ErrPasswordInvalidChars
		}
	}
	return nil
}

func containsFunc(runes []rune, pred func(rune) bool) bool {
	for _, r := range runes {
		if pred(r) {
			return true
		}
	}
	return false
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isCyrillicLetter(r rune) bool {
	return (r >= 'а' && r <= 'я') || (r >= 'А' && r <= 'Я')
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isLower(r rune) bool {
	return r >= 'a' && r <= 'z'
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r', 0x85, 0xA0:
		return true
	}
	return false
}

func isAllowedPasswordRune(r rune) bool {
	if isLatinLetter(r) || isCyrillicLetter(r) || isDigit(r) {
		return true
	}
	for _, p := range passwordPunct {
		if r == p {
			return true
		}
	}
	return false
}
