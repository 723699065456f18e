// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/weblab-go/internal/validate"
)

// parseIDParam extracts the {id} route parameter. Returns 0 and false when
// the value is missing or not a positive integer.
func parseIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// loginErrorMessage maps a login validation failure to a form message.
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, validate.ErrLoginEmpty):
		return "Login is required"
	case errors.Is(err, validate.ErrLoginTooShort):
		return "Login must be at least 5 characters long"
	case errors.Is(err, validate.ErrLoginInvalidChars):
		return "Login may contain only Latin letters and digits"
	default:
		return "Invalid login"
	}
}

// passwordErrorMessage maps a password validation failure to a form message.
func passwordErrorMessage(err error) string {
	switch {
	case errors.Is(err, validate.ErrPasswordLength):
		return "Password must be between 8 and 128 characters long"
	case errors.Is(err, validate.ErrPasswordNoUppercase):
		return "Password must contain an uppercase letter"
	case errors.Is(err, validate.ErrPasswordNoLowercase):
		return "Password must contain a lowercase letter"
	case errors.Is(err, validate.ErrPasswordNoDigit):
		return "Password must contain a digit"
	case errors.Is(err, validate.ErrPasswordHasWhitespace):
		return "Password must not contain spaces"
	case errors.Is(err, validate.ErrPasswordInvalidChars):
		return "Password contains characters that are not allowed"
	default:
		return "Invalid password"
	}
}
