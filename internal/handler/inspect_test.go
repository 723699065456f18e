// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newInspectHandler(t *testing.T) (*InspectHandler, func(*http.Request) *http.Request) {
	t.Helper()

	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)
	withSession := func(r *http.Request) *http.Request {
		return requestWithSession(sm, r)
	}
	return NewInspectHandler(renderer), withSession
}

func TestInspectHandler_URLParams(t *testing.T) {
	h, withSession := newInspectHandler(t)

	req := withSession(httptest.NewRequest(http.MethodGet, "/demo/url-params?b=second&a=first", nil))
	w := httptest.NewRecorder()

	h.URLParams(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	for _, want := range []string{"a", "first", "b", "second"} {
		if !strings.Contains(body, want) {
			t.Errorf("body should contain %q", want)
		}
	}
	// Parameters are listed in key order
	if strings.Index(body, "first") > strings.Index(body, "second") {
		t.Error("parameters should be sorted by key")
	}
}

func TestInspectHandler_Headers(t *testing.T) {
	h, withSession := newInspectHandler(t)

	req := withSession(httptest.NewRequest(http.MethodGet, RouteDemoHeaders, nil))
	req.Header.Set("X-Custom-Header", "custom-value")
	w := httptest.NewRecorder()

	h.Headers(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "X-Custom-Header") || !strings.Contains(body, "custom-value") {
		t.Error("sent header should be echoed")
	}
}

func TestInspectHandler_Cookies_Toggle(t *testing.T) {
	h, withSession := newInspectHandler(t)

	// First visit: no cookie yet, one gets set
	req := withSession(httptest.NewRequest(http.MethodGet, RouteDemoCookies, nil))
	w := httptest.NewRecorder()

	h.Cookies(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	if !strings.Contains(w.Body.String(), "has been set") {
		t.Error("first visit should report the cookie was set")
	}

	var set *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == DemoCookieName {
			set = c
		}
	}
	if set == nil {
		t.Fatal("demo cookie should be in the response")
	}
	if set.Value != DemoCookieValue {
		t.Errorf("cookie value = %q; want %q", set.Value, DemoCookieValue)
	}

	// Second visit: cookie present, it gets deleted
	req = withSession(httptest.NewRequest(http.MethodGet, RouteDemoCookies, nil))
	req.AddCookie(&http.Cookie{Name: DemoCookieName, Value: DemoCookieValue})
	w = httptest.NewRecorder()

	h.Cookies(w, req)

	if !strings.Contains(w.Body.String(), "has been deleted") {
		t.Error("second visit should report the cookie was deleted")
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == DemoCookieName && c.MaxAge >= 0 {
			t.Error("deletion cookie should have a negative MaxAge")
		}
	}
}

func TestInspectHandler_Form_Echo(t *testing.T) {
	h, withSession := newInspectHandler(t)

	// GET shows an empty form
	req := withSession(httptest.NewRequest(http.MethodGet, RouteDemoForm, nil))
	w := httptest.NewRecorder()
	h.Form(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	if strings.Contains(w.Body.String(), "Submitted fields") {
		t.Error("nothing should be echoed before a submission")
	}

	// POST echoes the fields
	form := url.Values{}
	form.Set("name", "Ivan")
	form.Set("message", "hello there")

	req = withSession(httptest.NewRequest(http.MethodPost, RouteDemoForm, strings.NewReader(form.Encode())))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w = httptest.NewRecorder()
	h.Form(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "Ivan") || !strings.Contains(body, "hello there") {
		t.Error("submitted fields should be echoed")
	}
}

func TestInspectHandler_Form_SanitizesInput(t *testing.T) {
	h, withSession := newInspectHandler(t)

	form := url.Values{}
	form.Set("message", `<script>alert("xss")</script><b>kept</b>`)

	req := withSession(httptest.NewRequest(http.MethodPost, RouteDemoForm, strings.NewReader(form.Encode())))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.Form(w, req)

	body := w.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("script tags must not survive sanitization")
	}
	if !strings.Contains(body, "<b>kept</b>") {
		t.Error("harmless markup should survive sanitization")
	}
}

func TestInspectHandler_Phone(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		formatted string
		errText   string
	}{
		{"plus seven", "+7 (999) 123-45-67", "8-999-123-45-67", ""},
		{"bare digits", "89991234567", "8-999-123-45-67", ""},
		{"ten digits", "9991234567", "8-999-123-45-67", ""},
		{"letters", "phone123", "", "invalid characters"},
		{"too short", "12345", "", "Wrong number of digits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, withSession := newInspectHandler(t)

			form := url.Values{}
			form.Set("phone", tt.input)

			req := withSession(httptest.NewRequest(http.MethodPost, RouteDemoPhone, strings.NewReader(form.Encode())))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()
			h.Phone(w, req)

			assertStatus(t, w.Code, http.StatusOK)
			body := w.Body.String()

			if tt.formatted != "" && !strings.Contains(body, tt.formatted) {
				t.Errorf("body should contain %q", tt.formatted)
			}
			if tt.errText != "" {
				if !strings.Contains(body, tt.errText) {
					t.Errorf("body should contain error %q", tt.errText)
				}
				// The entered value stays in the form
				if !strings.Contains(body, tt.input) {
					t.Error("failed input should be preserved in the form")
				}
			}
		})
	}
}

func TestInspectHandler_Phone_GetShowsEmptyForm(t *testing.T) {
	h, withSession := newInspectHandler(t)

	req := withSession(httptest.NewRequest(http.MethodGet, RouteDemoPhone, nil))
	w := httptest.NewRecorder()
	h.Phone(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	if strings.Contains(w.Body.String(), "Formatted:") {
		t.Error("nothing should be formatted before a submission")
	}
}
