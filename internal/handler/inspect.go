// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/olegiv/weblab-go/internal/phone"
	"github.com/olegiv/weblab-go/internal/render"
)

// DemoCookieName is the cookie toggled by the cookie inspection demo.
const DemoCookieName = "some_cookie"

// DemoCookieValue is the fixed value set by the cookie inspection demo.
const DemoCookieValue = "12345"

// InspectHandler serves the request-inspection teaching pages.
type InspectHandler struct {
	renderer *render.Renderer
}

// NewInspectHandler creates a new InspectHandler.
func NewInspectHandler(renderer *render.Renderer) *InspectHandler {
	return &InspectHandler{renderer: renderer}
}

// KV is one displayed name/value pair.
type KV struct {
	Key   string
	Value string
}

// URLParams handles GET /demo/url-params - echoes the query string.
func (h *InspectHandler) URLParams(w http.ResponseWriter, r *http.Request) {
	var params []KV
	for key, values := range r.URL.Query() {
		params = append(params, KV{Key: key, Value: strings.Join(values, ", ")})
	}
	sortKV(params)

	h.render(w, r, "demo/url_params", "URL parameters", params)
}

// Headers handles GET /demo/headers - echoes the request headers.
func (h *InspectHandler) Headers(w http.ResponseWriter, r *http.Request) {
	var headers []KV
	for name, values := range r.Header {
		headers = append(headers, KV{Key: name, Value: strings.Join(values, ", ")})
	}
	sortKV(headers)

	h.render(w, r, "demo/headers", "Request headers", headers)
}

// CookieDemoData holds data for the cookie demo template.
type CookieDemoData struct {
	Cookies []KV
	Action  string
}

// Cookies handles GET /demo/cookies - sets the demo cookie when absent
// and deletes it when present.
func (h *InspectHandler) Cookies(w http.ResponseWriter, r *http.Request) {
	data := CookieDemoData{}

	if _, err := r.Cookie(DemoCookieName); errors.Is(err, http.ErrNoCookie) {
		http.SetCookie(w, &http.Cookie{
			Name:     DemoCookieName,
			Value:    DemoCookieValue,
			Path:     "/",
			HttpOnly: true,
		})
		data.Action = "Cookie " + DemoCookieName + " has been set"
	} else {
		http.SetCookie(w, &http.Cookie{
			Name:   DemoCookieName,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
		data.Action = "Cookie " + DemoCookieName + " has been deleted"
	}

	for _, c := range r.Cookies() {
		data.Cookies = append(data.Cookies, KV{Key: c.Name, Value: c.Value})
	}
	sortKV(data.Cookies)

	h.render(w, r, "demo/cookies", "Cookies", data)
}

// FormDemoData holds data for the form echo template.
type FormDemoData struct {
	Fields    []KV
	Submitted bool
}

// Form handles GET|POST /demo/form - echoes submitted fields. Values are
// sanitized before being marked safe for the template.
func (h *InspectHandler) Form(w http.ResponseWriter, r *http.Request) {
	data := FormDemoData{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			flashError(w, r, h.renderer, RouteDemoForm, "Invalid form data")
			return
		}
		for key, values := range r.PostForm {
			data.Fields = append(data.Fields, KV{
				Key:   key,
				Value: h.renderer.SanitizeHTML(strings.Join(values, ", ")),
			})
		}
		sortKV(data.Fields)
		data.Submitted = true
	}

	h.render(w, r, "demo/form", "Form echo", data)
}

// PhoneDemoData holds data for the phone formatting template.
type PhoneDemoData struct {
	Input     string
	Formatted string
	Error     string
}

// Phone handles GET|POST /demo/phone - normalizes a phone number. On
// failure the form re-renders with the entered value preserved.
func (h *InspectHandler) Phone(w http.ResponseWriter, r *http.Request) {
	data := PhoneDemoData{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			flashError(w, r, h.renderer, RouteDemoPhone, "Invalid form data")
			return
		}
		data.Input = r.FormValue("phone")

		formatted, err := phone.Normalize(data.Input)
		switch {
		case errors.Is(err, phone.ErrInvalidChars):
			data.Error = "Invalid input. The phone number contains invalid characters."
		case errors.Is(err, phone.ErrWrongDigitCount):
			data.Error = "Invalid input. Wrong number of digits."
		case err == nil:
			data.Formatted = formatted
		}
	}

	h.render(w, r, "demo/phone", "Phone number", data)
}

func (h *InspectHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render demo page", "error", err, "template", name)
	}
}

func sortKV(kv []KV) {
	sort.Slice(kv, func(i, j int) bool { return kv[i].Key < kv[j].Key })
}
