// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olegiv/weblab-go/web"
)

func TestDocsHandler_Handbook(t *testing.T) {
	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewDocsHandler(renderer, web.Handbook)

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteDocs, nil))
	w := httptest.NewRecorder()

	h.Handbook(w, req)

	assertStatus(t, w.Code, http.StatusOK)
	body := w.Body.String()
	if !strings.Contains(body, "<h1") {
		t.Error("markdown headings should be rendered as HTML")
	}
	if !strings.Contains(body, "Phone formatting") {
		t.Error("handbook content should be present")
	}
}

func TestDocsHandler_ConvertsOnce(t *testing.T) {
	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	h := NewDocsHandler(renderer, []byte("# Title\n\nbody"))

	for i := 0; i < 2; i++ {
		req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteDocs, nil))
		w := httptest.NewRecorder()
		h.Handbook(w, req)
		assertStatus(t, w.Code, http.StatusOK)
		if !strings.Contains(w.Body.String(), "<h1") {
			t.Error("converted markdown should be served")
		}
	}
}

func TestDocsHandler_BadMarkdownStillServes(t *testing.T) {
	_, sm := testHandlerSetup(t)
	renderer := testRenderer(t, sm)

	// goldmark accepts any input; even odd bytes produce a page
	h := NewDocsHandler(renderer, []byte("\x00\x01 odd"))

	req := requestWithSession(sm, httptest.NewRequest(http.MethodGet, RouteDocs, nil))
	w := httptest.NewRecorder()
	h.Handbook(w, req)

	assertStatus(t, w.Code, http.StatusOK)
}
