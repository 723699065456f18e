// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/olegiv/weblab-go/internal/render"
)

// DocsHandler serves the lab handbook rendered from embedded Markdown.
type DocsHandler struct {
	renderer *render.Renderer
	source   []byte

	once sync.Once
	html template.HTML
	err  error
}

// NewDocsHandler creates a new DocsHandler for the given Markdown source.
func NewDocsHandler(renderer *render.Renderer, source []byte) *DocsHandler {
	return &DocsHandler{
		renderer: renderer,
		source:   source,
	}
}

// DocsPageData holds data for the handbook template.
type DocsPageData struct {
	Content template.HTML
}

// Handbook handles GET /docs. The Markdown source is embedded at build
// time, so conversion runs once and is reused.
func (h *DocsHandler) Handbook(w http.ResponseWriter, r *http.Request) {
	h.once.Do(func() {
		h.html, h.err = h.renderer.Markdown(h.source)
	})
	if h.err != nil {
		logAndInternalError(w, "failed to render handbook markdown", "error", h.err)
		return
	}

	if err := h.renderer.Render(w, r, "pages/docs", render.TemplateData{
		Title: "Handbook",
		Data:  DocsPageData{Content: h.html},
	}); err != nil {
		logAndInternalError(w, "failed to render handbook page", "error", err)
	}
}
