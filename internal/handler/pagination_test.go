// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBuildPagination(t *testing.T) {
	tests := []struct {
		name        string
		currentPage int
		totalItems  int64
		perPage     int
		wantPages   int
		wantCurrent int
		wantPrev    bool
		wantNext    bool
	}{
		{"empty", 1, 0, 10, 1, 1, false, false},
		{"single page", 1, 5, 10, 1, 1, false, false},
		{"exact fit", 1, 20, 10, 2, 1, false, true},
		{"middle page", 2, 25, 10, 3, 2, true, true},
		{"last page", 3, 25, 10, 3, 3, true, false},
		{"page beyond range", 99, 25, 10, 3, 3, true, false},
		{"page below range", -1, 25, 10, 3, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := BuildPagination(tt.currentPage, tt.totalItems, tt.perPage, "/logs")

			if p.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d; want %d", p.TotalPages, tt.wantPages)
			}
			if p.CurrentPage != tt.wantCurrent {
				t.Errorf("CurrentPage = %d; want %d", p.CurrentPage, tt.wantCurrent)
			}
			if p.HasPrev != tt.wantPrev {
				t.Errorf("HasPrev = %v; want %v", p.HasPrev, tt.wantPrev)
			}
			if p.HasNext != tt.wantNext {
				t.Errorf("HasNext = %v; want %v", p.HasNext, tt.wantNext)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := BuildPagination(3, 100, 10, "/logs")
	if got := p.Offset(); got != 20 {
		t.Errorf("Offset = %d; want 20", got)
	}

	p = BuildPagination(1, 100, 10, "/logs")
	if got := p.Offset(); got != 0 {
		t.Errorf("Offset = %d; want 0", got)
	}
}

func TestPaginationURLs(t *testing.T) {
	p := BuildPagination(2, 50, 10, "/logs")

	if got := p.PageURL(4); got != "/logs?page=4" {
		t.Errorf("PageURL = %q", got)
	}
	if got := p.PrevURL(); got != "/logs?page=1" {
		t.Errorf("PrevURL = %q", got)
	}
	if got := p.NextURL(); got != "/logs?page=3" {
		t.Errorf("NextURL = %q", got)
	}
}

func TestPaginationShouldShow(t *testing.T) {
	if BuildPagination(1, 5, 10, "/logs").ShouldShow() {
		t.Error("single page should not show pagination")
	}
	if !BuildPagination(1, 15, 10, "/logs").ShouldShow() {
		t.Error("multiple pages should show pagination")
	}
}

func TestParsePageParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?page=1", 1},
		{"?page=7", 7},
		{"?page=0", 1},
		{"?page=-3", 1},
		{"?page=abc", 1},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/logs"+tt.query, nil)
		if got := ParsePageParam(req); got != tt.want {
			t.Errorf("ParsePageParam(%q) = %d; want %d", tt.query, got, tt.want)
		}
	}
}
