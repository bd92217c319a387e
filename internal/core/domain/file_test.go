package domain

import (
	"testing"
	"time"
)

func TestFileTitle(t *testing.T) {
	tests := []struct {
		name string
		file *File
		want string
	}{
		{
			name: "title in meta",
			file: &File{Path: "articles/ka-001", Meta: map[string]any{"title": "Reset your password"}},
			want: "Reset your password",
		},
		{
			name: "no meta falls back to last path segment",
			file: &File{Path: "docs/getting-started.md"},
			want: "getting-started.md",
		},
		{
			name: "non-string title falls back to path",
			file: &File{Path: "pages/home", Meta: map[string]any{"title": map[string]any{"component": "h1"}}},
			want: "home",
		},
		{
			name: "empty title falls back to path",
			file: &File{Path: "a/b/c", Meta: map[string]any{"title": ""}},
			want: "c",
		},
		{
			name: "trailing slash",
			file: &File{Path: "docs/guides/"},
			want: "guides",
		},
		{
			name: "nil file",
			file: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FileTitle(tt.file); got != tt.want {
				t.Errorf("FileTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageRange(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		pageSize  int
		total     int
		wantStart int
		wantEnd   int
	}{
		{"first page", 0, 10, 25, 1, 10},
		{"middle page", 1, 10, 25, 11, 20},
		{"last partial page", 2, 10, 25, 21, 25},
		{"exact fit", 1, 10, 20, 11, 20},
		{"single row", 0, 50, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := PageRange(tt.page, tt.pageSize, tt.total)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("PageRange(%d, %d, %d) = %d–%d, want %d–%d",
					tt.page, tt.pageSize, tt.total, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	if got := Pluralize(1, "file", "files"); got != "1 file" {
		t.Errorf("Pluralize(1) = %q", got)
	}
	if got := Pluralize(3, "file", "files"); got != "3 files" {
		t.Errorf("Pluralize(3) = %q", got)
	}
	if got := Pluralize(0, "result", "results"); got != "0 results" {
		t.Errorf("Pluralize(0) = %q", got)
	}
}

func TestFileTokenCount(t *testing.T) {
	count := 120
	f := &File{ID: "f1", SourceID: "s1", Path: "p", UpdatedAt: time.Now(), TokenCount: &count}
	if f.TokenCount == nil || *f.TokenCount != 120 {
		t.Error("expected token count to round-trip")
	}

	unprocessed := &File{ID: "f2", SourceID: "s1", Path: "q"}
	if unprocessed.TokenCount != nil {
		t.Error("expected nil token count for unprocessed file")
	}
}
