package domain

import (
	"fmt"
	"strings"
	"time"
)

// File represents one indexed document/page/record extracted from a source
type File struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`

	// Path is the file's identifier within its source (a repo path, a
	// page URL, a record id)
	Path string `json:"path"`

	// Meta is free-form metadata produced at ingestion. It may carry an
	// extracted title under the "title" key.
	Meta map[string]any `json:"meta,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`

	// TokenCount is nil for files that have not been processed yet
	TokenCount *int `json:"token_count,omitempty"`
}

// FileTitle returns the display title for a file. Previously ingested
// data may lack an extracted title in the meta, or carry a non-string
// value; fall back to the last path segment in those cases.
func FileTitle(f *File) string {
	if f == nil {
		return ""
	}
	if title, ok := f.Meta["title"].(string); ok && title != "" {
		return title
	}
	path := strings.TrimSuffix(f.Path, "/")
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		path = path[i+1:]
	}
	if path == "" {
		return f.Path
	}
	return path
}

// Pluralize formats a count with its singular or plural noun
func Pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

// PageRange returns the 1-based inclusive range of rows shown for a
// zero-based page, clamped to the filtered total.
func PageRange(page, pageSize, total int) (start, end int) {
	start = page*pageSize + 1
	end = (page + 1) * pageSize
	if end > total {
		end = total
	}
	return start, end
}
