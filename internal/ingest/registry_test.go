package ingest

import (
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

func TestMatchesIntegration(t *testing.T) {
	tests := []struct {
		name        string
		patterns    []string
		integration domain.IntegrationID
		want        bool
	}{
		{name: "exact match", patterns: []string{"notion-pages"}, integration: "notion-pages", want: true},
		{name: "no match", patterns: []string{"notion-pages"}, integration: "website-pages", want: false},
		{name: "prefix wildcard", patterns: []string{"salesforce-*"}, integration: "salesforce-knowledge", want: true},
		{name: "prefix wildcard sandbox", patterns: []string{"salesforce-*"}, integration: "salesforce-case-sandbox", want: true},
		{name: "prefix wildcard miss", patterns: []string{"salesforce-*"}, integration: "notion-pages", want: false},
		{name: "universal wildcard", patterns: []string{"*"}, integration: "anything", want: true},
		{name: "case insensitive", patterns: []string{"Notion-Pages"}, integration: "notion-pages", want: true},
		{name: "empty patterns", patterns: nil, integration: "notion-pages", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesIntegration(tt.patterns, tt.integration); got != tt.want {
				t.Errorf("matchesIntegration(%v, %q) = %v, want %v", tt.patterns, tt.integration, got, tt.want)
			}
		})
	}
}

func TestRegistry_PriorityWins(t *testing.T) {
	r := DefaultRegistry()

	n := r.Get(domain.IntegrationSalesforceKnowledge)
	if n == nil {
		t.Fatal("expected a normaliser for salesforce-knowledge")
	}
	if _, ok := n.(*SalesforceNormaliser); !ok {
		t.Errorf("expected SalesforceNormaliser to outrank the fallback, got %T", n)
	}

	all := r.GetAll(domain.IntegrationSalesforceKnowledge)
	if len(all) != 2 {
		t.Fatalf("expected fallback to match too, got %d normalisers", len(all))
	}
}

func TestRegistry_UnknownIntegrationGetsFallback(t *testing.T) {
	r := DefaultRegistry()

	n := r.Get(domain.IntegrationID("github-repo"))
	if n == nil {
		t.Fatal("expected fallback normaliser")
	}
	if _, ok := n.(*FallbackNormaliser); !ok {
		t.Errorf("expected FallbackNormaliser, got %T", n)
	}
}

func TestRegistry_EmptyHasNoMatch(t *testing.T) {
	r := NewRegistry()
	if n := r.Get(domain.IntegrationNotionPages); n != nil {
		t.Errorf("expected nil from empty registry, got %T", n)
	}
}

func TestSalesforceNormaliser(t *testing.T) {
	n := &SalesforceNormaliser{}

	file := &domain.File{
		Path: "/articles/ka0123",
		Meta: map[string]any{"UrlName": "reset-your-password"},
	}
	n.Normalise(file)
	if got := file.Meta["title"]; got != "Reset your password" {
		t.Errorf("expected title from UrlName, got %v", got)
	}

	// An extracted title is never overwritten
	file = &domain.File{
		Meta: map[string]any{"title": "Original", "UrlName": "reset-your-password"},
	}
	n.Normalise(file)
	if got := file.Meta["title"]; got != "Original" {
		t.Errorf("expected existing title kept, got %v", got)
	}

	// No UrlName, nothing to do
	file = &domain.File{Meta: map[string]any{}}
	n.Normalise(file)
	if _, ok := file.Meta["title"]; ok {
		t.Error("expected no title without UrlName")
	}
}

func TestNotionNormaliser(t *testing.T) {
	n := &NotionNormaliser{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "page id stripped",
			in:   "/Getting-Started-0123456789abcdef0123456789abcdef",
			want: "/Getting-Started",
		},
		{
			name: "underscore separator",
			in:   "/Getting-Started_0123456789abcdef0123456789abcdef",
			want: "/Getting-Started",
		},
		{name: "no id suffix", in: "/Getting-Started", want: "/Getting-Started"},
		{name: "short hex not stripped", in: "/page-abcdef12", want: "/page-abcdef12"},
		{
			// A bare page id would leave an empty path; keep it
			name: "id-only path kept",
			in:   "-0123456789abcdef0123456789abcdef",
			want: "-0123456789abcdef0123456789abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &domain.File{Path: tt.in}
			n.Normalise(file)
			if file.Path != tt.want {
				t.Errorf("expected %q, got %q", tt.want, file.Path)
			}
		})
	}
}

func TestWebsiteNormaliser(t *testing.T) {
	n := &WebsiteNormaliser{}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "query dropped", in: "/docs?utm_source=x", want: "/docs"},
		{name: "fragment dropped", in: "/docs#install", want: "/docs"},
		{name: "index collapsed", in: "/docs/index.html", want: "/docs/"},
		{name: "plain page kept", in: "/docs/install.html", want: "/docs/install.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &domain.File{Path: tt.in}
			n.Normalise(file)
			if file.Path != tt.want {
				t.Errorf("expected %q, got %q", tt.want, file.Path)
			}
		})
	}
}

func TestFallbackNormaliser(t *testing.T) {
	n := &FallbackNormaliser{}

	file := &domain.File{Meta: map[string]any{"title": "  Reset your password  "}}
	n.Normalise(file)
	if got := file.Meta["title"]; got != "Reset your password" {
		t.Errorf("expected trimmed title, got %q", got)
	}

	file = &domain.File{Meta: map[string]any{"title": "   "}}
	n.Normalise(file)
	if _, ok := file.Meta["title"]; ok {
		t.Error("expected blank title removed")
	}
}
