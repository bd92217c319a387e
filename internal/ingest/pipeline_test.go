package ingest

import (
	"strings"
	"testing"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

func TestPathProcessor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		drop bool
	}{
		{name: "already canonical", in: "/kb/reset-password", want: "/kb/reset-password"},
		{name: "missing leading slash", in: "kb/reset-password", want: "/kb/reset-password"},
		{name: "backslashes", in: "kb\\articles\\faq", want: "/kb/articles/faq"},
		{name: "duplicate separators", in: "/kb//articles///faq", want: "/kb/articles/faq"},
		{name: "surrounding whitespace", in: "  /kb/faq  ", want: "/kb/faq"},
		{name: "empty path dropped", in: "", drop: true},
		{name: "whitespace path dropped", in: "   ", drop: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &PathProcessor{}
			out := p.Process("", []*domain.File{{ID: "f1", Path: tt.in}})

			if tt.drop {
				if len(out) != 0 {
					t.Fatalf("expected file dropped, got %d files", len(out))
				}
				return
			}
			if len(out) != 1 {
				t.Fatalf("expected 1 file, got %d", len(out))
			}
			if out[0].Path != tt.want {
				t.Errorf("expected path %q, got %q", tt.want, out[0].Path)
			}
		})
	}
}

func TestMetaProcessor(t *testing.T) {
	p := &MetaProcessor{}

	files := []*domain.File{
		{ID: "f1"},
		{ID: "f2", Meta: map[string]any{"title": "  ", "author": "sam"}},
	}
	out := p.Process("", files)

	if out[0].Meta == nil {
		t.Error("expected nil meta replaced with empty map")
	}
	if _, ok := out[1].Meta["title"]; ok {
		t.Error("expected blank title entry removed")
	}
	if out[1].Meta["author"] != "sam" {
		t.Error("expected non-blank entries kept")
	}
}

// orderedProcessor records its name into paths so ordering is observable.
type orderedProcessor struct {
	name  string
	order int
}

func (p *orderedProcessor) Name() string { return p.name }
func (p *orderedProcessor) Order() int   { return p.order }
func (p *orderedProcessor) Process(integration domain.IntegrationID, files []*domain.File) []*domain.File {
	for _, f := range files {
		f.Path += "," + p.name
	}
	return files
}

func TestPipeline_RunsInOrder(t *testing.T) {
	p := NewPipeline()
	p.Add(&orderedProcessor{name: "second", order: 20})
	p.Add(&orderedProcessor{name: "first", order: 10})
	p.Add(&orderedProcessor{name: "third", order: 30})

	out := p.Process("", []*domain.File{{Path: "start"}})
	if got := out[0].Path; got != "start,first,second,third" {
		t.Errorf("unexpected processing order: %s", got)
	}

	names := p.List()
	if strings.Join(names, ",") != "first,second,third" {
		t.Errorf("unexpected List order: %v", names)
	}
}

func TestDefaultPipeline(t *testing.T) {
	p := DefaultPipeline()

	files := []*domain.File{
		{ID: "f1", Path: "kb/articles//Reset-your-password-0123456789abcdef0123456789abcdef"},
		{ID: "f2", Path: ""},
	}
	out := p.Process(domain.IntegrationNotionPages, files)

	if len(out) != 1 {
		t.Fatalf("expected empty-path file dropped, got %d files", len(out))
	}
	if out[0].Path != "/kb/articles/Reset-your-password" {
		t.Errorf("unexpected path: %s", out[0].Path)
	}
	if out[0].Meta == nil {
		t.Error("expected meta initialized")
	}
}
