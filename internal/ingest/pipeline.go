package ingest

import (
	"sort"
	"strings"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
	"github.com/markprompt/markprompt-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.FilePipeline = (*Pipeline)(nil)

// Processor transforms one page of fetched files before they are
// persisted. Processors may drop files by returning a shorter slice.
type Processor interface {
	// Name identifies the processor for logging and introspection
	Name() string

	// Order determines position in the pipeline (lower runs first)
	Order() int

	// Process transforms the files of one fetched page
	Process(integration domain.IntegrationID, files []*domain.File) []*domain.File
}

// Pipeline chains processors in order over each page of fetched files.
type Pipeline struct {
	mu         sync.RWMutex
	processors []Processor
	sorted     bool
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		processors: make([]Processor, 0),
	}
}

// DefaultPipeline creates a pipeline with the standard processors:
// path cleanup, meta scrubbing and integration-specific normalisation.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(&PathProcessor{})
	p.Add(&MetaProcessor{})
	p.Add(NewNormaliseProcessor(DefaultRegistry()))
	return p
}

// Add adds a processor to the pipeline.
// Processors are sorted by Order() before processing.
func (p *Pipeline) Add(processor Processor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in order to one page of files.
func (p *Pipeline) Process(integration domain.IntegrationID, files []*domain.File) []*domain.File {
	p.mu.Lock()
	if !p.sorted {
		sort.Slice(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	p.mu.Unlock()

	p.mu.RLock()
	processors := make([]Processor, len(p.processors))
	copy(processors, p.processors)
	p.mu.RUnlock()

	for _, proc := range processors {
		files = proc.Process(integration, files)
	}
	return files
}

// List returns processor names in execution order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	processors := make([]Processor, len(p.processors))
	copy(processors, p.processors)
	sort.Slice(processors, func(i, j int) bool {
		return processors[i].Order() < processors[j].Order()
	})

	names := make([]string, len(processors))
	for i, proc := range processors {
		names[i] = proc.Name()
	}
	return names
}

// PathProcessor drops files without a usable path and canonicalizes
// the rest: forward slashes, a single leading slash, no duplicate
// separators.
type PathProcessor struct{}

func (p *PathProcessor) Name() string { return "path" }

func (p *PathProcessor) Order() int { return 10 }

func (p *PathProcessor) Process(integration domain.IntegrationID, files []*domain.File) []*domain.File {
	kept := files[:0]
	for _, file := range files {
		path := strings.TrimSpace(file.Path)
		if path == "" {
			continue
		}
		path = strings.ReplaceAll(path, "\\", "/")
		for strings.Contains(path, "//") {
			path = strings.ReplaceAll(path, "//", "/")
		}
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		file.Path = path
		kept = append(kept, file)
	}
	return kept
}

// MetaProcessor guarantees a non-nil meta map and removes entries
// whose value is an empty string, so title extraction never sees a
// present-but-blank title.
type MetaProcessor struct{}

func (p *MetaProcessor) Name() string { return "meta" }

func (p *MetaProcessor) Order() int { return 20 }

func (p *MetaProcessor) Process(integration domain.IntegrationID, files []*domain.File) []*domain.File {
	for _, file := range files {
		if file.Meta == nil {
			file.Meta = map[string]any{}
			continue
		}
		for key, value := range file.Meta {
			if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
				delete(file.Meta, key)
			}
		}
	}
	return files
}

// NormaliseProcessor applies the best-matching integration normaliser
// to every file. Files from integrations with no registered
// normaliser pass through unchanged.
type NormaliseProcessor struct {
	registry *Registry
}

// NewNormaliseProcessor creates a processor backed by the given registry.
func NewNormaliseProcessor(registry *Registry) *NormaliseProcessor {
	return &NormaliseProcessor{registry: registry}
}

func (p *NormaliseProcessor) Name() string { return "normalise" }

func (p *NormaliseProcessor) Order() int { return 30 }

func (p *NormaliseProcessor) Process(integration domain.IntegrationID, files []*domain.File) []*domain.File {
	normaliser := p.registry.Get(integration)
	if normaliser == nil {
		return files
	}
	for _, file := range files {
		normaliser.Normalise(file)
	}
	return files
}
