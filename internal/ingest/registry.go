package ingest

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/markprompt/markprompt-core/internal/core/domain"
)

// Normaliser cleans up integration-specific quirks in fetched files.
// When multiple normalisers match an integration, the highest priority
// one is used.
type Normaliser interface {
	// Normalise mutates a fetched file in place
	Normalise(file *domain.File)

	// SupportedIntegrations lists integration id patterns this
	// normaliser handles. A trailing "*" matches a prefix
	// (e.g. "salesforce-*"); a bare "*" matches everything.
	SupportedIntegrations() []string

	// Priority breaks ties between matching normalisers (higher wins)
	Priority() int
}

// Registry selects normalisers by integration id with priority-based
// tie breaking.
type Registry struct {
	mu          sync.RWMutex
	normalisers []Normaliser
}

// NewRegistry creates an empty normaliser registry.
func NewRegistry() *Registry {
	return &Registry{
		normalisers: make([]Normaliser, 0),
	}
}

// DefaultRegistry creates a registry with the built-in normalisers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&FallbackNormaliser{})
	r.Register(&SalesforceNormaliser{})
	r.Register(&NotionNormaliser{})
	r.Register(&WebsiteNormaliser{})
	return r
}

// Register registers a normaliser.
func (r *Registry) Register(normaliser Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.normalisers = append(r.normalisers, normaliser)
}

// Get retrieves the best-matching normaliser for an integration.
// Returns nil if none is registered for it.
func (r *Registry) Get(integration domain.IntegrationID) Normaliser {
	matches := r.GetAll(integration)
	if len(matches) == 0 {
		return nil
	}
	return matches[0] // Already sorted by priority (highest first)
}

// GetAll retrieves all normalisers matching an integration, sorted by
// priority (highest first).
func (r *Registry) GetAll(integration domain.IntegrationID) []Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []Normaliser
	for _, n := range r.normalisers {
		if matchesIntegration(n.SupportedIntegrations(), integration) {
			matches = append(matches, n)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Priority() > matches[j].Priority()
	})
	return matches
}

// List returns all registered integration patterns.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	patternSet := make(map[string]struct{})
	for _, n := range r.normalisers {
		for _, pattern := range n.SupportedIntegrations() {
			patternSet[pattern] = struct{}{}
		}
	}

	patterns := make([]string, 0, len(patternSet))
	for pattern := range patternSet {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}

// matchesIntegration checks if any of the patterns match the
// integration id. A trailing "*" matches a prefix.
func matchesIntegration(patterns []string, integration domain.IntegrationID) bool {
	id := strings.ToLower(strings.TrimSpace(string(integration)))

	for _, pattern := range patterns {
		pattern = strings.ToLower(strings.TrimSpace(pattern))

		if pattern == "*" {
			return true
		}
		if pattern == id {
			return true
		}
		if strings.HasSuffix(pattern, "*") &&
			strings.HasPrefix(id, pattern[:len(pattern)-1]) {
			return true
		}
	}
	return false
}

// FallbackNormaliser applies to every integration: it trims the
// extracted title and drops it when blank so path fallback applies.
type FallbackNormaliser struct{}

func (n *FallbackNormaliser) Normalise(file *domain.File) {
	if title, ok := file.Meta["title"].(string); ok {
		title = strings.TrimSpace(title)
		if title == "" {
			delete(file.Meta, "title")
		} else {
			file.Meta["title"] = title
		}
	}
}

func (n *FallbackNormaliser) SupportedIntegrations() []string {
	return []string{"*"}
}

func (n *FallbackNormaliser) Priority() int {
	return 1 // Lowest priority - fallback
}

// SalesforceNormaliser handles Salesforce Knowledge and Case records.
// Articles arrive titled by their UrlName when no title was extracted;
// UrlName is dash-separated ("reset-your-password").
type SalesforceNormaliser struct{}

func (n *SalesforceNormaliser) Normalise(file *domain.File) {
	if _, ok := file.Meta["title"].(string); ok {
		return
	}
	urlName, ok := file.Meta["UrlName"].(string)
	if !ok || urlName == "" {
		return
	}
	title := strings.ReplaceAll(urlName, "-", " ")
	title = strings.ReplaceAll(title, "_", " ")
	title = strings.TrimSpace(title)
	if title != "" {
		file.Meta["title"] = strings.ToUpper(title[:1]) + title[1:]
	}
}

func (n *SalesforceNormaliser) SupportedIntegrations() []string {
	return []string{"salesforce-*"}
}

func (n *SalesforceNormaliser) Priority() int {
	return 50
}

// notionIDSuffix matches the 32-hex page id Notion appends to page
// paths ("Getting-Started-0123456789abcdef0123456789abcdef").
var notionIDSuffix = regexp.MustCompile(`[-_][0-9a-fA-F]{32}$`)

// NotionNormaliser strips Notion page-id suffixes from paths so titles
// derived from the path stay readable.
type NotionNormaliser struct{}

func (n *NotionNormaliser) Normalise(file *domain.File) {
	trimmed := notionIDSuffix.ReplaceAllString(file.Path, "")
	if trimmed != "" && trimmed != "/" {
		file.Path = trimmed
	}
}

func (n *NotionNormaliser) SupportedIntegrations() []string {
	return []string{"notion-pages"}
}

func (n *NotionNormaliser) Priority() int {
	return 50
}

// WebsiteNormaliser canonicalizes crawled page URLs: query strings and
// fragments are dropped and directory indexes collapse to their
// directory.
type WebsiteNormaliser struct{}

func (n *WebsiteNormaliser) Normalise(file *domain.File) {
	path := file.Path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(path, "index.html")
	path = strings.TrimSuffix(path, "index.htm")
	if path == "" {
		path = "/"
	}
	file.Path = path
}

func (n *WebsiteNormaliser) SupportedIntegrations() []string {
	return []string{"website-pages"}
}

func (n *WebsiteNormaliser) Priority() int {
	return 50
}
