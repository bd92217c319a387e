package driven

import "github.com/markprompt/markprompt-core/internal/core/domain"

// FilePipeline transforms one page of fetched files before they are
// persisted: path canonicalization, meta scrubbing and
// integration-specific normalisation. Implementations may drop files.
type FilePipeline interface {
	Process(integration domain.IntegrationID, files []*domain.File) []*domain.File
}
