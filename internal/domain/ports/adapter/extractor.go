package adapter

import "context"

// Extractor is the port for the external page-text extraction
// capability. It returns one string per page, in page order.
// A missing file maps to domain.ErrFileNotFound; like parse failures
// it is retried, since the upload may not have finished landing.
type Extractor interface {
	ExtractPages(ctx context.Context, filePath string) ([]string, error)
}
