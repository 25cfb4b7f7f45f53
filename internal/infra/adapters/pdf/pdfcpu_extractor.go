// File: internal/infra/adapters/pdf/pdfcpu_extractor.go

// Package pdf extracts per-page text from PDF documents with pdfcpu.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog"

	"paper-assistant/internal/domain"
	"paper-assistant/internal/domain/ports/adapter"
)

var _ adapter.Extractor = (*PdfcpuExtractor)(nil)

// PdfcpuExtractor extracts page content streams into a scratch directory and
// scans them for text-showing operators. Layout is not preserved beyond word
// and line order.
type PdfcpuExtractor struct {
	logger *zerolog.Logger
}

func NewPdfcpuExtractor(logger *zerolog.Logger) *PdfcpuExtractor {
	l := logger.With().Str("component", "pdf_extractor").Logger()
	return &PdfcpuExtractor{logger: &l}
}

// ExtractPages returns the text of each page in order. A missing input file
// maps to domain.ErrFileNotFound.
func (e *PdfcpuExtractor) ExtractPages(ctx context.Context, filePath string) ([]string, error) {
	if _, err := os.Stat(filePath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFileNotFound, filePath)
		}
		return nil, err
	}

	pageCount, err := pdfapi.PageCountFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if pageCount == 0 {
		return nil, nil
	}

	scratch, err := os.MkdirTemp("", "extract-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	if err := pdfapi.ExtractContentFile(filePath, scratch, nil, nil); err != nil {
		return nil, fmt.Errorf("extract content: %w", err)
	}

	pages := make([]string, pageCount)
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok := pageNumberFromName(entry.Name())
		if !ok || n < 1 || n > pageCount {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(scratch, entry.Name()))
		if err != nil {
			e.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping unreadable page content")
			continue
		}
		pages[n-1] = contentStreamText(raw)
	}
	return pages, nil
}

// pageNumberFromName pulls the trailing page number out of pdfcpu's content
// file names ("<stem>_Content_page_12.txt").
func pageNumberFromName(name string) (int, bool) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.LastIndex(base, "_")
	if idx < 0 || !strings.Contains(base, "page") {
		return 0, false
	}
	n, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// contentStreamText pulls literal strings shown by Tj/TJ/' operators out of a
// decoded page content stream. Hex strings and non-trivial font encodings are
// out of scope; for those pages the result may be empty.
func contentStreamText(raw []byte) string {
	var b strings.Builder
	inString := false
	escaped := false
	depth := 0
	lastWasText := false

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inString {
			if escaped {
				switch c {
				case 'n':
					b.WriteByte('\n')
				case 't':
					b.WriteByte('\t')
				case 'r', 'b', 'f':
					// ignore
				default:
					b.WriteByte(c)
				}
				escaped = false
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '(':
				depth++
				b.WriteByte(c)
			case ')':
				if depth > 0 {
					depth--
					b.WriteByte(c)
					continue
				}
				inString = false
				lastWasText = true
			default:
				b.WriteByte(c)
			}
			continue
		}
		switch c {
		case '(':
			inString = true
			depth = 0
		case 'T':
			// "Td"/"TD"/"T*" move to the next line; keep line structure
			if lastWasText && i+1 < len(raw) {
				switch raw[i+1] {
				case 'd', 'D', '*':
					b.WriteByte('\n')
					lastWasText = false
				}
			}
		}
	}
	return normalizeExtracted(b.String())
}

// normalizeExtracted collapses runs of blank lines and trims trailing spaces,
// mirroring what readers expect from page text.
func normalizeExtracted(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
