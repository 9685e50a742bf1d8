// Package export handles exporting negotiation sessions to various formats.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nvraj/mandi/internal/core"
)

// Format represents an export format.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
)

// Exporter defines the interface for exporting sessions.
type Exporter interface {
	Export(session *core.SessionRecord, w io.Writer) error
	FileExtension() string
}

// GetExporter returns an exporter for the given format.
func GetExporter(format Format) (Exporter, error) {
	switch format {
	case FormatMarkdown:
		return &MarkdownExporter{}, nil
	case FormatPDF:
		return &PDFExporter{}, nil
	case FormatJSON:
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// GenerateFilename creates a filename for the export.
func GenerateFilename(session *core.SessionRecord, ext string) string {
	product := session.Context.Product
	if len(product) > 50 {
		product = product[:50]
	}

	// Replace unsafe characters
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"*", "",
		"?", "",
		"\"", "",
		"<", "",
		">", "",
		"|", "",
	)
	product = replacer.Replace(product)

	timestamp := session.CreatedAt.Format("20060102")
	return fmt.Sprintf("negotiation_%s_%s.%s", timestamp, product, ext)
}

// Helper to format a nullable price
func formatPrice(p *int) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("Rs %d per quintal", *p)
}

// Helper to format duration
func formatDuration(start, end time.Time) string {
	d := end.Sub(start)
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}
