package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gradaudit/gradaudit/internal/audit"
	"github.com/gradaudit/gradaudit/internal/progress"
)

// Report formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatCSV   = "csv"
	FormatPDF   = "pdf"
)

// Formats lists the supported report formats.
var Formats = []string{FormatTable, FormatJSON, FormatCSV, FormatPDF}

// Options control report rendering.
type Options struct {
	// Title overrides the default report title.
	Title string
	// MinSeverity is the lowest diagnostic severity copied into comments.
	MinSeverity progress.Severity
	// TotalCredits is the credit threshold shown next to earned credits.
	TotalCredits int
	// Verbose lists every diagnostic in table output.
	Verbose bool
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MinSeverity: progress.SeverityWarning}
}

// Write renders b to w in the given format.
func Write(w io.Writer, format string, b *audit.Batch, opts Options) error {
	switch format {
	case FormatTable, "":
		return RenderTable(w, b, opts)
	case FormatJSON:
		return RenderJSON(w, b)
	case FormatCSV:
		data, err := RenderCSV(FromBatch(b, opts.MinSeverity))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case FormatPDF:
		title := opts.Title
		if title == "" {
			title = "Graduate Progress " + b.Term
		}
		data, err := RenderPDF(FromBatch(b, opts.MinSeverity), title)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// RenderJSON writes the batch as indented JSON.
func RenderJSON(w io.Writer, b *audit.Batch) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
