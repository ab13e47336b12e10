// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package output provides formatters for rendering fetched records to the
// terminal or files.
//
// Supported formats:
//   - JSON: one pretty-printed array
//   - NDJSON: one JSON object per line (suitable for streaming)
//   - CSV: comma-separated values with a header row
//   - Table: aligned text table for interactive use
package output

import (
	"io"

	rderrors "rowdeck/cli/internal/errors"
)

// Formatter defines the interface for output formatters.
//
// Implementers must provide Format to convert rows to the target format
// and SetOutput to change the output destination.
type Formatter interface {
	// Format writes rows in the formatter's specific format
	Format(rows []map[string]any) error

	// SetOutput changes the output writer
	SetOutput(w io.Writer)
}

// New returns the formatter for a --output flag value.
func New(format string, w io.Writer) (Formatter, error) {
	switch format {
	case "", "json":
		return NewJSONFormatter(w), nil
	case "ndjson":
		return NewNDJSONFormatter(w), nil
	case "csv":
		return NewCSVFormatter(w), nil
	case "table":
		return NewTableFormatter(w), nil
	default:
		return nil, rderrors.New(rderrors.ValidationFailed, "unknown output format: "+format).
			WithHint("supported formats: json, ndjson, csv, table")
	}
}
