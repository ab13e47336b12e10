// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter outputs all rows as one pretty-printed JSON array.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (j *JSONFormatter) SetOutput(w io.Writer) {
	j.writer = w
}

// Format writes rows as an indented JSON array.
func (j *JSONFormatter) Format(rows []map[string]any) error {
	if rows == nil {
		rows = []map[string]any{}
	}
	encoder := json.NewEncoder(j.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rows)
}

// NDJSONFormatter outputs rows as JSON Lines (one object per line).
type NDJSONFormatter struct {
	writer io.Writer
}

// NewNDJSONFormatter creates a new JSON Lines formatter.
func NewNDJSONFormatter(w io.Writer) *NDJSONFormatter {
	return &NDJSONFormatter{writer: w}
}

// SetOutput sets the output writer.
func (n *NDJSONFormatter) SetOutput(w io.Writer) {
	n.writer = w
}

// Format writes rows as JSON Lines (one JSON object per line).
func (n *NDJSONFormatter) Format(rows []map[string]any) error {
	encoder := json.NewEncoder(n.writer)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
