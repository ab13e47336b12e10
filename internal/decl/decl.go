// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package decl renders an inferred schema into a model declaration file.
// The declaration is a human-editable starting point for pinning types that
// inference only approximated.
package decl

import (
	"io"
	"text/template"

	"rowdeck/cli/internal/schema"
)

const declTemplate = `# inferred from {{.Sampled}} sampled records; review before use
model {{.Model}} {
{{- range .Fields}}
  {{.Name}}: {{.Type}}
{{- end}}
}
`

var tmpl = template.Must(template.New("decl").Parse(declTemplate))

// Render writes the declaration for s. Field order follows the schema, which
// keeps fields sorted by name, so output is deterministic.
func Render(w io.Writer, s *schema.Schema) error {
	return tmpl.Execute(w, s)
}
