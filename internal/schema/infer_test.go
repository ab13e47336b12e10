// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package schema

import (
	"context"
	"testing"

	"rowdeck/cli/internal/query"
	"rowdeck/cli/internal/remote"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Tag
	}{
		{"nil", nil, TagUnknown},
		{"bool", true, TagBoolean},
		{"integer", float64(42), TagInteger},
		{"negative integer", float64(-7), TagInteger},
		{"number", 3.14, TagNumber},
		{"plain string", "hello", TagString},
		{"date", "2024-01-15", TagDate},
		{"datetime", "2024-01-15T08:30:00Z", TagDatetime},
		{"datetime without zone", "2024-01-15T08:30", TagDatetime},
		{"uuid ref", "7f9c24e5-2b31-4a7e-9c1a-0d3b5f6a8e21", TagRef},
		{"point", "POINT(30 10)", TagGeometry},
		{"point with srid", "SRID=4326;POINT(30 10)", TagGeometry},
		{"polygon lowercase", "polygon((0 0, 1 0, 1 1, 0 0))", TagGeometry},
		{"url", "https://example.com/docs", TagURL},
		{"url with query", "https://example.com/search?q=x", TagURL},
		{"file url", "https://example.com/report.pdf", TagFile},
		{"file url with query", "https://example.com/report.pdf?dl=1", TagFile},
		{"array", []any{1, 2}, TagArray},
		{"object", map[string]any{"a": 1}, TagObject},
		{"object ref", map[string]any{"_id": "abc", "title": "x"}, TagRef},
		{"file object", map[string]any{"url": "https://x/y", "name": "y", "_id": "abc"}, TagFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		seen []Tag
		want Tag
	}{
		{"only nulls", []Tag{TagUnknown}, TagUnknown},
		{"null then integer", []Tag{TagUnknown, TagInteger}, TagInteger},
		{"integer then text", []Tag{TagInteger, TagString}, TagString},
		{"null date null", []Tag{TagUnknown, TagDate}, TagDate},
		{"date and datetime", []Tag{TagDate, TagDatetime}, TagDatetime},
		{"integer and number", []Tag{TagInteger, TagNumber}, TagNumber},
		{"ref beats string", []Tag{TagRef, TagString}, TagRef},
		{"boolean and geometry fall back", []Tag{TagBoolean, TagGeometry}, TagString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := map[Tag]bool{}
			for _, tag := range tt.seen {
				seen[tag] = true
			}
			if got := resolve(seen); got != tt.want {
				t.Errorf("resolve(%v) = %s, want %s", tt.seen, got, tt.want)
			}
		})
	}
}

// fakeSampler serves a fixed record set and records the compiled query.
type fakeSampler struct {
	records []remote.Record
	query   string
}

func (f *fakeSampler) GetAll(ctx context.Context, model string, q *query.Builder) ([]remote.Record, error) {
	f.query = q.Encode()
	return f.records, nil
}

func TestInfer(t *testing.T) {
	src := &fakeSampler{records: []remote.Record{
		{"_id": "x-1", "total": float64(100), "status": nil, "created": "2024-01-01"},
		{"_id": "x-2", "total": float64(12), "status": "open", "created": nil},
		{"_id": "x-3", "total": "n/a", "status": "closed", "created": nil},
	}}

	s, err := Infer(context.Background(), src, "orders", 0)
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if src.query != "?limit(50)" {
		t.Errorf("sample query = %q, want ?limit(50)", src.query)
	}
	if s.Sampled != 3 {
		t.Errorf("Sampled = %d, want 3", s.Sampled)
	}

	types := map[string]Tag{}
	for _, f := range s.Fields {
		types[f.Name] = f.Type
	}
	if _, ok := types["_id"]; ok {
		t.Error("internal field _id was not skipped")
	}
	want := map[string]Tag{
		"total":   TagString, // integer/string conflict keeps the lossless form
		"status":  TagString,
		"created": TagDate,
	}
	for name, tag := range want {
		if types[name] != tag {
			t.Errorf("field %s = %s, want %s", name, types[name], tag)
		}
	}

	// Fields come back sorted for stable output.
	for i := 1; i < len(s.Fields); i++ {
		if s.Fields[i-1].Name > s.Fields[i].Name {
			t.Errorf("fields not sorted: %s before %s", s.Fields[i-1].Name, s.Fields[i].Name)
		}
	}
}

func TestInferCustomSampleSize(t *testing.T) {
	src := &fakeSampler{}
	if _, err := Infer(context.Background(), src, "orders", 10); err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if src.query != "?limit(10)" {
		t.Errorf("sample query = %q, want ?limit(10)", src.query)
	}
}
