// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package schema approximates a model's field types by sampling records and
// merging per-field type observations. The service has no schema endpoint, so
// the result is a heuristic: good enough to drive table creation and
// declaration output, not a contract.
package schema

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"

	"rowdeck/cli/internal/query"
	"rowdeck/cli/internal/remote"
)

// Tag is one inferred value type.
type Tag string

const (
	TagUnknown  Tag = "unknown"
	TagString   Tag = "string"
	TagInteger  Tag = "integer"
	TagNumber   Tag = "number"
	TagBoolean  Tag = "boolean"
	TagDate     Tag = "date"
	TagDatetime Tag = "datetime"
	TagGeometry Tag = "geometry"
	TagRef      Tag = "ref"
	TagURL      Tag = "url"
	TagFile     Tag = "file"
	TagArray    Tag = "array"
	TagObject   Tag = "object"
)

// DefaultSampleSize bounds how many records one inference run fetches.
const DefaultSampleSize = 50

var (
	reGeometry = regexp.MustCompile(`(?i)^(SRID=\d+;)?\s*(POINT|LINESTRING|POLYGON|MULTIPOINT|MULTILINESTRING|MULTIPOLYGON|GEOMETRYCOLLECTION)\s*\(`)
	reDatetime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}`)
	reDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reUUID     = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	reFileExt  = regexp.MustCompile(`\.[A-Za-z0-9]{1,5}$`)
)

// Classify maps one observed value to a type tag. Checks are ordered: the
// well-known-text geometry shapes are tested before generic string handling,
// and object values are tested for file markers before the ref marker.
func Classify(v any) Tag {
	switch val := v.(type) {
	case nil:
		return TagUnknown
	case bool:
		return TagBoolean
	case float64:
		if math.Trunc(val) == val && math.Abs(val) < 1<<53 {
			return TagInteger
		}
		return TagNumber
	case string:
		return classifyString(val)
	case []any:
		return TagArray
	case map[string]any:
		return classifyObject(val)
	default:
		return TagString
	}
}

func classifyString(s string) Tag {
	switch {
	case reGeometry.MatchString(s):
		return TagGeometry
	case reDatetime.MatchString(s):
		return TagDatetime
	case reDate.MatchString(s):
		return TagDate
	case reUUID.MatchString(s):
		return TagRef
	case strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://"):
		u := s
		if i := strings.IndexAny(u, "?#"); i >= 0 {
			u = u[:i]
		}
		if reFileExt.MatchString(u) {
			return TagFile
		}
		return TagURL
	default:
		return TagString
	}
}

func classifyObject(m map[string]any) Tag {
	if u, ok := m["url"].(string); ok {
		_, hasName := m["name"]
		_, hasSize := m["size"]
		_, hasMime := m["mimetype"]
		if u != "" && (hasName || hasSize || hasMime) {
			return TagFile
		}
	}
	if _, ok := m["_id"].(string); ok {
		return TagRef
	}
	return TagObject
}

// mergePriority orders the concrete tags for conflict resolution. The textual
// forms come first so a mixed field keeps a lossless representation.
var mergePriority = []Tag{TagRef, TagString, TagDatetime, TagDate, TagNumber, TagInteger}

// resolve collapses the distinct tags observed for one field into its final
// type. Unknown is dropped as soon as any concrete tag was seen; a single
// remaining tag wins outright; conflicts resolve by fixed priority with
// string as the last resort. The priority order is a heuristic carried over
// from field experience, not derived; a boolean/string conflict, for example,
// simply lands on string.
func resolve(seen map[Tag]bool) Tag {
	if len(seen) > 1 {
		delete(seen, TagUnknown)
	}
	if len(seen) == 0 {
		return TagUnknown
	}
	if len(seen) == 1 {
		for t := range seen {
			return t
		}
	}
	for _, t := range mergePriority {
		if seen[t] {
			return t
		}
	}
	return TagString
}

// Field is one inferred model field.
type Field struct {
	Name     string `json:"name"`
	Type     Tag    `json:"type"`
	Observed []Tag  `json:"observed,omitempty"`
}

// Schema is the inference result for one model.
type Schema struct {
	Model   string  `json:"model"`
	Sampled int     `json:"sampled"`
	Fields  []Field `json:"fields"`
}

// Sampler fetches records for inference; *remote.Client satisfies it.
type Sampler interface {
	GetAll(ctx context.Context, model string, q *query.Builder) ([]remote.Record, error)
}

// Infer samples up to sampleSize records of model and resolves one type per
// field. Internal fields (leading underscore) are skipped. A zero or negative
// sampleSize means DefaultSampleSize.
func Infer(ctx context.Context, src Sampler, model string, sampleSize int) (*Schema, error) {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	records, err := src.GetAll(ctx, model, query.New().Limit(sampleSize))
	if err != nil {
		return nil, err
	}

	observed := map[string]map[Tag]bool{}
	for _, rec := range records {
		for name, value := range rec {
			if strings.HasPrefix(name, "_") {
				continue
			}
			tags := observed[name]
			if tags == nil {
				tags = map[Tag]bool{}
				observed[name] = tags
			}
			tags[Classify(value)] = true
		}
	}

	s := &Schema{Model: model, Sampled: len(records)}
	for name, tags := range observed {
		var all []Tag
		for t := range tags {
			all = append(all, t)
		}
		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
		s.Fields = append(s.Fields, Field{Name: name, Type: resolve(tags), Observed: all})
	}
	sort.Slice(s.Fields, func(i, j int) bool { return s.Fields[i].Name < s.Fields[j].Name })
	return s, nil
}
