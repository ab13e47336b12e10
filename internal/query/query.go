// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package query compiles select/filter/sort/limit/count directives into one
// Rowdeck wire query string. Directives can be added in any order; the
// rendered clause order is fixed (select, filter, sort, limit, count) because
// the service treats it as part of the wire contract.
package query

import (
	"strconv"
	"strings"

	"rowdeck/cli/internal/filter"
)

type sortSpec struct {
	field string
	desc  bool
}

// Builder accumulates query directives. The zero value is usable; New is
// provided for symmetry with the rest of the client packages.
type Builder struct {
	selects []string
	where   *filter.Expr
	sorts   []sortSpec
	limit   *int
	count   bool
}

// New returns an empty query builder.
func New() *Builder {
	return &Builder{}
}

// Select appends fields to the projection. Repeated calls accumulate; fields
// are rendered in the order they were added.
func (b *Builder) Select(fields ...string) *Builder {
	b.selects = append(b.selects, fields...)
	return b
}

// Where AND-combines expr with any previously set filter, so repeated calls
// compose conjunctively. A nil expr is ignored.
func (b *Builder) Where(expr *filter.Expr) *Builder {
	if expr == nil {
		return b
	}
	if b.where == nil {
		b.where = expr
	} else {
		b.where = b.where.And(expr)
	}
	return b
}

// Sort appends an ascending sort on field.
func (b *Builder) Sort(field string) *Builder {
	b.sorts = append(b.sorts, sortSpec{field: field})
	return b
}

// SortDesc appends a descending sort on field.
func (b *Builder) SortDesc(field string) *Builder {
	b.sorts = append(b.sorts, sortSpec{field: field, desc: true})
	return b
}

// Limit caps the number of returned records. The last call wins.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Count asks the service for a record count instead of records.
func (b *Builder) Count() *Builder {
	b.count = true
	return b
}

// Clone returns an independent copy. Slices are copied; the filter tree is
// shared by reference, which is safe because filter nodes are immutable.
func (b *Builder) Clone() *Builder {
	c := &Builder{
		selects: append([]string(nil), b.selects...),
		where:   b.where,
		sorts:   append([]sortSpec(nil), b.sorts...),
		count:   b.count,
	}
	if b.limit != nil {
		n := *b.limit
		c.limit = &n
	}
	return c
}

// Encode renders the wire query string: empty when no directive was added,
// otherwise "?" followed by clauses joined with "&" in the fixed order
// select, filter, sort, limit, count.
func (b *Builder) Encode() string {
	var clauses []string
	if len(b.selects) > 0 {
		clauses = append(clauses, "select("+strings.Join(b.selects, ",")+")")
	}
	if b.where != nil {
		clauses = append(clauses, b.where.Encode())
	}
	if len(b.sorts) > 0 {
		parts := make([]string, len(b.sorts))
		for i, s := range b.sorts {
			if s.desc {
				parts[i] = "-" + s.field
			} else {
				parts[i] = s.field
			}
		}
		clauses = append(clauses, "sort("+strings.Join(parts, ",")+")")
	}
	if b.limit != nil {
		clauses = append(clauses, "limit("+strconv.Itoa(*b.limit)+")")
	}
	if b.count {
		clauses = append(clauses, "count()")
	}
	if len(clauses) == 0 {
		return ""
	}
	return "?" + strings.Join(clauses, "&")
}
