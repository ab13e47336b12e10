// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package filter

import (
	"testing"
	"time"
)

func TestEncodeComparisons(t *testing.T) {
	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{
			name: "eq string",
			expr: F("name").Eq("John"),
			want: `name=%22John%22`,
		},
		{
			name: "eq string with quote",
			expr: F("name").Eq(`Jo"hn`),
			want: `name=%22Jo%5C%22hn%22`,
		},
		{
			name: "eq string with space encodes %20",
			expr: F("name").Eq("John Doe"),
			want: `name=%22John%20Doe%22`,
		},
		{
			name: "eq string with literal plus",
			expr: F("tag").Eq("a+b"),
			want: `tag=%22a%2Bb%22`,
		},
		{
			name: "ne integer",
			expr: F("age").Ne(30),
			want: "age!=30",
		},
		{
			name: "lt float",
			expr: F("price").Lt(19.5),
			want: "price<19.5",
		},
		{
			name: "le",
			expr: F("qty").Le(int64(7)),
			want: "qty<=7",
		},
		{
			name: "gt",
			expr: F("score").Gt(0),
			want: "score>0",
		},
		{
			name: "ge bool",
			expr: F("active").Ge(true),
			want: "active>=true",
		},
		{
			name: "eq null",
			expr: F("deleted").Eq(nil),
			want: "deleted=null",
		},
		{
			name: "eq time",
			expr: F("created").Ge(time.Date(2024, 1, 31, 12, 0, 0, 0, time.UTC)),
			want: `created>=%222024-01-31T12%3A00%3A00Z%22`,
		},
		{
			name: "structured value as JSON",
			expr: F("tags").Eq(map[string]any{"a": 1}),
			want: `tags=` + "%7B%22a%22%3A1%7D",
		},
		{
			name: "unsupported value falls back",
			expr: F("fn").Eq(func() {}),
			want: `fn=%22%3Cunsupported%3E%22`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeMethods(t *testing.T) {
	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{
			name: "contains",
			expr: F("title").Contains("report"),
			want: `title.contains(%22report%22)`,
		},
		{
			name: "startswith",
			expr: F("name").StartsWith("Jo"),
			want: `name.startswith(%22Jo%22)`,
		},
		{
			name: "endswith",
			expr: F("file").EndsWith(".csv"),
			want: `file.endswith(%22.csv%22)`,
		},
		{
			name: "in preserves order",
			expr: F("status").In("new", "active", 3),
			want: `status.in(%22new%22,%22active%22,3)`,
		},
		{
			name: "notin",
			expr: F("status").NotIn("archived"),
			want: `status.notin(%22archived%22)`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodePrecedence(t *testing.T) {
	x := F("x").Eq(1)
	y := F("y").Eq(2)
	z := F("z").Eq(3)
	w := F("w").Eq(4)

	tests := []struct {
		name string
		expr *Expr
		want string
	}{
		{
			name: "pure and chain has no parens",
			expr: x.And(y).And(z),
			want: "x=1&y=2&z=3",
		},
		{
			name: "pure or chain has no parens",
			expr: x.Or(y).Or(z),
			want: "x=1|y=2|z=3",
		},
		{
			name: "or under and is wrapped",
			expr: x.And(y.Or(z)),
			want: "x=1&(y=2|z=3)",
		},
		{
			name: "or on the left of and is wrapped",
			expr: x.Or(y).And(z),
			want: "(x=1|y=2)&z=3",
		},
		{
			name: "and under or is never wrapped",
			expr: x.Or(y.And(z)),
			want: "x=1|y=2&z=3",
		},
		{
			name: "both sides mixed",
			expr: x.Or(y).And(z.Or(w)),
			want: "(x=1|y=2)&(z=3|w=4)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.expr.Encode(); got != tt.want {
				t.Errorf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExprImmutability(t *testing.T) {
	base := F("x").Eq(1)
	a := base.And(F("y").Eq(2))
	b := base.Or(F("z").Eq(3))

	if got := base.Encode(); got != "x=1" {
		t.Errorf("base changed after combining: %q", got)
	}
	if got := a.Encode(); got != "x=1&y=2" {
		t.Errorf("And() = %q", got)
	}
	if got := b.Encode(); got != "x=1|z=3" {
		t.Errorf("Or() = %q", got)
	}
}
