// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package query

import (
	"testing"

	"rowdeck/cli/internal/filter"
)

func TestEncodeEmpty(t *testing.T) {
	if got := New().Encode(); got != "" {
		t.Errorf("empty builder encodes to %q, want empty string", got)
	}
}

func TestEncodeClauseOrder(t *testing.T) {
	// Directives added in reverse of the wire order must still render as
	// select, filter, sort, limit, count.
	b := New().
		Count().
		Limit(10).
		SortDesc("age").
		Where(filter.F("status").Eq("active")).
		Select("name", "age")

	want := `?select(name,age)&status=%22active%22&sort(-age)&limit(10)&count()`
	if got := b.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestSelectAppends(t *testing.T) {
	b := New().Select("a").Select("b", "c")
	want := "?select(a,b,c)"
	if got := b.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestWhereComposesConjunctively(t *testing.T) {
	b := New().
		Where(filter.F("x").Eq(1)).
		Where(filter.F("y").Eq(2))

	want := "?x=1&y=2"
	if got := b.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestLimitLastWriteWins(t *testing.T) {
	b := New().Limit(5).Limit(50)
	want := "?limit(50)"
	if got := b.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestSortDirections(t *testing.T) {
	b := New().Sort("name").SortDesc("created")
	want := "?sort(name,-created)"
	if got := b.Encode(); got != want {
		t.Errorf("Encode() = %q, want %q", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	src := New().Select("a").Where(filter.F("x").Eq(1)).Sort("a").Limit(3)
	before := src.Encode()

	clone := src.Clone()
	clone.Select("b").Where(filter.F("y").Eq(2)).SortDesc("b").Limit(9).Count()

	if got := src.Encode(); got != before {
		t.Errorf("source changed after mutating clone: %q != %q", got, before)
	}
	want := `?select(a,b)&x=1&y=2&sort(a,-b)&limit(9)&count()`
	if got := clone.Encode(); got != want {
		t.Errorf("clone Encode() = %q, want %q", got, want)
	}
}
