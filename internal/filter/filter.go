// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package filter models boolean filter expressions for the Rowdeck query
// grammar. Expressions are built from field predicates and combined with
// And/Or into an immutable tree: combinators always allocate a new node, so
// any subtree can be reused in several filters at once.
//
// A filter is turned into its wire form with Encode. The same grammar can be
// parsed back from a human-typed string with Parse.
package filter

// kind tags the variant held by an Expr node.
type kind int

const (
	kindCompare kind = iota
	kindString
	kindMembership
	kindAnd
	kindOr
)

// Comparison operator symbols as they appear on the wire.
const (
	OpEq = "="
	OpNe = "!="
	OpLt = "<"
	OpLe = "<="
	OpGt = ">"
	OpGe = ">="
)

// Method operator names as they appear on the wire.
const (
	OpContains   = "contains"
	OpStartsWith = "startswith"
	OpEndsWith   = "endswith"
	OpIn         = "in"
	OpNotIn      = "notin"
)

// Expr is one node of a filter tree. Nodes are never mutated after
// creation; And and Or return fresh nodes referencing their operands.
type Expr struct {
	kind   kind
	field  string
	op     string
	value  any
	values []any
	left   *Expr
	right  *Expr
}

// Field is a leaf builder for predicates on a single field.
type Field struct {
	name string
}

// F starts a predicate on the named field.
func F(name string) Field {
	return Field{name: name}
}

// Eq matches records whose field equals v.
func (f Field) Eq(v any) *Expr { return f.compare(OpEq, v) }

// Ne matches records whose field differs from v.
func (f Field) Ne(v any) *Expr { return f.compare(OpNe, v) }

// Lt matches records whose field is less than v.
func (f Field) Lt(v any) *Expr { return f.compare(OpLt, v) }

// Le matches records whose field is less than or equal to v.
func (f Field) Le(v any) *Expr { return f.compare(OpLe, v) }

// Gt matches records whose field is greater than v.
func (f Field) Gt(v any) *Expr { return f.compare(OpGt, v) }

// Ge matches records whose field is greater than or equal to v.
func (f Field) Ge(v any) *Expr { return f.compare(OpGe, v) }

// Contains matches records whose field contains the substring s.
func (f Field) Contains(s string) *Expr { return f.method(OpContains, s) }

// StartsWith matches records whose field starts with s.
func (f Field) StartsWith(s string) *Expr { return f.method(OpStartsWith, s) }

// EndsWith matches records whose field ends with s.
func (f Field) EndsWith(s string) *Expr { return f.method(OpEndsWith, s) }

// In matches records whose field equals one of vs. The argument order is
// preserved on the wire.
func (f Field) In(vs ...any) *Expr {
	return &Expr{
		kind:   kindMembership,
		field:  f.name,
		op:     OpIn,
		values: append([]any(nil), vs...),
	}
}

// NotIn matches records whose field equals none of vs.
func (f Field) NotIn(vs ...any) *Expr {
	return &Expr{
		kind:   kindMembership,
		field:  f.name,
		op:     OpNotIn,
		values: append([]any(nil), vs...),
	}
}

func (f Field) compare(op string, v any) *Expr {
	return &Expr{kind: kindCompare, field: f.name, op: op, value: v}
}

func (f Field) method(op string, s string) *Expr {
	return &Expr{kind: kindString, field: f.name, op: op, value: s}
}

// And combines two expressions conjunctively. Both operands remain usable
// on their own.
func (e *Expr) And(other *Expr) *Expr {
	return &Expr{kind: kindAnd, left: e, right: other}
}

// Or combines two expressions disjunctively. Both operands remain usable
// on their own.
func (e *Expr) Or(other *Expr) *Expr {
	return &Expr{kind: kindOr, left: e, right: other}
}
