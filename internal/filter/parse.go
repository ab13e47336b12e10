// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	rderrors "rowdeck/cli/internal/errors"
)

// parseHint is shown with every filter syntax error so the user sees a
// working example next to the complaint.
const parseHint = `examples: name="John"  age>=30  status.in("active","pending")  title.contains("report")`

var (
	reMethod = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*)\.(contains|startswith|endswith|in|notin)\((.*)\)$`)
	reField  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	reNumber = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

	// Day-first/month-first shapes are ambiguous; ISO 8601 (2024-01-02) is
	// deliberately not matched here.
	reAmbiguousDate = regexp.MustCompile(`^(\d{1,2}[-/.]\d{1,2}[-/.]\d{2,4}|\d{4}[/.]\d{1,2}[/.]\d{1,2})$`)
)

// Parse turns one human-typed filter expression into an Expr.
//
// Supported forms:
//
//	field = value     (also !=, <, <=, >, >=)
//	field.contains("text")   field.startswith("text")   field.endswith("text")
//	field.in(v1,v2,...)      field.notin(v1,v2,...)
//
// Values may be null, true, false, numbers, quoted strings (single or double
// quotes, backslash escapes) or bare words, which are taken as strings.
// Date-looking bare words that are not ISO 8601 are rejected rather than
// guessed at.
func Parse(input string) (*Expr, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, parseErr("empty filter expression")
	}

	if m := reMethod.FindStringSubmatch(s); m != nil {
		return parseMethod(m[1], m[2], m[3])
	}

	field, op, rawValue, ok := splitComparison(s)
	if !ok {
		return nil, parseErr(fmt.Sprintf("unrecognized filter syntax %q", s))
	}
	if !reField.MatchString(field) {
		return nil, parseErr(fmt.Sprintf("invalid field name %q", field))
	}
	if rawValue == "" {
		return nil, parseErr(fmt.Sprintf("missing value after %q", field+op))
	}
	value, err := parseLiteral(rawValue)
	if err != nil {
		return nil, err
	}

	f := F(field)
	switch op {
	case OpEq:
		return f.Eq(value), nil
	case OpNe:
		return f.Ne(value), nil
	case OpLt:
		return f.Lt(value), nil
	case OpLe:
		return f.Le(value), nil
	case OpGt:
		return f.Gt(value), nil
	default:
		return f.Ge(value), nil
	}
}

// splitComparison finds the first comparison operator, preferring the
// two-character forms so "<=" never parses as "<" followed by "=value".
func splitComparison(s string) (field, op, value string, ok bool) {
	for i := 0; i < len(s); i++ {
		if i+1 < len(s) {
			two := s[i : i+2]
			if two == OpNe || two == OpLe || two == OpGe {
				return strings.TrimSpace(s[:i]), two, strings.TrimSpace(s[i+2:]), true
			}
		}
		switch s[i] {
		case '=', '<', '>':
			return strings.TrimSpace(s[:i]), string(s[i]), strings.TrimSpace(s[i+1:]), true
		}
	}
	return "", "", "", false
}

func parseMethod(field, method, args string) (*Expr, error) {
	if !reField.MatchString(field) {
		return nil, parseErr(fmt.Sprintf("invalid field name %q", field))
	}
	if strings.TrimSpace(args) == "" {
		return nil, parseErr(fmt.Sprintf("%s.%s() needs at least one argument", field, method))
	}

	f := F(field)
	switch method {
	case OpIn, OpNotIn:
		var values []any
		for _, raw := range splitArgs(args) {
			v, err := parseLiteral(strings.TrimSpace(raw))
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		if method == OpIn {
			return f.In(values...), nil
		}
		return f.NotIn(values...), nil
	default:
		v, err := parseLiteral(strings.TrimSpace(args))
		if err != nil {
			return nil, err
		}
		text, isString := v.(string)
		if !isString {
			return nil, parseErr(fmt.Sprintf("%s.%s(...) expects a string argument", field, method))
		}
		switch method {
		case OpContains:
			return f.Contains(text), nil
		case OpStartsWith:
			return f.StartsWith(text), nil
		default:
			return f.EndsWith(text), nil
		}
	}
}

// splitArgs splits an in/notin argument list on commas, tracking quote and
// escape state character by character so commas inside quoted values never
// split. The quoting and escapes are left intact for parseLiteral.
func splitArgs(s string) []string {
	var parts []string
	var cur strings.Builder
	var quote byte
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			cur.WriteByte(c)
			escaped = true
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case c == ',':
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())
	return parts
}

// parseLiteral interprets one value token.
func parseLiteral(tok string) (any, error) {
	switch tok {
	case "":
		return nil, parseErr("empty value")
	case "null":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if tok[0] == '"' || tok[0] == '\'' {
		return unquote(tok)
	}

	if reNumber.MatchString(tok) {
		if !strings.Contains(tok, ".") {
			if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				return n, nil
			}
		}
		if f, err := strconv.ParseFloat(tok, 64); err == nil {
			return f, nil
		}
	}

	if reAmbiguousDate.MatchString(tok) {
		return nil, rderrors.New(rderrors.InvalidFilter,
			fmt.Sprintf("ambiguous date %q", tok)).
			WithHint(`write dates as ISO 8601, e.g. created>="2024-01-31"`)
	}

	// Bare word: taken as a string.
	return tok, nil
}

// unquote strips a matched pair of quotes and resolves backslash escapes of
// the quote character and the backslash itself.
func unquote(tok string) (string, error) {
	quote := tok[0]
	var out strings.Builder
	escaped := false
	for i := 1; i < len(tok); i++ {
		c := tok[i]
		switch {
		case escaped:
			out.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == quote:
			if i != len(tok)-1 {
				return "", parseErr(fmt.Sprintf("unexpected %q after closing quote", tok[i+1:]))
			}
			return out.String(), nil
		default:
			out.WriteByte(c)
		}
	}
	return "", parseErr(fmt.Sprintf("unterminated string %s", tok))
}

func parseErr(msg string) error {
	return rderrors.New(rderrors.InvalidFilter, msg).WithHint(parseHint)
}
