// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package filter

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Encode renders the expression in the Rowdeck wire grammar.
//
// Comparisons render as field<op>value, method operators as
// field.op(value[,value...]). And joins with '&', Or with '|'. And binds
// tighter than Or, so the only parenthesized form is an Or appearing as a
// direct child of an And; chains of the same combinator render
// left-to-right without parentheses.
func (e *Expr) Encode() string {
	var b strings.Builder
	e.write(&b, false)
	return b.String()
}

func (e *Expr) write(b *strings.Builder, insideAnd bool) {
	switch e.kind {
	case kindCompare:
		b.WriteString(e.field)
		b.WriteString(e.op)
		b.WriteString(formatValue(e.value))
	case kindString:
		b.WriteString(e.field)
		b.WriteByte('.')
		b.WriteString(e.op)
		b.WriteByte('(')
		b.WriteString(formatValue(e.value))
		b.WriteByte(')')
	case kindMembership:
		b.WriteString(e.field)
		b.WriteByte('.')
		b.WriteString(e.op)
		b.WriteByte('(')
		for i, v := range e.values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(formatValue(v))
		}
		b.WriteByte(')')
	case kindAnd:
		e.left.write(b, true)
		b.WriteByte('&')
		e.right.write(b, true)
	case kindOr:
		if insideAnd {
			b.WriteByte('(')
		}
		e.left.write(b, false)
		b.WriteByte('|')
		e.right.write(b, false)
		if insideAnd {
			b.WriteByte(')')
		}
	}
}

// formatValue renders a single predicate value. Strings are quoted, with
// embedded quotes backslash-escaped, and the whole token percent-encoded.
// Numbers render as plain decimals, booleans as true/false, nil as null,
// times as a quoted RFC 3339 string. Anything else is rendered as its JSON
// text; values that cannot even be marshaled get a safe fallback marker so
// a single odd value never sinks the whole render.
func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return encodeString(t)
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int8:
		return strconv.FormatInt(int64(t), 10)
	case int16:
		return strconv.FormatInt(int64(t), 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint8:
		return strconv.FormatUint(uint64(t), 10)
	case uint16:
		return strconv.FormatUint(uint64(t), 10)
	case uint32:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case time.Time:
		return encodeString(t.UTC().Format(time.RFC3339))
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return encodeString("<unsupported>")
		}
		return escapeToken(string(raw))
	}
}

func encodeString(s string) string {
	escaped := strings.ReplaceAll(s, `"`, `\"`)
	return escapeToken(`"` + escaped + `"`)
}

// escapeToken percent-encodes a rendered value. Spaces become %20, not '+':
// the service decodes the query path-style, where '+' is a literal plus.
func escapeToken(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
