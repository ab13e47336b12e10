// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

package sink

import (
	"testing"
	"time"

	"rowdeck/cli/internal/schema"
)

func TestSQLType(t *testing.T) {
	tests := []struct {
		tag  schema.Tag
		want string
	}{
		{schema.TagInteger, "BIGINT"},
		{schema.TagNumber, "DOUBLE PRECISION"},
		{schema.TagBoolean, "BOOLEAN"},
		{schema.TagDate, "DATE"},
		{schema.TagDatetime, "TIMESTAMPTZ"},
		{schema.TagArray, "JSONB"},
		{schema.TagObject, "JSONB"},
		{schema.TagString, "TEXT"},
		{schema.TagRef, "TEXT"},
		{schema.TagGeometry, "TEXT"},
		{schema.TagUnknown, "TEXT"},
	}
	for _, tt := range tests {
		if got := sqlType(tt.tag); got != tt.want {
			t.Errorf("sqlType(%s) = %s, want %s", tt.tag, got, tt.want)
		}
	}
}

func TestColumnValue(t *testing.T) {
	if got := columnValue(nil, schema.TagInteger); got != nil {
		t.Errorf("nil value = %v, want nil", got)
	}
	if got := columnValue(float64(42), schema.TagInteger); got != int64(42) {
		t.Errorf("integer value = %v (%T), want int64(42)", got, got)
	}
	if got := columnValue("2024-01-15", schema.TagDate); got != time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC) {
		t.Errorf("date value = %v, want parsed time", got)
	}
	if got := columnValue("2024-01-15T08:30:00Z", schema.TagDatetime).(time.Time); !got.Equal(time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("datetime value = %v, want parsed time", got)
	}
	b, ok := columnValue(map[string]any{"a": 1}, schema.TagObject).([]byte)
	if !ok || string(b) != `{"a":1}` {
		t.Errorf("object value = %v, want JSON bytes", b)
	}
	if got := columnValue(float64(7), schema.TagString); got != "7" {
		t.Errorf("string fallback = %v, want \"7\"", got)
	}
}
