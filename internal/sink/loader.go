// Copyright (c) 2025 Rowdeck
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package sink loads streamed records into PostgreSQL over a pgx connection
// pool. The target table is created from an inferred schema and rows are
// written in batches with the COPY protocol.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rowdeck/cli/internal/remote"
	"rowdeck/cli/internal/schema"
)

// Loader writes records into one PostgreSQL database.
type Loader struct {
	pool *pgxpool.Pool
}

// Connect opens a connection pool for the given DSN and verifies it with a
// ping.
func Connect(ctx context.Context, dsn string) (*Loader, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Loader{pool: pool}, nil
}

// Close releases the connection pool.
func (l *Loader) Close() {
	l.pool.Close()
}

// sqlType maps an inferred type tag to the PostgreSQL column type.
func sqlType(tag schema.Tag) string {
	switch tag {
	case schema.TagInteger:
		return "BIGINT"
	case schema.TagNumber:
		return "DOUBLE PRECISION"
	case schema.TagBoolean:
		return "BOOLEAN"
	case schema.TagDate:
		return "DATE"
	case schema.TagDatetime:
		return "TIMESTAMPTZ"
	case schema.TagArray, schema.TagObject:
		return "JSONB"
	default:
		// string, ref, url, file, geometry, unknown all land on TEXT; a
		// geometry column would need PostGIS, which we do not assume.
		return "TEXT"
	}
}

// EnsureTable creates the target table from the inferred schema when it does
// not exist yet. Columns follow the schema's field order.
func (l *Loader) EnsureTable(ctx context.Context, table string, s *schema.Schema) error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema for %s has no fields", s.Model)
	}

	cols := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		cols = append(cols, pgx.Identifier{f.Name}.Sanitize()+" "+sqlType(f.Type))
	}
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pgx.Identifier{table}.Sanitize(), strings.Join(cols, ", "))

	if _, err := l.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}

// CopyRows inserts records into the table with the COPY protocol and returns
// how many rows were written. Fields missing from a record become NULL.
func (l *Loader) CopyRows(ctx context.Context, table string, fields []schema.Field, records []remote.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(fields))
		for j, f := range fields {
			row[j] = columnValue(rec[f.Name], f.Type)
		}
		rows[i] = row
	}

	n, err := l.pool.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", table, err)
	}
	return n, nil
}

// columnValue converts an envelope value into something pgx can encode for
// the column's SQL type.
func columnValue(v any, tag schema.Tag) any {
	if v == nil {
		return nil
	}
	switch tag {
	case schema.TagInteger:
		if f, ok := v.(float64); ok {
			return int64(f)
		}
		return v
	case schema.TagNumber, schema.TagBoolean:
		return v
	case schema.TagDate:
		if s, ok := v.(string); ok {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return t
			}
		}
		return v
	case schema.TagDatetime:
		if s, ok := v.(string); ok {
			if t, err := time.Parse(time.RFC3339, s); err == nil {
				return t
			}
		}
		return v
	case schema.TagArray, schema.TagObject:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return b
	default:
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprint(v)
	}
}
