package source

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func loadPostgres(ctx context.Context, dsn, query string) ([]Row, error) {
	if query == "" {
		return nil, ErrNoQuery
	}
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("source: connect: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("source: query: %w", err)
	}
	return CollectRows(rows)
}

// CollectRows drains a pgx result set into rows keyed by column name.
func CollectRows(rows pgx.Rows) ([]Row, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Name
	}

	var out []Row
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("source: scan: %w", err)
		}
		for i, v := range vals {
			vals[i] = NormalizeValue(v)
		}
		out = append(out, NewRow(keys, vals))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("source: rows: %w", err)
	}
	return out, nil
}

// NormalizeValue converts driver values that do not compare or print well
// into plain Go values: numerics become float64 and UUIDs become strings.
func NormalizeValue(v any) any {
	switch x := v.(type) {
	case pgtype.Numeric:
		if !x.Valid {
			return nil
		}
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	case [16]byte:
		return uuid.UUID(x).String()
	case []byte:
		return string(x)
	default:
		return v
	}
}
