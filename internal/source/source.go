// Package source loads records for a table from files, stdin or Postgres.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bjaus/datatable"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnknownFormat = errors.New("unknown source format")
	ErrMalformed     = errors.New("malformed records")
	ErrNoQuery       = errors.New("postgres source needs a query")
)

// Row is one loaded record. It keeps the column order of its source, so a
// table without a schema shows columns in file order.
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow pairs keys with values. Missing values are nil.
func NewRow(keys []string, values []any) Row {
	r := Row{keys: keys, values: make(map[string]any, len(keys))}
	for i, k := range keys {
		if i < len(values) {
			r.values[k] = values[i]
		} else {
			r.values[k] = nil
		}
	}
	return r
}

// Fields returns the column keys in source order.
func (r Row) Fields() []string { return r.keys }

// Value returns the value stored under key.
func (r Row) Value(key string) any { return r.values[key] }

// Spec describes where to load records from.
type Spec struct {
	// Path is a file path, "-" for Stdin, or a postgres:// DSN.
	Path string
	// Format is csv, tsv, json or yaml. It is inferred from the file
	// extension when empty and is required for stdin.
	Format string
	// Query is the SQL run against a postgres source.
	Query string
	Stdin io.Reader
}

// IsPostgres reports whether path is a Postgres connection string.
func IsPostgres(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}

// Load reads all records described by spec.
func Load(ctx context.Context, spec Spec) ([]Row, error) {
	if IsPostgres(spec.Path) {
		return loadPostgres(ctx, spec.Path, spec.Query)
	}

	format := strings.ToLower(spec.Format)
	if format == "" && spec.Path != "-" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(spec.Path)), ".")
	}

	var r io.Reader
	if spec.Path == "-" {
		if spec.Stdin == nil {
			return nil, fmt.Errorf("source: stdin not available")
		}
		r = spec.Stdin
	} else {
		f, err := os.Open(spec.Path)
		if err != nil {
			return nil, fmt.Errorf("source: %w", err)
		}
		defer f.Close()
		r = f
	}
	return Decode(r, format)
}

// Decode reads records in format from r.
func Decode(r io.Reader, format string) ([]Row, error) {
	switch format {
	case "csv":
		return decodeDelimited(r, ',')
	case "tsv":
		return decodeDelimited(r, '\t')
	case "json", "yaml", "yml":
		return decodeDocument(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// LoadSchema reads a YAML or JSON column schema file.
func LoadSchema(path string) (datatable.Schema, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var s datatable.Schema
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return s, nil
}

func decodeDelimited(r io.Reader, comma rune) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
		}
		records = append(records, rec)
	}

	kinds := detectKinds(len(header), records)
	var rows []Row
	for _, rec := range records {
		values := make([]any, len(rec))
		for i, s := range rec {
			kind := kindText
			if i < len(kinds) {
				kind = kinds[i]
			}
			values[i] = kind.parse(s)
		}
		rows = append(rows, NewRow(header, values))
	}
	return rows, nil
}

// columnKind is the type shared by every non-empty cell of a delimited
// column.
type columnKind int

const (
	kindText columnKind = iota
	kindNumber
	kindBool
)

// detectKinds types each column as a whole: a column is numeric or boolean
// only when all of its non-empty cells are. Anything else keeps its text, so
// codes like "02134" or a name like "Nan" survive unchanged.
func detectKinds(width int, records [][]string) []columnKind {
	kinds := make([]columnKind, width)
	for c := range kinds {
		number, boolean, seen := true, true, false
		for _, rec := range records {
			if c >= len(rec) || rec[c] == "" {
				continue
			}
			seen = true
			switch ParseScalar(rec[c]).(type) {
			case int64, float64:
				boolean = false
			case bool:
				number = false
			default:
				number, boolean = false, false
			}
		}
		switch {
		case !seen:
			kinds[c] = kindText
		case number:
			kinds[c] = kindNumber
		case boolean:
			kinds[c] = kindBool
		}
	}
	return kinds
}

func (k columnKind) parse(s string) any {
	if s == "" {
		return nil
	}
	switch k {
	case kindNumber:
		if v, ok := parseNumber(s); ok {
			return v
		}
	case kindBool:
		return s == "true"
	}
	return s
}

// ParseScalar types a single text cell: finite numbers and the booleans
// true and false are parsed, an empty cell is nil, and anything else stays a
// string.
func ParseScalar(s string) any {
	if s == "" {
		return nil
	}
	if v, ok := parseNumber(s); ok {
		return v
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// parseNumber parses a decimal integer or a finite float. Text with a
// leading zero, such as a postal code, is not a number.
func parseNumber(s string) (any, bool) {
	digits := strings.TrimLeft(s, "+-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return nil, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return f, true
}

func decodeDocument(r io.Reader) ([]Row, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformed, err)
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) == 1 {
		root = root.Content[0]
	}
	if root.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: want a list of records", ErrMalformed)
	}
	rows := make([]Row, 0, len(root.Content))
	for i, item := range root.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: record %d is not a mapping", ErrMalformed, i)
		}
		keys := make([]string, 0, len(item.Content)/2)
		values := make([]any, 0, len(item.Content)/2)
		for j := 0; j+1 < len(item.Content); j += 2 {
			var v any
			if err := item.Content[j+1].Decode(&v); err != nil {
				return nil, fmt.Errorf("%w: record %d: %s", ErrMalformed, i, err)
			}
			keys = append(keys, item.Content[j].Value)
			values = append(values, v)
		}
		rows = append(rows, NewRow(keys, values))
	}
	return rows, nil
}
