package datatable

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Sentinel errors for programmatic error handling.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrInvalidTemplate   = errors.New("invalid template")
	ErrNotTable          = errors.New("not a rendered table")
	ErrInvalidSchema     = errors.New("invalid column schema")
)

// Format names an output format for a rendered table.
type Format string

const (
	JSON      Format = "json"
	YAML      Format = "yaml"
	CSV       Format = "csv"
	TSV       Format = "tsv"
	JSONL     Format = "jsonl"
	TextTable Format = "table"
	Plain     Format = "plain"
	Markdown  Format = "markdown"
	HTML      Format = "html"
	List      Format = "list"
	Env       Format = "env"
)

const goTemplatePrefix = "go-template="

var formats = []Format{TextTable, Plain, Markdown, HTML, CSV, TSV, JSON, JSONL, YAML, List, Env}

// String returns the format name.
func (f Format) String() string { return string(f) }

// Formats returns all static format names. GoTemplate is not included
// because it is parameterized.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// GoTemplate returns a Format that executes a text/template once per body
// row. The template sees a [RowView].
func GoTemplate(tmpl string) Format {
	return Format(goTemplatePrefix + tmpl)
}

// ParseFormat parses a format name or a go-template=<tmpl> string.
func ParseFormat(s string) (Format, error) {
	if strings.HasPrefix(s, goTemplatePrefix) {
		return Format(s), nil
	}
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// BorderStyle controls table border characters.
type BorderStyle int

const (
	BorderRounded BorderStyle = iota // ╭─╮╰╯│┬┴├┤┼
	BorderNone                       // No borders, space-separated columns
	BorderASCII                      // +-+|
	BorderHeavy                      // ┏━┓┗┛┃┳┻┣┫╋
	BorderDouble                     // ╔═╗╚╝║╦╩╠╣╬
)

var borderNames = map[string]BorderStyle{
	"rounded": BorderRounded,
	"none":    BorderNone,
	"ascii":   BorderASCII,
	"heavy":   BorderHeavy,
	"double":  BorderDouble,
}

// ParseBorder parses a border style name.
func ParseBorder(s string) (BorderStyle, error) {
	if b, ok := borderNames[strings.ToLower(s)]; ok {
		return b, nil
	}
	return BorderRounded, fmt.Errorf("%w: border %q", ErrUnsupportedFormat, s)
}

// Alignment controls column text alignment.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// WriteOption configures [Write].
type WriteOption func(*writeConfig)

type writeConfig struct {
	border  BorderStyle
	title   string
	caption string
	aligns  []Alignment
	styles  []func(string) string
	href    func(*Node) string
}

// WithBorder sets the border style of the table format. Default: BorderRounded.
func WithBorder(b BorderStyle) WriteOption {
	return func(c *writeConfig) { c.border = b }
}

// WithTitle renders a title above text tables and as an HTML caption.
func WithTitle(s string) WriteOption {
	return func(c *writeConfig) { c.title = s }
}

// WithCaption renders a line below text tables.
func WithCaption(s string) WriteOption {
	return func(c *writeConfig) { c.caption = s }
}

// WithAlignments sets per-column alignment for text, Markdown and HTML.
func WithAlignments(a ...Alignment) WriteOption {
	return func(c *writeConfig) { c.aligns = a }
}

// WithStyles sets per-column style functions for text tables. Each function
// wraps the padded cell, so escape codes never affect width calculations.
func WithStyles(s ...func(string) string) WriteOption {
	return func(c *writeConfig) { c.styles = s }
}

// WithHref links clickable HTML cells. The function returns the link target
// for a cell node, or "" to leave it unlinked.
func WithHref(fn func(*Node) string) WriteOption {
	return func(c *writeConfig) { c.href = fn }
}

func newWriteConfig(opts []WriteOption) *writeConfig {
	c := &writeConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Write renders the table tree n in format f to w.
func Write(w io.Writer, f Format, n *Node, opts ...WriteOption) error {
	if n == nil {
		return ErrNotTable
	}
	cfg := newWriteConfig(opts)
	switch f {
	case HTML:
		return writeHTML(w, n, cfg)
	case TextTable:
		return writeText(w, extractGrid(n), cfg)
	case Plain:
		cfg.border = BorderNone
		return writeText(w, extractGrid(n), cfg)
	case Markdown:
		return writeMarkdown(w, extractGrid(n), cfg)
	case CSV:
		return writeCSV(w, extractGrid(n), ',')
	case TSV:
		return writeTSV(w, extractGrid(n))
	case JSON:
		return writeJSON(w, extractGrid(n))
	case JSONL:
		return writeJSONL(w, extractGrid(n))
	case YAML:
		return writeYAML(w, extractGrid(n))
	case List:
		return writeList(w, extractGrid(n))
	case Env:
		return writeEnv(w, extractGrid(n))
	default:
		if tmpl, ok := strings.CutPrefix(string(f), goTemplatePrefix); ok {
			return writeGoTemplate(w, tmpl, extractGrid(n))
		}
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// Marshal renders the table tree n in format f and returns the bytes.
func Marshal(f Format, n *Node, opts ...WriteOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, n, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
