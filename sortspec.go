package datatable

import "strings"

// Order is a sort direction.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

// Indicator returns the glyph shown next to an actively sorted header.
func (o Order) Indicator() string {
	switch o {
	case Ascending:
		return "▲"
	case Descending:
		return "▼"
	default:
		return ""
	}
}

// SortSpec is the canonical sort directive: a column key and a direction.
type SortSpec struct {
	Column string `json:"columnKey" yaml:"columnKey"`
	Order  Order  `json:"order,omitempty" yaml:"order,omitempty"`
}

// String returns the signed string form, e.g. "-price" for a descending sort.
func (s SortSpec) String() string {
	if s.Order == Descending {
		return "-" + s.Column
	}
	return s.Column
}

// SortDirective is a caller-supplied sort directive. It is implemented by
// [SortKey] and [SortSpec] (value or pointer).
type SortDirective interface {
	sortSpec() *SortSpec
}

// SortKey is the string form of a sort directive. A leading "-" sorts
// descending; a leading "+" or no sign sorts ascending.
type SortKey string

func (k SortKey) sortSpec() *SortSpec {
	s := string(k)
	order := Ascending
	switch {
	case strings.HasPrefix(s, "-"):
		order = Descending
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "" {
		return nil
	}
	return &SortSpec{Column: s, Order: order}
}

func (s SortSpec) sortSpec() *SortSpec {
	if s.Column == "" {
		return nil
	}
	if s.Order != Descending {
		s.Order = Ascending
	}
	return &s
}

// NormalizeSortBy converts a directive into its canonical form. It returns nil
// when no directive is given or the directive names no column.
func NormalizeSortBy(d SortDirective) *SortSpec {
	if !hasDirective(d) {
		return nil
	}
	return d.sortSpec()
}

// ParseSort is shorthand for NormalizeSortBy(SortKey(s)).
func ParseSort(s string) *SortSpec {
	return NormalizeSortBy(SortKey(s))
}

// hasDirective treats a typed nil *SortSpec the same as a nil interface.
func hasDirective(d SortDirective) bool {
	if d == nil {
		return false
	}
	if p, ok := d.(*SortSpec); ok && p == nil {
		return false
	}
	return true
}

func sameSpec(a, b *SortSpec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
