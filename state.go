package datatable

// SortState is the sort state owned by a [Table].
//
// Once Controlled is set it stays set: the sort is then always derived from
// the caller's directive and header clicks never change it locally.
type SortState struct {
	Sorting    *SortSpec
	Controlled bool
}

// DeriveState computes the state for a render pass from the caller's current
// directive and the previous state. It has no side effects; calling it again
// with the same arguments gives an equal result.
func DeriveState(sortBy SortDirective, prev SortState) SortState {
	if hasDirective(sortBy) || prev.Controlled {
		return SortState{Sorting: NormalizeSortBy(sortBy), Controlled: true}
	}
	return prev
}

// Cycle advances the local sort for a header click on column: a new column
// sorts ascending, an ascending column flips to descending, and a descending
// column clears the sort. A controlled state is returned unchanged.
func (s SortState) Cycle(column string) SortState {
	if s.Controlled {
		return s
	}
	switch {
	case s.Sorting == nil || s.Sorting.Column != column:
		s.Sorting = &SortSpec{Column: column, Order: Ascending}
	case s.Sorting.Order == Ascending:
		s.Sorting = &SortSpec{Column: column, Order: Descending}
	default:
		s.Sorting = nil
	}
	return s
}

// OrderOf returns the active direction for column, or "" when column is not
// the sort column.
func (s SortState) OrderOf(column string) Order {
	if s.Sorting == nil || s.Sorting.Column != column {
		return ""
	}
	return s.Sorting.Order
}
