// Package datatable orders and renders in-memory records as a table tree.
//
// A [Table] takes a collection of records of any type T and a column
// [Schema], computes a display order, and builds a [Node] tree with head,
// body and foot sections. Presentation is delegated to pluggable renderers;
// click handlers on header, footer and data cells report [Event] values to
// caller callbacks.
//
// # Columns
//
// A [Schema] maps record keys to either a [Label] or a full [Column]. When
// the schema is nil the keys of the first record are used. Fields are read
// through an [Accessor]; the default [ReflectAccessor] understands structs,
// string-keyed maps, and records implementing [Fielder] and [Valuer].
//
// # Sorting
//
// Sorting is uncontrolled until the caller supplies Props.SortBy. While
// uncontrolled, clicking a sortable header cycles that column through
// ascending, descending and unsorted. Once a directive has been supplied the
// table is controlled for good: the sort always comes from Props.SortBy and
// header clicks never change it. A caller OnHeaderClick callback replaces
// sort cycling entirely.
//
//	t := datatable.New[Person]()
//	root := t.Render(datatable.Props[Person]{Data: people, SortBy: datatable.SortKey("-age")})
//
// Orders are computed with a stable sort over record indices, grouped first
// when Props.GroupBy is set. The data slice is never reordered. The last order
// is remembered, so a render with the same slice, group key and sort does no
// sorting work.
//
// # Renderers
//
// Each of the head, body, row and cell renderers, and the row key resolver,
// is a [Renderer]. A nil renderer in [Props] selects the default one.
//
// # Output
//
// [Write] and [Marshal] serialize a rendered tree as a text table, Markdown,
// HTML, CSV, TSV, JSON, JSONL, YAML, a plain list, shell variable blocks or a
// go-template. [Component] returns the HTML rendering as a templ component.
//
// # Errors
//
// Rendering never fails. Writers return wrapped sentinel errors:
//
//   - [ErrUnsupportedFormat]: unknown format or border name
//   - [ErrInvalidTemplate]: invalid go-template syntax
//   - [ErrNotTable]: nil tree
//   - [ErrInvalidSchema]: malformed schema document
package datatable
