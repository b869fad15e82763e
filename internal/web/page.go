package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/bjaus/datatable"
)

const pageStyle = `body { font-family: system-ui, sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25rem 0.75rem; }
th a, td a { color: inherit; text-decoration: none; display: block; }
th[data-sortable] a { cursor: pointer; }
.status { color: #555; margin: 0.5rem 0; }
.notice { background: #eef; padding: 0.25rem 0.5rem; }
nav a { margin-right: 0.5rem; }`

type pageView struct {
	Title  string
	State  datatable.SortState
	Notice string
	Table  templ.Component
}

// page is the full HTML document around the table component.
func page(v pageView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := v.Title
		if title == "" {
			title = "datatable"
		}
		pw := &pageWriter{w: w}
		pw.printf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
		pw.printf("<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n", templ.EscapeString(title), pageStyle)
		pw.printf("<h1>%s</h1>\n", templ.EscapeString(title))
		pw.printf("<p class=\"status\">%s</p>\n", templ.EscapeString(sortStatus(v.State)))
		if v.Notice != "" {
			pw.printf("<p class=\"notice\">%s</p>\n", templ.EscapeString(v.Notice))
		}
		if pw.err != nil {
			return pw.err
		}
		if err := v.Table.Render(ctx, w); err != nil {
			return err
		}
		pw.printf("<nav>Export:")
		for _, f := range datatable.Formats() {
			pw.printf(" <a href=\"/export/%s\">%s</a>", f, f)
		}
		pw.printf("</nav>\n</body>\n</html>\n")
		return pw.err
	})
}

// sortStatus describes the sort shown above the table.
func sortStatus(s datatable.SortState) string {
	status := "Unsorted"
	if s.Sorting != nil {
		status = fmt.Sprintf("Sorted by %s %s", s.Sorting.Column, s.Sorting.Order.Indicator())
	}
	if s.Controlled {
		status += " (fixed)"
	}
	return status
}

// pageWriter keeps the first write error and ignores later writes.
type pageWriter struct {
	w   io.Writer
	err error
}

func (pw *pageWriter) printf(format string, args ...any) {
	if pw.err != nil {
		return
	}
	_, pw.err = fmt.Fprintf(pw.w, format, args...)
}
