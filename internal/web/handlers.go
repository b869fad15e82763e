package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/logging"
)

var errNoCell = errors.New("no such cell")

// handlePage renders the table page. A sort query parameter hands the
// session's sort to the URL; from then on header links no longer change it.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)

	sess.mu.Lock()
	if v, ok := r.URL.Query()["sort"]; ok && len(v) > 0 {
		sess.sortBy = datatable.SortKey(v[0])
	}
	root := s.render(sess)
	view := pageView{
		Title:  s.cfg.Table.Title,
		State:  sess.table.State(),
		Notice: sess.notice,
		Table:  datatable.Component(root, datatable.WithHref(cellHref)),
	}
	sess.mu.Unlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page(view).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("page render failed", "error", err)
	}
}

func (s *Server) handleHeaderClick(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	s.click(w, r, func(root *datatable.Node) *datatable.Node {
		return root.Find(datatable.KindHeaderCell, key)
	})
}

func (s *Server) handleDataClick(w http.ResponseWriter, r *http.Request) {
	row, key := pathParam(r, "row"), pathParam(r, "key")
	s.click(w, r, func(root *datatable.Node) *datatable.Node {
		return root.FindCell(row, key)
	})
}

func (s *Server) handleFooterClick(w http.ResponseWriter, r *http.Request) {
	key := pathParam(r, "key")
	s.click(w, r, func(root *datatable.Node) *datatable.Node {
		return root.Find(datatable.KindFooterCell, key)
	})
}

// click renders the session's table, clicks the node chosen by find and
// redirects back to the page.
func (s *Server) click(w http.ResponseWriter, r *http.Request, find func(*datatable.Node) *datatable.Node) {
	sess := s.session(w, r)

	sess.mu.Lock()
	n := find(s.render(sess))
	handled := false
	if n != nil && !n.Hidden {
		handled = n.Click(nil)
	}
	sess.mu.Unlock()

	if n == nil || n.Hidden {
		s.respondError(w, r, fmt.Errorf("%w: %s", errNoCell, r.URL.Path), http.StatusNotFound)
		return
	}
	logging.FromContext(r.Context()).Debug("cell clicked",
		"kind", n.Kind.String(),
		"key", n.Key,
		"handled", handled,
	)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// handleExport writes the session's current view in the requested format.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := datatable.ParseFormat(pathParam(r, "format"))
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	border, err := datatable.ParseBorder(s.cfg.Table.Border)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	sess := s.session(w, r)
	sess.mu.Lock()
	root := s.render(sess)
	sess.mu.Unlock()

	b, err := datatable.Marshal(f, root,
		datatable.WithBorder(border),
		datatable.WithTitle(s.cfg.Table.Title),
	)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", contentType(f))
	if _, err := w.Write(b); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}

// respondError logs err with the request id and sends a plain status text
// so internals never reach the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	logging.FromContext(r.Context()).Warn("request error",
		"path", r.URL.Path,
		"status", status,
		"error", err.Error(),
	)
	http.Error(w, http.StatusText(status), status)
}

func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// cellHref links header, footer and data cells to their click routes.
func cellHref(n *datatable.Node) string {
	key := url.PathEscape(n.Key)
	switch n.Kind {
	case datatable.KindHeaderCell:
		return "/header/" + key
	case datatable.KindFooterCell:
		return "/footer/" + key
	case datatable.KindCell:
		if row := n.Attr("data-row"); row != "" {
			return "/cell/" + row + "/" + key
		}
	}
	return ""
}

func contentType(f datatable.Format) string {
	switch f {
	case datatable.HTML:
		return "text/html; charset=utf-8"
	case datatable.JSON:
		return "application/json"
	case datatable.JSONL:
		return "application/x-ndjson"
	case datatable.CSV:
		return "text/csv; charset=utf-8"
	case datatable.TSV:
		return "text/tab-separated-values; charset=utf-8"
	case datatable.YAML:
		return "application/yaml"
	default:
		return "text/plain; charset=utf-8"
	}
}
