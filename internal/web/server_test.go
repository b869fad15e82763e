package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/config"
	"github.com/bjaus/datatable/internal/source"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	cfg, err := config.LoadFrom(func(k string) string { return env[k] })
	require.NoError(t, err)
	return cfg
}

func testData() Dataset {
	keys := []string{"name", "qty"}
	return Dataset{Rows: []source.Row{
		source.NewRow(keys, []any{"bob", int64(3)}),
		source.NewRow(keys, []any{"ann", int64(5)}),
	}}
}

// client replays the session cookie like a browser.
type client struct {
	h       http.Handler
	cookies []*http.Cookie
}

func newClient(t *testing.T, data Dataset, env map[string]string) (*client, *Server) {
	t.Helper()
	s := NewServer(data, testConfig(t, env))
	return &client{h: s.Router()}, s
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		c.cookies = cs
	}
	return rec
}

func (c *client) page(t *testing.T) string {
	t.Helper()
	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func rowOrder(t *testing.T, body string, names ...string) {
	t.Helper()
	last := -1
	for _, n := range names {
		i := strings.Index(body, ">"+n+"</a>")
		require.NotEqual(t, -1, i, n)
		assert.Greater(t, i, last, "%s out of order", n)
		last = i
	}
}

func TestPageStartsSession(t *testing.T) {
	t.Parallel()
	c, s := newClient(t, testData(), nil)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Len(t, c.cookies, 1)
	assert.Equal(t, sessionCookie, c.cookies[0].Name)

	body := rec.Body.String()
	assert.Contains(t, body, "<table>")
	assert.Contains(t, body, `<a href="/header/name">name</a>`)
	assert.Contains(t, body, `<a href="/cell/0/name">bob</a>`)
	assert.Contains(t, body, `<a href="/export/csv">csv</a>`)
	assert.Contains(t, body, "Unsorted")
	rowOrder(t, body, "bob", "ann")

	rec = c.get("/")
	assert.Empty(t, rec.Result().Cookies())
	assert.Equal(t, 1, s.sessions.len())
}

func TestUnknownSessionCookie(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		value string
	}{
		"not a uuid":   {value: "abc"},
		"unknown uuid": {value: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c, s := newClient(t, testData(), nil)
			c.cookies = []*http.Cookie{{Name: sessionCookie, Value: tt.value}}
			c.get("/")
			require.Len(t, c.cookies, 1)
			assert.NotEqual(t, tt.value, c.cookies[0].Value)
			assert.Equal(t, 1, s.sessions.len())
		})
	}
}

func TestHeaderClickCyclesSort(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), nil)
	c.page(t)

	rec := c.get("/header/name")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	body := c.page(t)
	assert.Contains(t, body, `data-order="ascending"`)
	assert.Contains(t, body, "Sorted by name ▲")
	rowOrder(t, body, "ann", "bob")

	c.get("/header/name")
	body = c.page(t)
	assert.Contains(t, body, `data-order="descending"`)
	rowOrder(t, body, "bob", "ann")

	c.get("/header/name")
	body = c.page(t)
	assert.NotContains(t, body, "data-order")
	assert.Contains(t, body, "Unsorted")
}

func TestSessionsAreIndependent(t *testing.T) {
	t.Parallel()
	c1, s := newClient(t, testData(), nil)
	c2 := &client{h: s.Router()}

	c1.page(t)
	c1.get("/header/qty")
	assert.Contains(t, c1.page(t), "Sorted by qty")
	assert.Contains(t, c2.page(t), "Unsorted")
	assert.Equal(t, 2, s.sessions.len())
}

func TestSessionsAreCapped(t *testing.T) {
	t.Parallel()
	_, s := newClient(t, testData(), map[string]string{"DATATABLE_MAX_SESSIONS": "2"})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.sessions.now = func() time.Time {
		now = now.Add(time.Second)
		return now
	}

	first := &client{h: s.Router()}
	first.page(t)
	id := first.cookies[0].Value
	for range 4 {
		(&client{h: s.Router()}).page(t)
	}
	assert.Equal(t, 2, s.sessions.len())

	first.page(t)
	assert.NotEqual(t, id, first.cookies[0].Value)
	assert.Equal(t, 2, s.sessions.len())
}

func TestIdleSessionsExpire(t *testing.T) {
	t.Parallel()
	c, s := newClient(t, testData(), map[string]string{"DATATABLE_SESSION_TTL": "10m"})
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	s.sessions.now = func() time.Time { return now }

	c.page(t)
	c.get("/header/name")
	id := c.cookies[0].Value

	now = now.Add(5 * time.Minute)
	assert.Contains(t, c.page(t), "Sorted by name")
	assert.Equal(t, id, c.cookies[0].Value)

	now = now.Add(11 * time.Minute)
	body := c.page(t)
	assert.Contains(t, body, "Unsorted")
	assert.NotEqual(t, id, c.cookies[0].Value)
	assert.Equal(t, 1, s.sessions.len())

	other := &client{h: s.Router()}
	other.page(t)
	now = now.Add(time.Hour)
	(&client{h: s.Router()}).page(t)
	assert.Equal(t, 1, s.sessions.len())
}

func TestSortQueryMakesSessionFixed(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), nil)

	rec := c.get("/?sort=-qty")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Sorted by qty ▼ (fixed)")
	rowOrder(t, body, "ann", "bob")

	c.get("/header/name")
	body = c.page(t)
	assert.Contains(t, body, "Sorted by qty ▼ (fixed)")
	rowOrder(t, body, "ann", "bob")

	body = c.get("/?sort=").Body.String()
	assert.Contains(t, body, "Unsorted (fixed)")
}

func TestConfiguredSort(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), map[string]string{"DATATABLE_SORT": "name"})
	body := c.page(t)
	assert.Contains(t, body, "Sorted by name ▲ (fixed)")
	rowOrder(t, body, "ann", "bob")
}

func TestDataClick(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), nil)

	rec := c.get("/cell/1/name")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, c.page(t), "Row 2, name: ann")

	c.get("/cell/0/qty")
	assert.Contains(t, c.page(t), "Row 1, qty: 3")
}

func TestIndexColumn(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), map[string]string{"DATATABLE_INDEXED": "true"})
	body := c.page(t)
	assert.Contains(t, body, `<a href="/header/$index">#</a>`)

	c.get("/cell/1/$index")
	assert.Contains(t, c.page(t), "Row 2, $index: 2")

	c.get("/header/$index")
	assert.Contains(t, c.page(t), "Unsorted")
}

func TestFooterClick(t *testing.T) {
	t.Parallel()
	data := testData()
	data.Schema = datatable.Schema{
		{Key: "name", Def: datatable.Column{Header: "Name", Footer: "Total", Sortable: true}},
		{Key: "qty", Def: datatable.Label("Qty")},
	}
	c, _ := newClient(t, data, nil)
	assert.Contains(t, c.page(t), `<a href="/footer/name">Total</a>`)

	rec := c.get("/footer/name")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, c.page(t), "Footer name")
}

func TestClickNotFound(t *testing.T) {
	t.Parallel()
	data := testData()
	data.Schema = datatable.Schema{
		{Key: "name", Def: datatable.Label("Name")},
		{Key: "qty", Def: datatable.Column{Header: "Qty", Hidden: true}},
	}
	tests := map[string]struct {
		path string
	}{
		"unknown header": {path: "/header/nope"},
		"hidden header":  {path: "/header/qty"},
		"hidden cell":    {path: "/cell/0/qty"},
		"unknown row":    {path: "/cell/9/name"},
		"no footer":      {path: "/footer/name"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c, _ := newClient(t, data, nil)
			assert.Equal(t, http.StatusNotFound, c.get(tt.path).Code)
		})
	}
}

func TestPlaceholder(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, Dataset{}, map[string]string{"DATATABLE_PLACEHOLDER": "Nothing here"})
	assert.Contains(t, c.page(t), "Nothing here")
}

func TestExport(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		path     string
		wantCode int
		wantType string
		want     string
	}{
		"csv": {
			path:     "/export/csv",
			wantCode: http.StatusOK,
			wantType: "text/csv; charset=utf-8",
			want:     "name,qty\nbob,3\nann,5\n",
		},
		"jsonl": {
			path:     "/export/jsonl",
			wantCode: http.StatusOK,
			wantType: "application/x-ndjson",
			want:     `{"name":"bob","qty":3}` + "\n" + `{"name":"ann","qty":5}` + "\n",
		},
		"unknown": {
			path:     "/export/xml",
			wantCode: http.StatusBadRequest,
			wantType: "text/plain; charset=utf-8",
			want:     "Bad Request\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			c, _ := newClient(t, testData(), nil)
			rec := c.get(tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestExportFollowsSessionSort(t *testing.T) {
	t.Parallel()
	c, _ := newClient(t, testData(), nil)
	c.page(t)
	c.get("/header/name")
	assert.Equal(t, "name,qty\nann,5\nbob,3\n", c.get("/export/csv").Body.String())
}

func TestSortStatus(t *testing.T) {
	t.Parallel()
	tests := map[string]struct {
		state datatable.SortState
		want  string
	}{
		"none":       {state: datatable.SortState{}, want: "Unsorted"},
		"ascending":  {state: datatable.SortState{Sorting: datatable.ParseSort("qty")}, want: "Sorted by qty ▲"},
		"descending": {state: datatable.SortState{Sorting: datatable.ParseSort("-qty"), Controlled: true}, want: "Sorted by qty ▼ (fixed)"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sortStatus(tt.state))
		})
	}
}

func TestCellHref(t *testing.T) {
	t.Parallel()
	cell := &datatable.Node{Kind: datatable.KindCell, Key: "unit price"}
	cell.SetAttr("data-row", "4")
	tests := map[string]struct {
		node *datatable.Node
		want string
	}{
		"header":       {node: &datatable.Node{Kind: datatable.KindHeaderCell, Key: "unit price"}, want: "/header/unit%20price"},
		"footer":       {node: &datatable.Node{Kind: datatable.KindFooterCell, Key: "qty"}, want: "/footer/qty"},
		"cell":         {node: cell, want: "/cell/4/unit%20price"},
		"untagged":     {node: &datatable.Node{Kind: datatable.KindCell, Key: "qty"}, want: ""},
		"non-cell row": {node: &datatable.Node{Kind: datatable.KindRow, Key: "0"}, want: ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cellHref(tt.node))
		})
	}
}

func TestEscapedKeyRoundTrip(t *testing.T) {
	t.Parallel()
	keys := []string{"unit price"}
	c, _ := newClient(t, Dataset{Rows: []source.Row{source.NewRow(keys, []any{int64(2)})}}, nil)
	assert.Contains(t, c.page(t), `href="/header/unit%20price"`)
	assert.Equal(t, http.StatusSeeOther, c.get("/header/unit%20price").Code)
	assert.Contains(t, c.page(t), "Sorted by unit price ▲")
}
