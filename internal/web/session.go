package web

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bjaus/datatable"
	"github.com/bjaus/datatable/internal/source"
)

const sessionCookie = "datatable_session"

// session is one browser's table. The table is not safe for concurrent use,
// so every render and click happens under mu.
type session struct {
	mu     sync.Mutex
	table  *datatable.Table[source.Row]
	sortBy datatable.SortDirective
	notice string
}

// sessionStore keeps sessions until they sit idle for ttl. When max
// sessions are live, starting another evicts the least recently seen.
type sessionStore struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*storedSession
	ttl  time.Duration
	max  int
	now  func() time.Time
}

type storedSession struct {
	sess     *session
	lastSeen time.Time
}

func newSessionStore(ttl time.Duration, maxSessions int) *sessionStore {
	return &sessionStore{
		byID: make(map[uuid.UUID]*storedSession),
		ttl:  ttl,
		max:  maxSessions,
		now:  time.Now,
	}
}

func (st *sessionStore) get(id uuid.UUID) *session {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.byID[id]
	if !ok {
		return nil
	}
	now := st.now()
	if st.expired(e, now) {
		delete(st.byID, id)
		return nil
	}
	e.lastSeen = now
	return e.sess
}

func (st *sessionStore) put(id uuid.UUID, sess *session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	st.sweep(now)
	if st.max > 0 && len(st.byID) >= st.max {
		st.evictOldest()
	}
	st.byID[id] = &storedSession{sess: sess, lastSeen: now}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}

func (st *sessionStore) expired(e *storedSession, now time.Time) bool {
	return st.ttl > 0 && now.Sub(e.lastSeen) > st.ttl
}

// sweep drops idle sessions. The caller holds st.mu.
func (st *sessionStore) sweep(now time.Time) {
	for id, e := range st.byID {
		if st.expired(e, now) {
			delete(st.byID, id)
		}
	}
}

// evictOldest drops the least recently seen session. The caller holds st.mu.
func (st *sessionStore) evictOldest() {
	var oldest uuid.UUID
	var seen time.Time
	found := false
	for id, e := range st.byID {
		if !found || e.lastSeen.Before(seen) {
			oldest, seen, found = id, e.lastSeen, true
		}
	}
	if found {
		delete(st.byID, oldest)
	}
}

// session returns the caller's session, starting one and setting the
// cookie when the request carries no known session id.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			if sess := s.sessions.get(id); sess != nil {
				return sess
			}
		}
	}

	id := uuid.New()
	logger := slog.Default().With("session", id.String())
	sess := &session{
		table: datatable.New(datatable.WithLogger[source.Row](logger)),
	}
	if s.cfg.Table.Sort != "" {
		sess.sortBy = datatable.SortKey(s.cfg.Table.Sort)
	}
	s.sessions.put(id, sess)

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	logger.Debug("session started")
	return sess
}

// render runs a render pass for the session. The caller holds sess.mu.
func (s *Server) render(sess *session) *datatable.Node {
	t := s.cfg.Table
	p := datatable.Props[source.Row]{
		Data:         s.data.Rows,
		Columns:      s.data.Schema,
		GroupBy:      t.GroupBy,
		Indexed:      t.Indexed,
		NoHeader:     t.NoHeader,
		SortBy:       sess.sortBy,
		CellRenderer: rowCellRenderer,
		OnDataClick: func(ev datatable.Event[source.Row]) {
			sess.notice = fmt.Sprintf("Row %d, %s: %s", ev.Row+1, ev.Key, datatable.FormatValue(ev.Value))
		},
		OnFooterClick: func(ev datatable.Event[source.Row]) {
			sess.notice = fmt.Sprintf("Footer %s", ev.Key)
		},
	}
	if t.Placeholder != "" {
		p.Placeholder = datatable.Text(t.Placeholder)
	}
	return sess.table.Render(p)
}

// rowCellRenderer tags each body cell with its record index so the cell link
// can name the row.
var rowCellRenderer = datatable.RenderFunc[datatable.CellContext[source.Row], *datatable.Node](
	func(ctx datatable.CellContext[source.Row]) *datatable.Node {
		n := datatable.DefaultCellRenderer[source.Row]().Render(ctx)
		n.SetAttr("data-row", strconv.Itoa(ctx.Row))
		return n
	},
)
