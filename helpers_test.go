package datatable_test

import (
	"errors"
	"time"
)

// --- Test types ---

type item struct {
	Name string `table:"name"`
	Qty  int    `table:"qty"`
}

type member struct {
	Name   string `table:"name"`
	Team   string `table:"team"`
	Score  float64
	Joined time.Time `table:"-"`
	secret string
}

// record lists and looks up its own fields.
type record map[string]any

func (r record) Fields() []string { return []string{"z", "a"} }
func (r record) Value(key string) any {
	if key == "a" {
		return "from-valuer"
	}
	return r[key]
}

// recorder counts PreventDefault calls.
type recorder struct {
	prevented int
}

func (r *recorder) PreventDefault() { r.prevented++ }

// --- Helpers ---

type errWriter struct{}

func (e *errWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

var errWriteFailed = errors.New("write failed")

func items() []item {
	return []item{{Name: "b", Qty: 3}, {Name: "a", Qty: 5}}
}
