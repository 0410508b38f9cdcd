package view

import "github.com/glabrego/charbrowser/internal/api"

// Row is the pooled renderable for one list line. A Row is bound to a
// character while in use and reset when its parent page is released.
type Row struct {
	character api.Character
	bound     bool
}

func NewRow() *Row {
	return &Row{}
}

func (r *Row) Bind(c api.Character) {
	r.character = c
	r.bound = true
}

func (r *Row) Reset() {
	r.character = api.Character{}
	r.bound = false
}

func (r *Row) Character() api.Character {
	return r.character
}

func (r *Row) Bound() bool {
	return r.bound
}
