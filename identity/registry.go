// Package identity keeps track of the users taking part in a thread.
package identity

import (
	"iter"

	"golang.org/x/text/cases"
)

type Author struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Handle string `json:"username" yaml:"username"`
}

// DisplayName returns the author's name, falling back to the handle and then the id.
func (a Author) DisplayName() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Handle != "":
		return a.Handle
	}
	return a.ID
}

type entry struct {
	author Author
	color  int
}

// Registry maps author ids to the first Author record seen for them and to a
// color index. Indices are dense, start at 0 and follow first-seen order.
type Registry struct {
	byID  map[string]int
	order []entry
}

func NewRegistry() *Registry {
	return &Registry{byID: map[string]int{}}
}

// Register returns the color index of the author, assigning the next free one
// if the id has not been seen yet. Known authors are never overwritten.
func (r *Registry) Register(a Author) int {
	if i, ok := r.byID[a.ID]; ok {
		return r.order[i].color
	}
	i := len(r.order)
	r.order = append(r.order, entry{author: a, color: i})
	r.byID[a.ID] = i
	return i
}

func (r *Registry) UniqueCount() int {
	return len(r.order)
}

func (r *Registry) Lookup(id string) (Author, int, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Author{}, -1, false
	}
	e := r.order[i]
	return e.author, e.color, true
}

// All yields every registered author with its color index in first-seen order.
func (r *Registry) All() iter.Seq2[Author, int] {
	return func(yield func(Author, int) bool) {
		for _, e := range r.order {
			if !yield(e.author, e.color) {
				return
			}
		}
	}
}

// HandleCollisions groups distinct authors whose handles only differ by case.
// Groups and their members are in first-seen order.
func (r *Registry) HandleCollisions() [][]Author {
	fold := cases.Fold()
	groups := map[string][]Author{}
	keys := []string{}
	for _, e := range r.order {
		if e.author.Handle == "" {
			continue
		}
		k := fold.String(e.author.Handle)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], e.author)
	}

	collisions := [][]Author{}
	for _, k := range keys {
		if len(groups[k]) > 1 {
			collisions = append(collisions, groups[k])
		}
	}
	return collisions
}
