package thread

import "iter"

// Tree is an immutable snapshot produced by Builder.Finalize. Posts live in a
// single slice and refer to each other by index.
type Tree struct {
	posts     []Post
	index     map[string]int
	parent    []int
	children  [][]int
	root      int
	secondary []int
}

func emptyTree() *Tree {
	return &Tree{index: map[string]int{}, root: -1}
}

// Len is the number of posts placed in the tree, secondary roots included.
func (t *Tree) Len() int { return len(t.posts) }

func (t *Tree) Root() (Post, bool) {
	if t.root < 0 {
		return Post{}, false
	}
	return t.posts[t.root], true
}

func (t *Tree) Post(id string) (Post, bool) {
	i, ok := t.index[id]
	if !ok {
		return Post{}, false
	}
	return t.posts[i], true
}

// Parent returns the post the given one is linked under. Roots have none.
func (t *Tree) Parent(id string) (Post, bool) {
	i, ok := t.index[id]
	if !ok || t.parent[i] < 0 {
		return Post{}, false
	}
	return t.posts[t.parent[i]], true
}

// Children returns direct replies in ingestion order.
func (t *Tree) Children(id string) []Post {
	i, ok := t.index[id]
	if !ok {
		return nil
	}
	r := make([]Post, 0, len(t.children[i]))
	for _, c := range t.children[i] {
		r = append(r, t.posts[c])
	}
	return r
}

func (t *Tree) SecondaryRoots() []Post {
	r := make([]Post, 0, len(t.secondary))
	for _, i := range t.secondary {
		r = append(r, t.posts[i])
	}
	return r
}

func (t *Tree) tops() []int {
	if t.root < 0 {
		return nil
	}
	return append([]int{t.root}, t.secondary...)
}

// Walk visits posts depth first: the root's subtree, then each secondary
// root's subtree. Siblings come in ingestion order. The second value is the
// depth below the subtree's top post.
func (t *Tree) Walk() iter.Seq2[Post, int] {
	return func(yield func(Post, int) bool) {
		type frame struct{ idx, depth int }
		tops := t.tops()
		stack := make([]frame, 0, len(t.posts))
		for i := len(tops) - 1; i >= 0; i-- {
			stack = append(stack, frame{tops[i], 0})
		}
		for len(stack) > 0 {
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(t.posts[f.idx], f.depth) {
				return
			}
			kids := t.children[f.idx]
			for i := len(kids) - 1; i >= 0; i-- {
				stack = append(stack, frame{kids[i], f.depth + 1})
			}
		}
	}
}

// Edges lists parent to child links in Walk order.
func (t *Tree) Edges() []Edge {
	r := []Edge{}
	for p := range t.Walk() {
		if i := t.index[p.ID]; t.parent[i] >= 0 {
			r = append(r, Edge{From: t.posts[t.parent[i]].ID, To: p.ID})
		}
	}
	return r
}

// Depth is the length of the longest reply chain, zero for a lone post.
func (t *Tree) Depth() int {
	deepest := 0
	for _, d := range t.Walk() {
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}
