// Package thread rebuilds reply trees from flat, unordered post records.
package thread

import (
	"fmt"
	"iter"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Ukraine-DAO/thread-graph/identity"
)

type Option func(*Builder)

func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// Builder collects posts and links them into a Tree on Finalize.
// Parents may arrive after their children; nothing is linked before Finalize.
type Builder struct {
	reg *identity.Registry
	log zerolog.Logger

	posts      []Post
	index      map[string]int
	anomalies  []Anomaly
	duplicates int
}

func NewBuilder(reg *identity.Registry, opts ...Option) *Builder {
	b := &Builder{
		reg:   reg,
		log:   zerolog.Nop(),
		index: map[string]int{},
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Ingest stores the record and registers its author. A malformed record is
// dropped and returned as an *Anomaly. Repeated post ids are ignored.
func (b *Builder) Ingest(r Record) error {
	id := strings.TrimSpace(r.PostID)
	authorID := strings.TrimSpace(r.Author.ID)
	switch {
	case id == "":
		return b.reject(r, "missing post id")
	case authorID == "":
		return b.reject(r, "missing author id")
	}

	if _, ok := b.index[id]; ok {
		b.duplicates++
		b.log.Debug().Str("post_id", id).Msg("Duplicate post ignored")
		return nil
	}

	author := r.Author
	author.ID = authorID
	color := b.reg.Register(author)

	b.index[id] = len(b.posts)
	b.posts = append(b.posts, Post{
		ID:        id,
		ParentID:  strings.TrimSpace(r.ParentID),
		AuthorID:  authorID,
		Text:      r.Text,
		CreatedAt: r.CreatedAt,
	})
	b.log.Debug().Str("post_id", id).Str("author_id", authorID).Int("color", color).Msg("Post ingested")
	return nil
}

// IngestAll ingests every record of the sequence and returns how many were accepted.
func (b *Builder) IngestAll(records iter.Seq[Record]) int {
	n := 0
	for r := range records {
		before := len(b.posts)
		if err := b.Ingest(r); err != nil {
			continue
		}
		if len(b.posts) > before {
			n++
		}
	}
	return n
}

func (b *Builder) reject(r Record, detail string) error {
	a := Anomaly{Kind: MalformedRecord, PostID: r.PostID, ParentID: r.ParentID, Detail: detail}
	b.anomalies = append(b.anomalies, a)
	b.log.Debug().Str("post_id", r.PostID).Str("reason", detail).Msg("Record rejected")
	return &a
}

func (b *Builder) Len() int { return len(b.posts) }

func (b *Builder) Duplicates() int { return b.duplicates }

const (
	unvisited = iota
	visiting
	placed
	excluded
)

const (
	noParent      = -1
	missingParent = -2
)

// Finalize links all ingested posts under rootID. Posts whose parent was never
// ingested become secondary roots. Posts on a parent cycle, or descending from
// one, are left out. Both cases are reported as anomalies, next to any records
// rejected by Ingest.
//
// ErrNoPosts and ErrRootNotFound come with an empty tree.
func (b *Builder) Finalize(rootID string) (*Tree, []Anomaly, error) {
	rootID = strings.TrimSpace(rootID)
	anomalies := append([]Anomaly(nil), b.anomalies...)
	if len(b.posts) == 0 {
		return emptyTree(), anomalies, ErrNoPosts
	}
	root, ok := b.index[rootID]
	if !ok {
		return emptyTree(), anomalies, fmt.Errorf("%w: %q", ErrRootNotFound, rootID)
	}

	n := len(b.posts)
	parent := make([]int, n)
	for i, p := range b.posts {
		switch {
		case i == root:
			parent[i] = noParent
		case p.ParentID == "":
			parent[i] = noParent
		default:
			j, ok := b.index[p.ParentID]
			if !ok {
				j = missingParent
			}
			parent[i] = j
		}
	}

	state := make([]int, n)
	onCycle := make([]bool, n)
	pathPos := make([]int, n)
	path := make([]int, 0, n)
	for i := range b.posts {
		if state[i] != unvisited {
			continue
		}
		path = path[:0]
		cur := i
		outcome := placed
		// Every step marks a new post as visiting, so this runs at most n times.
		for {
			if state[cur] == placed || state[cur] == excluded {
				outcome = state[cur]
				break
			}
			if state[cur] == visiting {
				for _, j := range path[pathPos[cur]:] {
					onCycle[j] = true
				}
				outcome = excluded
				break
			}
			state[cur] = visiting
			pathPos[cur] = len(path)
			path = append(path, cur)
			if parent[cur] < 0 {
				break
			}
			cur = parent[cur]
		}
		for _, j := range path {
			state[j] = outcome
		}
	}

	t := &Tree{index: map[string]int{}}
	remap := make([]int, n)
	for i, p := range b.posts {
		remap[i] = -1
		if state[i] != placed {
			detail := "descends from a parent cycle"
			if onCycle[i] {
				detail = "part of a parent cycle"
			}
			anomalies = append(anomalies, Anomaly{Kind: CyclicLink, PostID: p.ID, ParentID: p.ParentID, Detail: detail})
			continue
		}
		remap[i] = len(t.posts)
		t.index[p.ID] = len(t.posts)
		t.posts = append(t.posts, p)
	}

	t.parent = make([]int, len(t.posts))
	t.children = make([][]int, len(t.posts))
	t.root = remap[root]
	for i, p := range b.posts {
		k := remap[i]
		if k < 0 {
			continue
		}
		t.parent[k] = -1
		switch {
		case i == root:
		case parent[i] >= 0:
			pk := remap[parent[i]]
			t.parent[k] = pk
			t.children[pk] = append(t.children[pk], k)
		default:
			t.secondary = append(t.secondary, k)
			detail := "parent never observed"
			if parent[i] == noParent {
				detail = "no parent and not the root"
			}
			anomalies = append(anomalies, Anomaly{Kind: OrphanLink, PostID: p.ID, ParentID: p.ParentID, Detail: detail})
		}
	}

	b.log.Debug().
		Str("root", rootID).
		Int("placed", t.Len()).
		Int("secondary_roots", len(t.secondary)).
		Int("anomalies", len(anomalies)).
		Msg("Thread linked")
	return t, anomalies, nil
}
