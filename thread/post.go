package thread

import (
	"iter"
	"time"

	"github.com/Ukraine-DAO/thread-graph/identity"
)

// Record is a raw post as delivered by a source, with its author inlined.
type Record struct {
	PostID    string
	ParentID  string
	Author    identity.Author
	Text      string
	CreatedAt time.Time
}

// Post is an ingested record. Authors are referenced by id only.
type Post struct {
	ID        string
	ParentID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

type Edge struct {
	From string
	To   string
}

// Records adapts a slice to the sequence accepted by Builder.IngestAll.
func Records(rs []Record) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range rs {
			if !yield(r) {
				return
			}
		}
	}
}
