package source

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Ukraine-DAO/thread-graph/identity"
	"github.com/Ukraine-DAO/thread-graph/thread"
)

// dump is a hand-written thread:
//
//	root: "1"
//	users:
//	  x: {name: Xena, username: xena}
//	posts:
//	  - {id: "1", author: x}
//	  - {id: "2", parent: "1", author: {id: y, name: Yuri, username: yuri}}
type dump struct {
	Root  string                     `yaml:"root,omitempty"`
	Users map[string]identity.Author `yaml:"users,omitempty"`
	Posts []yamlPost                 `yaml:"posts"`
}

type yamlPost struct {
	ID        string     `yaml:"id"`
	Parent    string     `yaml:"parent,omitempty"`
	Author    authorRef  `yaml:"author"`
	Text      string     `yaml:"text,omitempty"`
	CreatedAt *time.Time `yaml:"created_at,omitempty"`
}

// authorRef is either a user id referring to the users section, or an inline author.
type authorRef struct {
	identity.Author
	ref bool
}

func (a *authorRef) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		a.ref = true
		return value.Decode(&a.ID)
	}
	return value.Decode(&a.Author)
}

func (a authorRef) MarshalYAML() (interface{}, error) {
	if a.ref {
		return a.ID, nil
	}
	return a.Author, nil
}

func decodeDump(b []byte) (*dump, error) {
	d := &dump{}
	if err := yaml.Unmarshal(b, d); err != nil {
		return nil, fmt.Errorf("decoding yaml: %w", err)
	}
	return d, nil
}

func (d *dump) records() []thread.Record {
	r := make([]thread.Record, 0, len(d.Posts))
	for _, p := range d.Posts {
		author := p.Author.Author
		if u, ok := d.Users[author.ID]; ok && p.Author.ref {
			u.ID = author.ID
			author = u
		}
		rec := thread.Record{
			PostID:   p.ID,
			ParentID: p.Parent,
			Author:   author,
			Text:     p.Text,
		}
		if p.CreatedAt != nil {
			rec.CreatedAt = *p.CreatedAt
		}
		r = append(r, rec)
	}
	return r
}
