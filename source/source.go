// Package source turns recorded thread data into records for the builder.
package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Ukraine-DAO/thread-graph/state"
	"github.com/Ukraine-DAO/thread-graph/thread"
	"github.com/Ukraine-DAO/thread-graph/twitter"
)

type Format string

const (
	Auto  Format = "auto"
	Pages Format = "pages"
	State Format = "state"
	YAML  Format = "yaml"
)

var ErrUnknownFormat = errors.New("unknown input format")

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return Auto, nil
	case Auto, Pages, State, YAML:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Input is what one file contributed.
type Input struct {
	Name    string
	Format  Format
	Records []thread.Record
	// Root is the root id named by the input itself, if any. For state files
	// it is the top of the thread registered under the requested root id.
	Root string
	// Warnings are partial errors carried by the data, e.g. deleted tweets.
	Warnings []error
}

// Open reads the file at path.
func Open(path string, format Format, rootID string) (*Input, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()
	return Read(f, path, format, rootID)
}

// Read decodes r. rootID selects the thread when reading a state file.
func Read(r io.Reader, name string, format Format, rootID string) (*Input, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	if format == Auto || format == "" {
		format = detect(name, b)
	}

	in := &Input{Name: name, Format: format}
	switch format {
	case Pages:
		pages, err := twitter.ReadPages(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		tweets := []twitter.Tweet{}
		for _, p := range pages {
			tweets = append(tweets, p.Tweets()...)
			for _, e := range p.Errors {
				in.Warnings = append(in.Warnings, e)
			}
		}
		in.Records = TweetRecords(tweets)
	case State:
		s, err := state.Load(bytes.NewReader(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		in.Records = TweetRecords(s.Tweets(rootID))
		if root, ok := s.Root(rootID); ok {
			in.Root = root
		}
	case YAML:
		d, err := decodeDump(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		in.Records = d.records()
		in.Root = d.Root
	default:
		return nil, fmt.Errorf("%s: %w: %q", name, ErrUnknownFormat, format)
	}
	return in, nil
}

func detect(name string, b []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return YAML
	}
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return YAML
	}
	// Only the first value decides; pages may be concatenated.
	var top map[string]json.RawMessage
	if err := json.NewDecoder(bytes.NewReader(trimmed)).Decode(&top); err != nil {
		return Pages
	}
	if _, ok := top["Threads"]; ok {
		if _, ok := top["data"]; !ok {
			return State
		}
	}
	return Pages
}

// TweetRecords converts tweets to records. Parents carried only in the
// includes are appended after all the tweets themselves.
func TweetRecords(tweets []twitter.Tweet) []thread.Record {
	r := make([]thread.Record, 0, len(tweets))
	parents := []thread.Record{}
	for _, t := range tweets {
		r = append(r, tweetRecord(t))
		if p, ok := t.RepliedTo(); ok {
			parents = append(parents, tweetRecord(p))
		}
	}
	return append(r, parents...)
}

func tweetRecord(t twitter.Tweet) thread.Record {
	return thread.Record{
		PostID:    t.ID,
		ParentID:  t.InReplyTo(),
		Author:    t.Author(),
		Text:      t.Text,
		CreatedAt: t.CreatedAt,
	}
}
