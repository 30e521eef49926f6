package twitter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Meta is the pagination block of a v2 search response.
type Meta struct {
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	ResultCount int    `json:"result_count"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a partial error reported next to data, e.g. for a deleted tweet.
type APIError struct {
	Title        string `json:"title"`
	Detail       string `json:"detail"`
	Type         string `json:"type"`
	ResourceType string `json:"resource_type,omitempty"`
	ResourceID   string `json:"resource_id,omitempty"`
}

func (e APIError) Error() string {
	if e.ResourceID != "" {
		return fmt.Sprintf("%s (%s %s): %s", e.Title, e.ResourceType, e.ResourceID, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Detail)
}

// TweetList decodes both the single tweet lookup ("data": {...}) and the
// search/timeline shape ("data": [...]).
type TweetList []Tweet

func (l *TweetList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case b[0] == '{':
		var t Tweet
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		*l = TweetList{t}
		return nil
	}
	var ts []Tweet
	if err := json.Unmarshal(b, &ts); err != nil {
		return err
	}
	*l = ts
	return nil
}

// Page is one recorded API response.
type Page struct {
	Data     TweetList     `json:"data"`
	Includes TweetIncludes `json:"includes,omitempty"`
	Meta     Meta          `json:"meta,omitempty"`
	Errors   []APIError    `json:"errors,omitempty"`
}

// Tweets returns the page's tweets with the relevant includes copied into each.
func (p Page) Tweets() []Tweet {
	r := make([]Tweet, 0, len(p.Data))
	for _, t := range p.Data {
		t.CopyIncludes(p.Includes)
		r = append(r, t)
	}
	return r
}

// ReadPages decodes every response in r. Responses may be concatenated
// (one per line, as a crawler appends them) or wrapped in a JSON array.
func ReadPages(r io.Reader) ([]Page, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading pages: %w", err)
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		pages := []Page{}
		if err := dec.Decode(&pages); err != nil {
			return nil, fmt.Errorf("decoding pages: %w", err)
		}
		return pages, nil
	}

	pages := []Page{}
	for {
		var p Page
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return pages, fmt.Errorf("decoding page %d: %w", len(pages)+1, err)
		}
		pages = append(pages, p)
	}
	return pages, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
