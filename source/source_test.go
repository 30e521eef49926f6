package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Ukraine-DAO/thread-graph/identity"
	"github.com/Ukraine-DAO/thread-graph/thread"
)

const yamlDump = `
root: "1"
users:
  x: {name: Xena, username: xena}
posts:
  - id: "1"
    author: x
    text: hello
    created_at: 2022-03-01T10:00:00Z
  - id: "2"
    parent: "1"
    author: {id: y, name: Yuri, username: yuri}
  - id: "3"
    parent: "1"
    author: x
  - id: "4"
    parent: "3"
    author: ghost
`

const pagesDump = `{"data": {"id": "1", "author_id": "x", "text": "root"},
 "includes": {"users": [{"id": "x", "name": "Xena", "username": "xena"}]}}
{"data": [{"id": "3", "author_id": "y", "referenced_tweets": [{"type": "replied_to", "id": "2"}]}],
 "includes": {"users": [{"id": "y", "name": "Yuri", "username": "yuri"}, {"id": "x", "name": "Xena", "username": "xena"}],
              "tweets": [{"id": "2", "author_id": "x", "referenced_tweets": [{"type": "replied_to", "id": "1"}]}]},
 "errors": [{"title": "Not Found Error", "detail": "gone", "resource_type": "tweet", "resource_id": "9"}]}
`

const stateDump = `{"Threads": {"1": {"Tweets": [
  {"id": "1", "conversation_id": "1", "author_id": "x"},
  {"id": "2", "conversation_id": "1", "author_id": "x", "referenced_tweets": [{"type": "replied_to", "id": "1"}]}
]}}}`

var ignoreTextAndTime = cmpopts.IgnoreFields(thread.Record{}, "CreatedAt", "Text")

func TestReadYAML(t *testing.T) {
	in, err := Read(strings.NewReader(yamlDump), "thread.yaml", Auto, "")
	require.NoError(t, err)
	assert.Equal(t, YAML, in.Format)
	assert.Equal(t, "1", in.Root)

	xena := identity.Author{ID: "x", Name: "Xena", Handle: "xena"}
	want := []thread.Record{
		{PostID: "1", Author: xena},
		{PostID: "2", ParentID: "1", Author: identity.Author{ID: "y", Name: "Yuri", Handle: "yuri"}},
		{PostID: "3", ParentID: "1", Author: xena},
		{PostID: "4", ParentID: "3", Author: identity.Author{ID: "ghost"}},
	}
	if diff := cmp.Diff(want, in.Records, ignoreTextAndTime); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "hello", in.Records[0].Text)
	assert.Equal(t, 2022, in.Records[0].CreatedAt.Year())
	assert.True(t, in.Records[1].CreatedAt.IsZero())
}

func TestAuthorRefRoundTrip(t *testing.T) {
	refs := []authorRef{
		{Author: identity.Author{ID: "x"}, ref: true},
		{Author: identity.Author{ID: "y", Name: "Yuri", Handle: "yuri"}},
	}
	out, err := yaml.Marshal(refs)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "- x\n"))

	got := []authorRef{}
	require.NoError(t, yaml.Unmarshal(out, &got))
	assert.Equal(t, refs, got)
}

func TestReadPages(t *testing.T) {
	in, err := Read(strings.NewReader(pagesDump), "stdin", Auto, "1")
	require.NoError(t, err)
	assert.Equal(t, Pages, in.Format)
	require.Len(t, in.Warnings, 1)
	assert.Contains(t, in.Warnings[0].Error(), "gone")

	got := []string{}
	for _, r := range in.Records {
		got = append(got, r.PostID+"<"+r.ParentID+"@"+r.Author.Handle)
	}
	// 2 only arrives through the includes and is appended last.
	assert.Equal(t, []string{"1<@xena", "3<2@yuri", "2<1@xena"}, got)
}

func TestReadState(t *testing.T) {
	in, err := Read(strings.NewReader(stateDump), "state.json", Auto, "1")
	require.NoError(t, err)
	assert.Equal(t, State, in.Format)
	assert.Equal(t, "1", in.Root)
	require.Len(t, in.Records, 2)
	assert.Equal(t, "1", in.Records[1].ParentID)
	// No user expansions in the state: authors are bare ids.
	assert.Equal(t, identity.Author{ID: "x"}, in.Records[0].Author)
}

func TestReadStateWithoutRoot(t *testing.T) {
	tail := `{"Threads": {"3": {"Tweets": [
  {"id": "1", "author_id": "x"},
  {"id": "2", "author_id": "x", "referenced_tweets": [{"type": "replied_to", "id": "1"}]},
  {"id": "3", "author_id": "x", "referenced_tweets": [{"type": "replied_to", "id": "2"}]}
]}}}`
	for _, rootID := range []string{"", "3"} {
		in, err := Read(strings.NewReader(tail), "state.json", Auto, rootID)
		require.NoError(t, err)
		assert.Equal(t, "1", in.Root, rootID)
		assert.Len(t, in.Records, 3, rootID)
	}
}

func TestDetect(t *testing.T) {
	for _, tc := range []struct {
		name, in string
		want     Format
	}{
		{"thread.yaml", `{"Threads": {}}`, YAML},
		{"stdin", "posts: []", YAML},
		{"stdin", "", YAML},
		{"stdin", stateDump, State},
		{"stdin", pagesDump, Pages},
		{"stdin", `[{"data": []}]`, Pages},
		{"stdin", `{"data": {"id": "1", "author_id": "x", "text": "Threads"}}`, Pages},
		{"stdin", `{"data": {"id": "1", "author_id": "x", "text": "\"Threads\""}}`, Pages},
		{"stdin", `{"broken`, Pages},
	} {
		assert.Equal(t, tc.want, detect(tc.name, []byte(tc.in)), tc.in)
	}
}

func TestReadPageMentioningThreads(t *testing.T) {
	in, err := Read(strings.NewReader(`{"data": {"id": "1", "author_id": "x", "text": "Threads"}}`), "stdin", Auto, "1")
	require.NoError(t, err)
	assert.Equal(t, Pages, in.Format)
	require.Len(t, in.Records, 1)
	assert.Equal(t, "Threads", in.Records[0].Text)
}

func TestReadForcedFormatErrors(t *testing.T) {
	_, err := Read(strings.NewReader("posts: [}"), "x", YAML, "")
	assert.Error(t, err)

	_, err = Read(strings.NewReader(yamlDump), "x", Pages, "")
	assert.Error(t, err)

	_, err = Read(strings.NewReader(""), "x", Format("xml"), "")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Auto, "AUTO": Auto, " pages ": Pages, "state": State, "yaml": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("csv")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thread.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDump), 0644))

	in, err := Open(path, Auto, "")
	require.NoError(t, err)
	assert.Len(t, in.Records, 4)
	assert.Equal(t, path, in.Name)

	_, err = Open(filepath.Join(t.TempDir(), "missing.json"), Auto, "")
	assert.Error(t, err)
}
