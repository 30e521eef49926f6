package twitter

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ukraine-DAO/thread-graph/identity"
)

const lookupPage = `{
  "data": {"id": "1", "text": "root", "author_id": "10", "conversation_id": "1",
           "created_at": "2022-03-01T10:00:00.000Z"},
  "includes": {"users": [{"id": "10", "name": "Root Author", "username": "root"}]}
}`

const searchPage = `{
  "data": [
    {"id": "2", "text": "reply", "author_id": "20", "conversation_id": "1",
     "referenced_tweets": [{"type": "replied_to", "id": "1"}]},
    {"id": "3", "text": "quote", "author_id": "10", "conversation_id": "1",
     "referenced_tweets": [{"type": "quoted", "id": "7"}, {"type": "replied_to", "id": "2"}]}
  ],
  "includes": {
    "users": [{"id": "20", "name": "Second", "username": "second"},
              {"id": "10", "name": "Root Author", "username": "root"}],
    "tweets": [{"id": "1", "text": "root", "author_id": "10"}]
  },
  "meta": {"newest_id": "3", "oldest_id": "2", "result_count": 2, "next_token": "abc"},
  "errors": [{"title": "Not Found Error", "detail": "Could not find tweet with ids: [9].",
              "type": "https://api.twitter.com/2/problems/resource-not-found",
              "resource_type": "tweet", "resource_id": "9"}]
}`

func TestReadPagesConcatenated(t *testing.T) {
	pages, err := ReadPages(strings.NewReader(lookupPage + "\n" + searchPage + "\n"))
	require.NoError(t, err)
	require.Len(t, pages, 2)

	require.Len(t, pages[0].Data, 1)
	assert.Equal(t, "1", pages[0].Data[0].ID)
	assert.True(t, time.Date(2022, 3, 1, 10, 0, 0, 0, time.UTC).Equal(pages[0].Data[0].CreatedAt))

	assert.Len(t, pages[1].Data, 2)
	assert.Equal(t, Meta{NewestID: "3", OldestID: "2", ResultCount: 2, NextToken: "abc"}, pages[1].Meta)
	require.Len(t, pages[1].Errors, 1)
	assert.Equal(t, "Not Found Error (tweet 9): Could not find tweet with ids: [9].", pages[1].Errors[0].Error())
}

func TestReadPagesArray(t *testing.T) {
	pages, err := ReadPages(strings.NewReader("  [" + lookupPage + "," + searchPage + "]"))
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestReadPagesEmptyAndBroken(t *testing.T) {
	pages, err := ReadPages(strings.NewReader(" \n"))
	require.NoError(t, err)
	assert.Empty(t, pages)

	pages, err = ReadPages(strings.NewReader(lookupPage + `{"data": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding page 2")
	assert.Len(t, pages, 1)
}

func TestPageTweetsCopyIncludes(t *testing.T) {
	pages, err := ReadPages(strings.NewReader(searchPage))
	require.NoError(t, err)
	tweets := pages[0].Tweets()
	require.Len(t, tweets, 2)

	reply := tweets[0]
	assert.Equal(t, "1", reply.InReplyTo())
	assert.Equal(t, identity.Author{ID: "20", Name: "Second", Handle: "second"}, reply.Author())

	parent, ok := reply.RepliedTo()
	require.True(t, ok)
	assert.Equal(t, "1", parent.ID)
	assert.Equal(t, "root", parent.Author().Handle)

	// 3 replies to 2, which is not in includes.tweets.
	_, ok = tweets[1].RepliedTo()
	assert.False(t, ok)
	assert.Equal(t, "2", tweets[1].InReplyTo())
	assert.Equal(t, []TwitterUser{{ID: "10", Name: "Root Author", Username: "root"}}, tweets[1].Includes.Users)
}

func TestAuthorWithoutExpansion(t *testing.T) {
	tw := Tweet{ID: "1", AuthorID: "10"}
	assert.Equal(t, identity.Author{ID: "10"}, tw.Author())
}
