package twitter

import (
	"time"

	"github.com/Ukraine-DAO/thread-graph/identity"
)

type ReferencedTweet struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type TwitterUser struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (u TwitterUser) Author() identity.Author {
	return identity.Author{ID: u.ID, Name: u.Name, Handle: u.Username}
}

type TweetIncludes struct {
	Users  []TwitterUser `json:"users,omitempty"`
	Tweets []Tweet       `json:"tweets,omitempty"`
}

type Tweet struct {
	ID               string            `json:"id"`
	Text             string            `json:"text"`
	ConversationID   string            `json:"conversation_id"`
	AuthorID         string            `json:"author_id"`
	CreatedAt        time.Time         `json:"created_at"`
	ReferencedTweets []ReferencedTweet `json:"referenced_tweets,omitempty"`
	Includes         TweetIncludes     `json:"includes,omitempty"`
}

func (t *Tweet) InReplyTo() string {
	for _, ref := range t.ReferencedTweets {
		if ref.Type == "replied_to" {
			return ref.ID
		}
	}
	return ""
}

// Author returns the tweet's author from its includes, or a bare record with
// only the id when the expansion is missing.
func (t *Tweet) Author() identity.Author {
	for _, u := range t.Includes.Users {
		if u.ID == t.AuthorID {
			return u.Author()
		}
	}
	return identity.Author{ID: t.AuthorID}
}

// RepliedTo returns the included tweet this one replies to, if the page carried it.
func (t *Tweet) RepliedTo() (Tweet, bool) {
	parent := t.InReplyTo()
	if parent == "" {
		return Tweet{}, false
	}
	for _, tt := range t.Includes.Tweets {
		if tt.ID == parent {
			tt.Includes.Users = t.Includes.Users
			return tt, true
		}
	}
	return Tweet{}, false
}

// CopyIncludes keeps the referenced tweets and the users that authored this
// tweet or any of them.
func (t *Tweet) CopyIncludes(incl TweetIncludes) {
	wantTweets := map[string]bool{}
	for _, rt := range t.ReferencedTweets {
		wantTweets[rt.ID] = true
	}
	for _, tt := range incl.Tweets {
		if wantTweets[tt.ID] {
			t.Includes.Tweets = append(t.Includes.Tweets, tt)
		}
	}

	wantUser := map[string]bool{
		t.AuthorID: true,
	}
	for _, tt := range t.Includes.Tweets {
		wantUser[tt.AuthorID] = true
	}
	for _, u := range incl.Users {
		if wantUser[u.ID] {
			t.Includes.Users = append(t.Includes.Users, u)
		}
	}
}
