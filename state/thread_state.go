package state

import (
	"github.com/Ukraine-DAO/thread-graph/twitter"
)

type ThreadState struct {
	Tweets []twitter.Tweet
}

func (ts *ThreadState) Has(id string) bool {
	for _, t := range ts.Tweets {
		if t.ID == id {
			return true
		}
	}
	return false
}

// ConversationID is the conversation of the first tweet, empty for an empty thread.
func (ts *ThreadState) ConversationID() string {
	if len(ts.Tweets) == 0 {
		return ""
	}
	return ts.Tweets[0].ConversationID
}

// Head returns the tweet that started the conversation, if the state has it.
func (ts *ThreadState) Head() (twitter.Tweet, bool) {
	for _, t := range ts.Tweets {
		if t.ConversationID == t.ID {
			return t, true
		}
	}
	return twitter.Tweet{}, false
}

// Top returns the first tweet whose parent is not part of the thread.
func (ts *ThreadState) Top() (twitter.Tweet, bool) {
	for _, t := range ts.Tweets {
		if p := t.InReplyTo(); p == "" || !ts.Has(p) {
			return t, true
		}
	}
	return twitter.Tweet{}, false
}
