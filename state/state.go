package state

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/Ukraine-DAO/thread-graph/twitter"
)

// State is the collector's state file: every tracked thread keyed by the id
// it was registered with. Other top level keys are ignored.
type State struct {
	Threads map[string]ThreadState
}

func New() *State {
	return &State{
		Threads: map[string]ThreadState{},
	}
}

func Load(r io.Reader) (*State, error) {
	state := New()
	if err := json.NewDecoder(r).Decode(state); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return state, nil
}

func (state *State) threadIDs() []string {
	ids := make([]string, 0, len(state.Threads))
	for id := range state.Threads {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// key maps an empty root id to the first thread.
func (state *State) key(rootID string) string {
	if rootID != "" {
		return rootID
	}
	if ids := state.threadIDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// Tweets returns the tweets relevant to a thread rooted at rootID: the thread
// registered under that id, else the first thread (by id) containing it or
// headed by it, else every tweet in the state. An empty rootID selects the
// first thread.
func (state *State) Tweets(rootID string) []twitter.Tweet {
	rootID = state.key(rootID)
	if ts, ok := state.Threads[rootID]; ok {
		return ts.Tweets
	}
	for _, id := range state.threadIDs() {
		ts := state.Threads[id]
		if ts.Has(rootID) || ts.ConversationID() == rootID {
			return ts.Tweets
		}
	}
	r := []twitter.Tweet{}
	for _, id := range state.threadIDs() {
		r = append(r, state.Threads[id].Tweets...)
	}
	return r
}

// Root returns the top tweet of the thread registered under rootID, or of the
// first thread when rootID is empty. Threads are registered under their last
// tweet, so this is usually not rootID itself.
func (state *State) Root(rootID string) (string, bool) {
	ts, ok := state.Threads[state.key(rootID)]
	if !ok {
		return "", false
	}
	if head, ok := ts.Head(); ok {
		return head.ID, true
	}
	if top, ok := ts.Top(); ok {
		return top.ID, true
	}
	return "", false
}
