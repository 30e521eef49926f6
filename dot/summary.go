package dot

import (
	"fmt"
	"strings"

	"github.com/Ukraine-DAO/thread-graph/identity"
	"github.com/Ukraine-DAO/thread-graph/thread"
)

// Summarize lists every author in first-seen order followed by a count line.
func Summarize(tree *thread.Tree, reg *identity.Registry) string {
	var r strings.Builder
	for a := range reg.All() {
		handle := a.Handle
		if handle == "" {
			handle = a.ID
		}
		fmt.Fprintf(&r, "New User: %s (@%s)\n", a.DisplayName(), handle)
	}
	fmt.Fprintf(&r, "%d tweets found! (%d unique users)\n", tree.Len(), reg.UniqueCount())
	return r.String()
}
