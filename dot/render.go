// Package dot renders reply trees as Graphviz digraphs and text summaries.
package dot

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/unicode/norm"

	"github.com/Ukraine-DAO/thread-graph/identity"
	"github.com/Ukraine-DAO/thread-graph/thread"
)

type LabelMode string

const (
	LabelHandle LabelMode = "handle"
	LabelName   LabelMode = "name"
	LabelBoth   LabelMode = "both"
)

type Options struct {
	RankDir    string
	Label      LabelMode
	ShowText   bool
	TextWidth  int
	Saturation float64
	Value      float64
	FontName   string
	// MarkRoot draws the root node with a double border.
	MarkRoot bool
}

func DefaultOptions() Options {
	return Options{
		RankDir:    "LR",
		Label:      LabelHandle,
		TextWidth:  40,
		Saturation: 0.5,
		Value:      0.95,
		FontName:   "Helvetica",
		MarkRoot:   true,
	}
}

func (o Options) Validate() error {
	switch o.Label {
	case LabelHandle, LabelName, LabelBoth:
	default:
		return fmt.Errorf("unknown label mode %q", o.Label)
	}
	switch o.RankDir {
	case "TB", "LR", "BT", "RL":
	default:
		return fmt.Errorf("unknown rankdir %q", o.RankDir)
	}
	if o.Saturation < 0 || o.Saturation > 1 {
		return fmt.Errorf("saturation %v out of [0, 1]", o.Saturation)
	}
	if o.Value < 0 || o.Value > 1 {
		return fmt.Errorf("value %v out of [0, 1]", o.Value)
	}
	return nil
}

// Color returns the fill color for a color index out of n authors. Hues are
// spread evenly around the wheel. Negative indices get a grey.
func Color(index, n int, o Options) colorful.Color {
	if index < 0 {
		return colorful.Hsv(0, 0, o.Value)
	}
	if n <= 0 {
		n = 1
	}
	return colorful.Hsv(360*float64(index)/float64(n), o.Saturation, o.Value)
}

func fontColor(c colorful.Color) string {
	l, _, _ := c.Lab()
	if l < 0.5 {
		return "#ffffff"
	}
	return "#000000"
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\r", "", "\n", `\n`)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return strings.TrimSpace(string(runes[:width-1])) + "…"
}

func label(p thread.Post, a identity.Author, o Options) string {
	handle := "@" + a.Handle
	if a.Handle == "" {
		handle = a.DisplayName()
	}
	var l string
	switch o.Label {
	case LabelName:
		l = a.DisplayName()
	case LabelBoth:
		l = a.DisplayName()
		if a.Handle != "" {
			l += "\n" + handle
		}
	default:
		l = handle
	}
	if o.ShowText && p.Text != "" {
		l += "\n" + truncate(p.Text, o.TextWidth)
	}
	return norm.NFC.String(l)
}

// Render emits a digraph with one node per placed post and one edge per reply
// link, both in tree walk order.
func Render(tree *thread.Tree, reg *identity.Registry, o Options) string {
	var r strings.Builder
	r.WriteString("digraph thread {\n")
	if o.RankDir != "" {
		fmt.Fprintf(&r, "\trankdir=%s;\n", o.RankDir)
	}
	r.WriteString("\tnode [shape=box, style=\"rounded,filled\"")
	if o.FontName != "" {
		fmt.Fprintf(&r, ", fontname=%s", quote(o.FontName))
	}
	r.WriteString("];\n")

	root, _ := tree.Root()
	n := reg.UniqueCount()
	for p := range tree.Walk() {
		a, idx, ok := reg.Lookup(p.AuthorID)
		if !ok {
			a = identity.Author{ID: p.AuthorID}
		}
		c := Color(idx, n, o)
		fmt.Fprintf(&r, "\t%s [label=%s, fillcolor=%s, fontcolor=%s",
			quote(p.ID), quote(label(p, a, o)), quote(c.Hex()), quote(fontColor(c)))
		if o.MarkRoot && p.ID == root.ID {
			r.WriteString(", peripheries=2")
		}
		r.WriteString("];\n")
	}
	for _, e := range tree.Edges() {
		fmt.Fprintf(&r, "\t%s -> %s;\n", quote(e.From), quote(e.To))
	}
	r.WriteString("}\n")
	return r.String()
}
