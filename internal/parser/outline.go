package parser

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"
)

const outlineTextWidth = 40

// Outline renders doc as an indented tree, one line per node. Text is
// whitespace-collapsed and shortened; whitespace-only text is left out.
func Outline(doc *Document) string {
	tree := treeprint.NewWithRoot("#document")
	outline(tree, doc.RootNodes)
	return tree.String()
}

func outline(branch treeprint.Tree, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			if len(n.Children) == 0 {
				branch.AddNode(startTag(n))
				continue
			}
			outline(branch.AddBranch(startTag(n)), n.Children)
		case *Text:
			if s := shorten(n.Data); s != "" {
				branch.AddNode(fmt.Sprintf("%q", s))
			}
		case *Comment:
			branch.AddNode("<!--" + shorten(n.Data) + "-->")
		}
	}
}

func startTag(el *Element) string {
	var b strings.Builder
	b.WriteString("<" + el.TagName)
	for _, a := range el.Attributes {
		if a.Value == "" {
			b.WriteString(" " + a.Name)
			continue
		}
		fmt.Fprintf(&b, " %s=%q", a.Name, shorten(a.Value))
	}
	b.WriteString(">")
	return b.String()
}

func shorten(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > outlineTextWidth {
		return string(r[:outlineTextWidth-1]) + "…"
	}
	return s
}
