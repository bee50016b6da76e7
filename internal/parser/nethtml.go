package parser

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ToNetHTML converts doc into a golang.org/x/net/html tree rooted at a
// DocumentNode, so that selector libraries can query it. Tag and attribute
// names are lower-cased; a !doctype element becomes a DoctypeNode.
func ToNetHTML(doc *Document) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	appendNetHTML(root, doc.RootNodes)
	return root
}

func appendNetHTML(parent *html.Node, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			if n.Is("!doctype") {
				parent.AppendChild(doctypeNode(n))
				continue
			}
			name := strings.ToLower(n.TagName)
			el := &html.Node{
				Type:     html.ElementNode,
				Data:     name,
				DataAtom: atom.Lookup([]byte(name)),
				Attr:     make([]html.Attribute, 0, len(n.Attributes)),
			}
			for _, a := range n.Attributes {
				el.Attr = append(el.Attr, html.Attribute{Key: strings.ToLower(a.Name), Val: a.Value})
			}
			parent.AppendChild(el)
			appendNetHTML(el, n.Children)
		case *Text:
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: n.Data})
		case *Comment:
			parent.AppendChild(&html.Node{Type: html.CommentNode, Data: n.Data})
		}
	}
}

func doctypeNode(el *Element) *html.Node {
	name := "html"
	if len(el.Attributes) > 0 {
		name = strings.ToLower(el.Attributes[0].Name)
	}
	return &html.Node{Type: html.DoctypeNode, Data: name}
}
