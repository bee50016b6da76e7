package parser

import "strings"

// ExtractLinks returns the href of every anchor in doc, in document order.
// Empty hrefs and pure fragment links are skipped; duplicates are kept.
func ExtractLinks(doc *Document) []string {
	links := []string{}
	Walk(doc.RootNodes, func(n Node) bool {
		el, ok := n.(*Element)
		if !ok || !el.Is("a") {
			return true
		}

		href, ok := el.GetAttribute("href")
		if !ok {
			return true
		}
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return true
		}
		links = append(links, href)
		return true
	})
	return links
}
