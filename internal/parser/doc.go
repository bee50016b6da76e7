/*
Package parser turns HTML text into a DOM tree.

Parsing happens in two passes. Tokenize scans the input into start tags,
end tags, text and comments; a recursive tree builder then consumes the
token stream and nests the nodes:

	doc, err := parser.ParseHTML(`<div id="main"><span>Hi</span></div>`)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(parser.Outline(doc))

The parser is deliberately strict: every non-void element needs a matching
end tag, compared case-insensitively. Tag names keep the case of the
source. Whole documents are buffered; there is no streaming mode and no
character set detection.

The contents of script and style elements become a single text token, so
a '<' inside them does not open a tag. Whitespace before that token is
skipped like anywhere else between tokens.

ExtractLinks, Outline and ToNetHTML work on a finished Document.
*/
package parser

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'flux.parser'.
func tracer() tracing.Trace {
	return tracing.Select("flux.parser")
}
