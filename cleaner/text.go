package cleaner

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// invisibleSelector lists elements whose text a browser never renders.
const invisibleSelector = "head, script, style, noscript, template, iframe, svg, [hidden], [aria-hidden=true]"

// blockTags break the rendered text onto a new line, approximating what
// document.body.innerText produces for server-rendered markup.
var blockTags = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "br": {},
	"dd": {}, "details": {}, "dialog": {}, "div": {}, "dl": {}, "dt": {},
	"fieldset": {}, "figcaption": {}, "figure": {}, "footer": {}, "form": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"header": {}, "hr": {}, "li": {}, "main": {}, "nav": {}, "ol": {},
	"option": {}, "p": {}, "pre": {}, "section": {}, "summary": {},
	"table": {}, "tbody": {}, "td": {}, "tfoot": {}, "th": {}, "thead": {},
	"tr": {}, "ul": {}, "caption": {}, "button": {}, "label": {},
}

// VisibleText renders the visible text of rawHTML with one block element per
// line. When selector is non-empty only matching elements are rendered; if
// nothing matches the whole document is used.
func VisibleText(rawHTML string, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", fmt.Errorf("cleaner: parse html: %w", err)
	}

	doc.Find(invisibleSelector).Remove()
	doc.Find("[style]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		style, _ := s.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
	}).Remove()

	root := doc.Selection
	if selector != "" {
		sel, err := cascadia.Compile(selector)
		if err != nil {
			return "", fmt.Errorf("cleaner: invalid selector %q: %w", selector, err)
		}
		if matched := doc.FindMatcher(sel); matched.Length() > 0 {
			root = matched
		}
	}

	var buf strings.Builder
	for _, n := range root.Nodes {
		writeText(&buf, n)
		buf.WriteByte('\n')
	}
	return buf.String(), nil
}

func writeText(buf *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data == "" {
			return
		}
		if isSpace(n.Data[0]) && !endsWithSpace(buf) {
			buf.WriteByte(' ')
		}
		text := strings.Join(strings.Fields(n.Data), " ")
		if text == "" {
			return
		}
		buf.WriteString(text)
		if isSpace(n.Data[len(n.Data)-1]) {
			buf.WriteByte(' ')
		}
		return
	case html.CommentNode, html.DoctypeNode:
		return
	}

	_, block := blockTags[n.Data]
	if block && n.Type == html.ElementNode {
		buf.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(buf, c)
	}
	if block && n.Type == html.ElementNode {
		buf.WriteByte('\n')
	}
}

// endsWithSpace reports whether buf is empty or ends in a separator.
func endsWithSpace(buf *strings.Builder) bool {
	s := buf.String()
	return s == "" || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}
