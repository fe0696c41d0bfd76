package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

const pageStyle = `body { font-family: Georgia, "Times New Roman", serif; max-width: 48rem; margin: 2rem auto; line-height: 1.6; color: #222; }
h1 { font-size: 2.2rem; border-bottom: 3px double #222; padding-bottom: .5rem; }
h2 { font-size: 1.7rem; margin-top: 2.5rem; border-bottom: 1px solid #999; }
h3 { font-size: 1.3rem; margin-top: 2rem; }
h4 { font-size: 1.1rem; margin-top: 1.5rem; font-style: italic; }
.summary { color: #555; font-size: .95rem; margin-bottom: 2rem; }
@media print { body { margin: 0; max-width: none; } h2 { page-break-before: always; } }`

func renderHTML(tree *booktree.Tree) []byte {
	var b strings.Builder
	sum := tree.Summary()

	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title(tree)))
	b.WriteString("<style>\n" + pageStyle + "\n</style>\n</head>\n<body>\n")
	fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(title(tree)))
	fmt.Fprintf(&b, "<p class=\"summary\">%d chapters &middot; %d topics &middot; %d sections</p>\n",
		sum.Chapters, sum.Topics, sum.Sections)

	for i, ch := range tree.Chapters {
		fmt.Fprintf(&b, "<h2>%d. %s</h2>\n", i+1, html.EscapeString(ch.Title))
		b.WriteString(contentHTML(ch.Content))
		for j, tp := range ch.Topics {
			fmt.Fprintf(&b, "<h3>%d.%d %s</h3>\n", i+1, j+1, html.EscapeString(tp.Title))
			b.WriteString(contentHTML(tp.Content))
			for k, sec := range tp.Sections {
				fmt.Fprintf(&b, "<h4>%d.%d.%d %s</h4>\n", i+1, j+1, k+1, html.EscapeString(sec.Title))
				b.WriteString(contentHTML(sec.Content))
			}
		}
	}

	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// contentHTML embeds item content into the page. WordPress serves
// rendered HTML, which gets sanitized; content with no markup at all is
// treated as Markdown.
func contentHTML(content string) string {
	if !strings.Contains(content, "<") {
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(content), &buf); err == nil {
			return buf.String()
		}
		return "<p>" + html.EscapeString(content) + "</p>\n"
	}
	clean, err := sanitizeHTML(content)
	if err != nil {
		return "<p>" + html.EscapeString(content) + "</p>\n"
	}
	return clean
}

// Elements removed wholesale during sanitization.
var droppedElements = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "form": true, "link": true, "meta": true,
}

// sanitizeHTML strips active content from a fragment and re-serializes
// it: dropped elements disappear with their subtrees, on* handlers and
// javascript: URLs are removed, everything structural survives.
func sanitizeHTML(src string) (string, error) {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return "", fmt.Errorf("parse content: %w", err)
	}
	body := findBody(doc)
	if body == nil {
		return "", fmt.Errorf("no body in parsed content")
	}
	sanitizeNode(body)

	var buf bytes.Buffer
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("render content: %w", err)
		}
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

func sanitizeNode(n *html.Node) {
	var next *html.Node
	for c := n.FirstChild; c != nil; c = next {
		next = c.NextSibling
		if c.Type == html.ElementNode && droppedElements[c.Data] {
			n.RemoveChild(c)
			continue
		}
		if c.Type == html.ElementNode {
			attrs := c.Attr[:0]
			for _, a := range c.Attr {
				if strings.HasPrefix(strings.ToLower(a.Key), "on") {
					continue
				}
				if (a.Key == "href" || a.Key == "src") &&
					strings.HasPrefix(strings.ToLower(strings.TrimSpace(a.Val)), "javascript:") {
					continue
				}
				attrs = append(attrs, a)
			}
			c.Attr = attrs
		}
		sanitizeNode(c)
	}
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
