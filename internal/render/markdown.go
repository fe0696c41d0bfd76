package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookbind/internal/booktree"
	"golang.org/x/net/html"
)

func renderMarkdown(tree *booktree.Tree) []byte {
	var b strings.Builder
	sum := tree.Summary()

	fmt.Fprintf(&b, "# %s\n\n", title(tree))
	fmt.Fprintf(&b, "> %d chapters, %d topics, %d sections\n\n", sum.Chapters, sum.Topics, sum.Sections)

	for i, ch := range tree.Chapters {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, ch.Title)
		writeText(&b, ch.Content)
		for j, tp := range ch.Topics {
			fmt.Fprintf(&b, "### %d.%d %s\n\n", i+1, j+1, tp.Title)
			writeText(&b, tp.Content)
			for k, sec := range tp.Sections {
				fmt.Fprintf(&b, "#### %d.%d.%d %s\n\n", i+1, j+1, k+1, sec.Title)
				writeText(&b, sec.Content)
			}
		}
	}

	return []byte(b.String())
}

func writeText(b *strings.Builder, content string) {
	if t := contentText(content); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
}

// contentText reduces item content to plain text. HTML markup is parsed
// and flattened with paragraph breaks preserved; plain content passes
// through untouched.
func contentText(content string) string {
	if !strings.Contains(content, "<") {
		return strings.TrimSpace(content)
	}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}

	var paras []string
	var current strings.Builder
	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			paras = append(paras, t)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style":
				return
			case "p", "div", "li", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6", "tr":
				flush()
			case "br":
				current.WriteByte('\n')
			}
		}
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()

	return strings.Join(paras, "\n\n")
}
