package render

import (
	"fmt"

	"github.com/dgallion1/bookbind/internal/booktree"
)

// Format is a supported output document format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
)

// ParseFormat normalizes a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "html":
		return FormatHTML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "docx":
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("unsupported format %q (want html, markdown or docx)", s)
}

func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "text/html; charset=utf-8"
}

func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatDOCX:
		return "docx"
	}
	return "html"
}

// Render serializes a tree into the requested format. Rendering is pure:
// the same tree always yields byte-identical output.
func Render(tree *booktree.Tree, f Format) ([]byte, error) {
	switch f {
	case FormatMarkdown:
		return renderMarkdown(tree), nil
	case FormatDOCX:
		return renderDOCX(tree)
	case FormatHTML:
		return renderHTML(tree), nil
	}
	return nil, fmt.Errorf("unsupported format %q", f)
}

// title falls back to a deterministic placeholder when the catalog did
// not supply one.
func title(tree *booktree.Tree) string {
	if tree.Title != "" {
		return tree.Title
	}
	return fmt.Sprintf("Untitled book %d", tree.BookID)
}
