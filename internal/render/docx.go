package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/bookbind/internal/booktree"
	"github.com/fumiama/go-docx"
)

// Run sizes are half-points, so "40" is a 20pt heading.
const (
	sizeTitle   = "40"
	sizeChapter = "32"
	sizeTopic   = "28"
	sizeSection = "24"
)

func renderDOCX(tree *booktree.Tree) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().Justification("center").AddText(title(tree)).Size(sizeTitle).Bold()
	sum := tree.Summary()
	w.AddParagraph().Justification("center").
		AddText(fmt.Sprintf("%d chapters, %d topics, %d sections", sum.Chapters, sum.Topics, sum.Sections)).
		Color("808080")

	for i, ch := range tree.Chapters {
		w.AddParagraph().AddText(fmt.Sprintf("%d. %s", i+1, ch.Title)).Size(sizeChapter).Bold()
		addBody(w, ch.Content)
		for j, tp := range ch.Topics {
			w.AddParagraph().AddText(fmt.Sprintf("%d.%d %s", i+1, j+1, tp.Title)).Size(sizeTopic).Bold()
			addBody(w, tp.Content)
			for k, sec := range tp.Sections {
				w.AddParagraph().AddText(fmt.Sprintf("%d.%d.%d %s", i+1, j+1, k+1, sec.Title)).Size(sizeSection).Italic()
				addBody(w, sec.Content)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return normalizeArchive(buf.Bytes())
}

// normalizeArchive rewrites the zip container with zeroed entry
// timestamps. go-docx stamps each entry with the current time, which
// would make two renders of the same tree differ byte-for-byte.
func normalizeArchive(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("read docx container: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			rc.Close()
			zw.Close()
			return nil, fmt.Errorf("rewrite %s: %w", f.Name, err)
		}
		if _, err := io.Copy(w, rc); err != nil {
			rc.Close()
			zw.Close()
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
		rc.Close()
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx container: %w", err)
	}
	return buf.Bytes(), nil
}

func addBody(w *docx.Docx, content string) {
	for _, para := range strings.Split(contentText(content), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		w.AddParagraph().AddText(para)
	}
}
