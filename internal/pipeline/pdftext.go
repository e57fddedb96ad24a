package pipeline

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// gap, in text space units, above which two glyph runs on a row are
// treated as separate words.
const wordGap = 1.0

func ReadPDFFile(path string) (text string, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	return readPDFPages(r)
}

func ReadPDFBytes(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}
	return readPDFPages(r)
}

// readPDFPages joins page texts with "\n" in page order.
func readPDFPages(r *pdf.Reader) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("malformed pdf: %v", rec)
		}
	}()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pageText, err := pageRowsText(p)
		if err != nil || strings.TrimSpace(pageText) == "" {
			pageText, err = p.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("page %d: %w", i, err)
			}
		}
		pages = append(pages, pageText)
	}
	return strings.Join(pages, "\n"), nil
}

// pageRowsText renders a page top to bottom, one physical row per line.
func pageRowsText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return "", err
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		sort.SliceStable(row.Content, func(i, j int) bool { return row.Content[i].X < row.Content[j].X })
		var b strings.Builder
		var prevEnd float64
		for i, t := range row.Content {
			if i > 0 && t.X-prevEnd > wordGap && !strings.HasSuffix(b.String(), " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			prevEnd = t.X + t.W
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n"), nil
}
