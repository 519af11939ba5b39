package parser

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PlainBackend extracts text with ledongthuc/pdf's per-page plain text
// decoder. It is also the backend for the non-PDF formats.
type PlainBackend struct{}

func (p *PlainBackend) Name() string { return "Plain" }

func (p *PlainBackend) SupportedFormats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatXLSX, FormatPPTX, FormatTXT}
}

func (p *PlainBackend) Extract(ctx context.Context, path string) (string, error) {
	format, err := checkFormat(p, path)
	if err != nil {
		return "", err
	}

	switch format {
	case FormatDOCX:
		return extractDOCX(ctx, path)
	case FormatXLSX:
		return extractXLSX(ctx, path)
	case FormatPPTX:
		return extractPPTX(ctx, path)
	case FormatTXT:
		return extractText(path)
	}

	return walkPDFPages(ctx, path, func(page pdf.Page) (string, error) {
		return page.GetPlainText(nil)
	})
}

// RowsBackend rebuilds lines from positioned glyphs: glyphs sharing a
// baseline become one line, lines are ordered top to bottom.
type RowsBackend struct{}

func (p *RowsBackend) Name() string { return "Rows" }

func (p *RowsBackend) SupportedFormats() []Format { return []Format{FormatPDF} }

func (p *RowsBackend) Extract(ctx context.Context, path string) (string, error) {
	if _, err := checkFormat(p, path); err != nil {
		return "", err
	}
	return walkPDFPages(ctx, path, pageRowsText)
}

type textRow struct {
	y     int64
	glyph []pdf.Text
}

func pageRowsText(page pdf.Page) (string, error) {
	return rowsText(page.Content().Text), nil
}

// rowsText groups glyphs by baseline rounded to whole points. Rows run top
// to bottom, glyphs left to right; glyphs at the same X keep stream order.
func rowsText(glyphs []pdf.Text) string {
	var rows []*textRow
	byY := make(map[int64]*textRow)
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		y := int64(math.Round(g.Y))
		r, ok := byY[y]
		if !ok {
			r = &textRow{y: y}
			byY[y] = r
			rows = append(rows, r)
		}
		r.glyph = append(r.glyph, g)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].y > rows[j].y })

	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		sort.SliceStable(r.glyph, func(i, j int) bool { return r.glyph[i].X < r.glyph[j].X })

		var line strings.Builder
		var prev pdf.Text
		for i, g := range r.glyph {
			if i > 0 && needsSpace(prev, g, line.String()) {
				line.WriteByte(' ')
			}
			line.WriteString(g.S)
			prev = g
		}
		lines = append(lines, strings.TrimRight(line.String(), " \t"))
	}
	return strings.Join(lines, "\n")
}

// needsSpace reports a word gap between two glyphs on one row. Without
// width information the glyphs' own space characters are trusted.
func needsSpace(prev, next pdf.Text, line string) bool {
	if strings.HasSuffix(line, " ") || strings.HasPrefix(next.S, " ") {
		return false
	}
	if prev.W <= 0 {
		return false
	}
	gap := next.X - (prev.X + prev.W)
	return gap > next.FontSize*0.15
}

// walkPDFPages opens path, runs pageText on every non-empty page and joins
// the results with newlines. Any page error fails the whole document.
func walkPDFPages(ctx context.Context, path string, pageText func(pdf.Page) (string, error)) (text string, err error) {
	defer recoverPDF(&err)

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	totalPages := reader.NumPage()
	pages := make([]string, 0, totalPages)

	for i := 1; i <= totalPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		t, err := pageText(page)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, t)
	}

	return strings.Join(pages, "\n"), nil
}
