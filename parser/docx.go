package parser

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDOCX returns the body of word/document.xml in document order:
// one line per paragraph and one line per table row, cells tab-separated.
// Empty paragraphs are kept as blank lines since they delimit sections.
func extractDOCX(ctx context.Context, path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening DOCX: %w", err)
	}
	defer r.Close()

	var docFile *zip.File
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("word/document.xml not found in DOCX")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("opening document.xml: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := docxBodyText(data)
	if err != nil {
		return "", fmt.Errorf("parsing DOCX XML: %w", err)
	}
	return text, nil
}

// DOCX XML structures (simplified)
type docxPara struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
	Tabs []struct{} `xml:"tab"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

type docxTable struct {
	Rows []docxRow `xml:"tr"`
}

type docxRow struct {
	Cells []docxCell `xml:"tc"`
}

type docxCell struct {
	Paras []docxPara `xml:"p"`
}

// docxBodyText walks the children of w:body in order so tables stay
// between the paragraphs that surround them.
func docxBodyText(data []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var lines []string
	inBody := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if !inBody {
				inBody = el.Name.Local == "body"
				continue
			}
			switch el.Name.Local {
			case "p":
				var para docxPara
				if err := dec.DecodeElement(&para, &el); err != nil {
					return "", err
				}
				lines = append(lines, paraText(para))
			case "tbl":
				var tbl docxTable
				if err := dec.DecodeElement(&tbl, &el); err != nil {
					return "", err
				}
				lines = append(lines, tableLines(tbl)...)
			default:
				// sectPr, bookmarks, content controls
				if err := dec.Skip(); err != nil {
					return "", err
				}
			}
		case xml.EndElement:
			if inBody && el.Name.Local == "body" {
				return strings.Join(lines, "\n"), nil
			}
		}
	}

	if !inBody {
		return "", fmt.Errorf("no w:body element")
	}
	return strings.Join(lines, "\n"), nil
}

func tableLines(tbl docxTable) []string {
	lines := make([]string, 0, len(tbl.Rows))
	for _, row := range tbl.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			parts := make([]string, 0, len(cell.Paras))
			for _, p := range cell.Paras {
				if t := paraText(p); t != "" {
					parts = append(parts, t)
				}
			}
			cells = append(cells, strings.Join(parts, " "))
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return lines
}

func paraText(para docxPara) string {
	var b strings.Builder
	for _, run := range para.Runs {
		for range run.Tabs {
			b.WriteByte('\t')
		}
		for _, t := range run.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}
