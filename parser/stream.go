package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// StreamBackend decodes page content streams with pdfcpu and interprets the
// text operators itself.
type StreamBackend struct{}

func (p *StreamBackend) Name() string { return "Stream" }

func (p *StreamBackend) SupportedFormats() []Format { return []Format{FormatPDF} }

func (p *StreamBackend) Extract(ctx context.Context, path string) (text string, err error) {
	if _, err := checkFormat(p, path); err != nil {
		return "", err
	}
	defer recoverPDF(&err)

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		if r == nil {
			// No content stream: a blank page.
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", pageNr, err)
		}
		pages = append(pages, contentStreamText(data))
	}

	return strings.Join(pages, "\n"), nil
}
