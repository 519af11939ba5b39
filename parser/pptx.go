package parser

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// extractPPTX returns one block per slide in slide order: a "Slide N"
// title line followed by the slide's non-empty paragraphs. Blocks are
// separated by a blank line so each slide scans as its own section.
func extractPPTX(ctx context.Context, path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("opening PPTX: %w", err)
	}
	defer r.Close()

	// ppt/slides/slide1.xml, slide2.xml, ...
	slideFiles := make(map[int]*zip.File)
	for _, f := range r.File {
		if strings.HasPrefix(f.Name, "ppt/slides/slide") && strings.HasSuffix(f.Name, ".xml") {
			if num := slideNumber(f.Name); num > 0 {
				slideFiles[num] = f
			}
		}
	}
	if len(slideFiles) == 0 {
		return "", fmt.Errorf("no slides found in PPTX")
	}

	nums := make([]int, 0, len(slideFiles))
	for n := range slideFiles {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var blocks []string
	for _, num := range nums {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		data, err := readZipFile(slideFiles[num])
		if err != nil {
			return "", fmt.Errorf("reading slide %d: %w", num, err)
		}
		text, err := pptxSlideText(data)
		if err != nil {
			return "", fmt.Errorf("parsing slide %d: %w", num, err)
		}
		if text == "" {
			continue
		}
		blocks = append(blocks, fmt.Sprintf("Slide %d\n%s", num, text))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// pptxSlide simplified XML structure
type pptxSlide struct {
	CSld struct {
		SpTree struct {
			SPs []pptxSP `xml:"sp"`
		} `xml:"spTree"`
	} `xml:"cSld"`
}

type pptxSP struct {
	TxBody *pptxTxBody `xml:"txBody"`
}

type pptxTxBody struct {
	Paras []pptxAPara `xml:"p"`
}

type pptxAPara struct {
	Runs []pptxARun `xml:"r"`
}

type pptxARun struct {
	Text string `xml:"t"`
}

func pptxSlideText(data []byte) (string, error) {
	var slide pptxSlide
	if err := xml.Unmarshal(data, &slide); err != nil {
		return "", err
	}

	var lines []string
	for _, sp := range slide.CSld.SpTree.SPs {
		if sp.TxBody == nil {
			continue
		}
		for _, para := range sp.TxBody.Paras {
			var line strings.Builder
			for _, run := range para.Runs {
				line.WriteString(run.Text)
			}
			if t := strings.TrimSpace(line.String()); t != "" {
				lines = append(lines, t)
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}

// slideNumber parses N from "ppt/slides/slideN.xml"; 0 if malformed.
func slideNumber(name string) int {
	name = strings.TrimPrefix(name, "ppt/slides/slide")
	name = strings.TrimSuffix(name, ".xml")
	var num int
	if _, err := fmt.Sscanf(name, "%d", &num); err != nil {
		return 0
	}
	return num
}
