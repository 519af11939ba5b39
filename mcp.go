package docsection

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RegisterMCP registers extraction and search tools bound to s.
func (s *Session) RegisterMCP(srv *mcp.Server) {
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docsection_backends",
		Description: "List the extraction backends in comparison order, followed by the compare-all selection.",
	}, s.toolBackends)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docsection_extract",
		Description: "Extract plain text from a document (pdf, docx, xlsx, pptx, txt) with one backend or all of them, and keep it as the current document for docsection_search.",
	}, s.toolExtract)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docsection_search",
		Description: "Find the section of the current document whose heading contains the query (case-insensitive). The section ends at the next blank line or all-caps heading.",
	}, s.toolSearch)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "docsection_compare",
		Description: "Run every backend on a document separately and report text length and quality metrics per backend, including failures.",
	}, s.toolCompare)
}

type backendsInput struct{}

type backendsOutput struct {
	Backends   []string `json:"backends"`
	Selections []string `json:"selections"`
}

func (s *Session) toolBackends(_ context.Context, _ *mcp.CallToolRequest, _ backendsInput) (*mcp.CallToolResult, backendsOutput, error) {
	return nil, backendsOutput{
		Backends:   s.ex.Backends(),
		Selections: s.ex.Selections(),
	}, nil
}

type extractInput struct {
	Path    string `json:"path" jsonschema:"path of the document to extract"`
	Backend string `json:"backend,omitempty" jsonschema:"backend name or 'All (Compare)'; empty uses the configured default"`
}

type extractOutput struct {
	Path    string `json:"path"`
	Backend string `json:"backend"`
	Chars   int    `json:"chars"`
	Text    string `json:"text"`
}

func (s *Session) toolExtract(ctx context.Context, _ *mcp.CallToolRequest, in extractInput) (*mcp.CallToolResult, extractOutput, error) {
	text, err := s.Load(ctx, in.Path, in.Backend)
	if err != nil {
		return nil, extractOutput{}, err
	}
	_, selection, _ := s.Source()
	return nil, extractOutput{
		Path:    in.Path,
		Backend: selection,
		Chars:   len([]rune(text)),
		Text:    text,
	}, nil
}

type searchInput struct {
	Query string `json:"query" jsonschema:"section title to look for"`
}

type searchOutput struct {
	Results []string `json:"results,omitempty"`
}

func (s *Session) toolSearch(_ context.Context, _ *mcp.CallToolRequest, in searchInput) (*mcp.CallToolResult, searchOutput, error) {
	results, err := s.Search(in.Query)
	if err != nil {
		return nil, searchOutput{}, err
	}
	return nil, searchOutput{Results: results}, nil
}

type compareInput struct {
	Path string `json:"path" jsonschema:"path of the document to compare backends on"`
}

type compareEntry struct {
	Backend   string  `json:"backend"`
	Chars     int     `json:"chars"`
	Lines     int     `json:"lines"`
	Headings  int     `json:"headings"`
	Printable float64 `json:"printable_ratio"`
	ElapsedMs int64   `json:"elapsed_ms"`
	Error     string  `json:"error,omitempty"`
}

type compareOutput struct {
	Results []compareEntry `json:"results,omitempty"`
}

func (s *Session) toolCompare(ctx context.Context, _ *mcp.CallToolRequest, in compareInput) (*mcp.CallToolResult, compareOutput, error) {
	results, err := s.ex.Compare(ctx, in.Path)
	if err != nil {
		return nil, compareOutput{}, err
	}
	out := compareOutput{Results: make([]compareEntry, 0, len(results))}
	for _, r := range results {
		entry := compareEntry{
			Backend:   r.Backend,
			Chars:     r.Quality.Chars,
			Lines:     r.Quality.Lines,
			Headings:  r.Quality.Headings,
			Printable: r.Quality.PrintableRatio,
			ElapsedMs: r.Elapsed.Milliseconds(),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		out.Results = append(out.Results, entry)
	}
	return nil, out, nil
}
