package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFProvider pulls title-like lines from the first page of a PDF. Lines set
// in the dominant font sizes are the best naming signal a document carries.
type PDFProvider struct {
	pages int
}

func NewPDFProvider() *PDFProvider {
	return &PDFProvider{pages: 1}
}

func (p *PDFProvider) Extract(ctx context.Context, path string) (Insights, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	pages := p.pages
	if reader.NumPage() < pages {
		pages = reader.NumPage()
	}

	var lines []string
	for i := 1; i <= pages; i++ {
		select {
		case <-ctx.Done():
			return Insights{}, ctx.Err()
		default:
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, prominentLines(page.Content().Text)...)
	}

	if len(lines) == 0 {
		return Insights{}, nil
	}

	return Insights{Keywords: lines, Confidence: 0.8}, nil
}

// prominentLines keeps text spans whose font size is close to the largest on
// the page and joins spans sharing a baseline into one line.
func prominentLines(texts []pdf.Text) []string {
	var maxSize float64
	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		if t.FontSize > maxSize {
			maxSize = t.FontSize
		}
	}
	if maxSize == 0 {
		return nil
	}
	threshold := maxSize * 0.8

	var (
		lines   []string
		current strings.Builder
		lastY   = -1.0
	)
	flush := func() {
		line := strings.TrimSpace(current.String())
		if line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for _, t := range texts {
		if strings.TrimSpace(t.S) == "" || t.FontSize < threshold {
			continue
		}
		if lastY >= 0 && t.Y != lastY {
			flush()
		}
		current.WriteString(t.S)
		lastY = t.Y
	}
	flush()

	return lines
}
