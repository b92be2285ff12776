package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ImageProvider runs Tesseract OCR over an image and keeps the leading
// non-blank lines as keywords. The first line doubles as the caption.
type ImageProvider struct{}

func NewImageProvider() *ImageProvider {
	return &ImageProvider{}
}

func (p *ImageProvider) Extract(ctx context.Context, path string) (Insights, error) {
	select {
	case <-ctx.Done():
		return Insights{}, ctx.Err()
	default:
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetImage(path); err != nil {
		return Insights{}, fmt.Errorf("failed to load image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return Insights{}, fmt.Errorf("OCR failed: %w", err)
	}

	var lines []string
	for line := range strings.SplitSeq(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return Insights{}, nil
	}

	return Insights{
		Keywords:   lines,
		Caption:    lines[0],
		Confidence: 0.6,
	}, nil
}
