package extract

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// maxTitleLength bounds the first-line keyword taken from plain text files.
const maxTitleLength = 100

func extractText(_ context.Context, path string) (Insights, error) {
	f, err := os.Open(path)
	if err != nil {
		return Insights{}, fmt.Errorf("failed to open text file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// Markdown headings carry the title after the marker.
		line = strings.TrimSpace(strings.TrimLeft(line, "#"))
		if line == "" {
			continue
		}

		if len(line) > maxTitleLength {
			line = line[:maxTitleLength]
		}

		return Insights{Keywords: []string{line}, Confidence: 0.5}, nil
	}

	if err := scanner.Err(); err != nil {
		return Insights{}, fmt.Errorf("failed to read text file: %w", err)
	}

	return Insights{}, nil
}
