// Package extract maps file types to content extraction providers and
// normalizes their output into a bounded keyword list.
package extract

import (
	"context"
	"log"

	"github.com/parakeep/parascan/internal/record"
)

// DefaultMaxKeywords bounds the keyword list attached to a record. It is a
// configuration point, not a protocol constant.
const DefaultMaxKeywords = 5

// Insights is the normalized output of one provider call.
type Insights struct {
	Keywords   []string
	Caption    string
	Confidence float64
}

// Provider extracts insights from a single local file. Providers do not
// retry; extraction is local and a failure only costs that file its keywords.
type Provider interface {
	Extract(ctx context.Context, path string) (Insights, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, path string) (Insights, error)

func (f ProviderFunc) Extract(ctx context.Context, path string) (Insights, error) {
	return f(ctx, path)
}

// Registry dispatches extraction by file type. Types without a registered
// provider yield empty insights without error.
type Registry struct {
	providers   map[record.FileType]Provider
	maxKeywords int
	onFailure   func(fileType record.FileType)
}

func NewRegistry() *Registry {
	return &Registry{
		providers:   make(map[record.FileType]Provider),
		maxKeywords: DefaultMaxKeywords,
	}
}

// Default returns a registry with every built-in provider wired in.
func Default() *Registry {
	r := NewRegistry()
	r.Register(record.TypePDF, NewPDFProvider())
	r.Register(record.TypeImage, NewImageProvider())
	r.Register(record.TypeSpreadsheet, ProviderFunc(extractSpreadsheet))
	r.Register(record.TypeCSV, ProviderFunc(extractCSV))
	r.Register(record.TypeMarkdown, ProviderFunc(extractText))
	r.Register(record.TypeText, ProviderFunc(extractText))
	return r
}

func (r *Registry) Register(fileType record.FileType, p Provider) {
	r.providers[fileType] = p
}

// SetMaxKeywords overrides the keyword cap. Values below 1 are ignored.
func (r *Registry) SetMaxKeywords(n int) {
	if n >= 1 {
		r.maxKeywords = n
	}
}

// SetFailureHook installs a callback invoked whenever a provider errors,
// keyed by the file type that failed.
func (r *Registry) SetFailureHook(hook func(fileType record.FileType)) {
	r.onFailure = hook
}

// Dispatch runs the provider registered for fileType against path. A missing
// provider returns zero insights; a provider failure is logged and absorbed
// so a single unreadable file never aborts the scan.
func (r *Registry) Dispatch(ctx context.Context, path string, fileType record.FileType) Insights {
	provider, ok := r.providers[fileType]
	if !ok {
		return Insights{}
	}

	insights, err := provider.Extract(ctx, path)
	if err != nil {
		log.Printf("Extraction failed for %s (type %s): %v", path, fileType, err)
		if r.onFailure != nil {
			r.onFailure(fileType)
		}
		return Insights{}
	}

	return r.normalize(insights)
}

func (r *Registry) normalize(in Insights) Insights {
	keywords := make([]string, 0, r.maxKeywords)
	for _, kw := range in.Keywords {
		if kw == "" {
			continue
		}
		keywords = append(keywords, kw)
		if len(keywords) == r.maxKeywords {
			break
		}
	}

	confidence := in.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	if len(keywords) == 0 && in.Caption == "" {
		confidence = 0
	}

	return Insights{
		Keywords:   keywords,
		Caption:    in.Caption,
		Confidence: confidence,
	}
}
