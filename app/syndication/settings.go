package syndication

import (
	"fmt"
)

// LoadSettings controls how documents and their extensions are loaded.
type LoadSettings struct {
	// AutoDetectExtensions instantiates every registered extension whose
	// namespace is declared in the document.
	AutoDetectExtensions bool
	// SupportedExtensions lists namespace URIs or canonical prefixes that are
	// always tried, declared or not.
	SupportedExtensions []string
	// RetrievalLimit caps the number of items or entries read; 0 reads all.
	RetrievalLimit int
	Registry       *Registry
}

func DefaultLoadSettings(registry *Registry) LoadSettings {
	return LoadSettings{
		AutoDetectExtensions: true,
		Registry:             registry,
	}
}

func (s LoadSettings) Validate() error {
	if s.Registry == nil {
		return fmt.Errorf("%w: extension registry", ErrNilArgument)
	}
	if s.RetrievalLimit < 0 {
		return fmt.Errorf("retrieval limit must be non-negative")
	}
	return nil
}

// Reached reports whether count items exhaust the retrieval limit.
func (s LoadSettings) Reached(count int) bool {
	return s.RetrievalLimit > 0 && count >= s.RetrievalLimit
}
