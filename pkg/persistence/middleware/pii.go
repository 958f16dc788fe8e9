package middleware

import (
	"context"
	"encoding/json"
	"regexp"

	"github.com/nvalim/lattice/pkg/ports"
)

type piiMiddleware struct {
	next     ports.Storage
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks values of JSON object keys
// matching the patterns before they reach the backend. Masking is one-way: a
// resumed draft re-asks for whatever was masked. Use it when drafts must not
// hold raw contact details at rest and encryption is not an option.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.Storage) ports.Storage {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) SetItem(ctx context.Context, key, value string) error {
	var doc map[string]any
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		// Not a JSON object; store unchanged.
		return m.next.SetItem(ctx, key, value)
	}

	maskMap(doc, m.patterns)

	masked, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return m.next.SetItem(ctx, key, string(masked))
}

func (m *piiMiddleware) GetItem(ctx context.Context, key string) (string, bool, error) {
	return m.next.GetItem(ctx, key)
}

func (m *piiMiddleware) RemoveItem(ctx context.Context, key string) error {
	return m.next.RemoveItem(ctx, key)
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
