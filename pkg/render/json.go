package render

import (
	"bytes"
	"encoding/json"

	"github.com/dkoosis/hellobench/pkg/pattern"
)

// JSONSchema names the layout of the document JSON emits. Bump it when a
// field is renamed or removed.
const JSONSchema = "hellobench/v1"

// JSON renders patterns as one JSON document for automation.
type JSON struct{}

// NewJSON creates a JSON renderer.
func NewJSON() *JSON {
	return &JSON{}
}

type jsonDocument struct {
	Tool     string        `json:"tool"`
	Schema   string        `json:"schema"`
	Scope    string        `json:"scope,omitempty"`
	Sections []jsonSection `json:"sections"`
	Error    string        `json:"error,omitempty"`
}

type jsonSection struct {
	Type  pattern.PatternType `json:"type"`
	Label string              `json:"label,omitempty"`
	Data  pattern.Pattern     `json:"data"`
}

// Render writes the patterns in order. The scope is the label of the first
// summary. HTML characters are left unescaped so arrows and names survive
// as written. A marshalling failure still yields a valid document, with the
// sections dropped and the error set.
func (j *JSON) Render(patterns []pattern.Pattern) string {
	doc := jsonDocument{
		Tool:     "hellobench",
		Schema:   JSONSchema,
		Sections: make([]jsonSection, 0, len(patterns)),
	}
	for _, p := range patterns {
		label := patternLabel(p)
		if _, ok := p.(*pattern.Summary); ok && doc.Scope == "" {
			doc.Scope = label
		}
		doc.Sections = append(doc.Sections, jsonSection{Type: p.Type(), Label: label, Data: p})
	}

	out, err := encodeJSON(doc)
	if err != nil {
		doc.Sections = []jsonSection{}
		doc.Error = err.Error()
		out, _ = encodeJSON(doc)
	}
	return out
}

func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func patternLabel(p pattern.Pattern) string {
	switch v := p.(type) {
	case *pattern.Summary:
		return v.Label
	case *pattern.ResultTable:
		return v.Label
	case *pattern.Leaderboard:
		return v.Label
	case *pattern.Comparison:
		return v.Label
	case *pattern.Sparkline:
		return v.Label
	default:
		return ""
	}
}
