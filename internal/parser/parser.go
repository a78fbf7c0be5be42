// Package parser extracts site metadata from goose.json and index.html.
//
// HTML handling is a narrow text scan, not a real HTML parser: it finds the
// first matching tag and returns whatever sits between the delimiters.
// Malformed or nested markup yields best-effort results.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// TitleSuffix is the brand suffix appended to page titles by the site template.
const TitleSuffix = "| Гусиный Интернет"

var (
	titleRe       = regexp.MustCompile(`(?i)<title>(.*?)</title>`)
	descriptionRe = regexp.MustCompile(`(?i)<meta.*?description.*?content="(.*?)"`)
)

// Result holds the fields scraped from an HTML entry point.
type Result struct {
	Title          string
	HasTitle       bool
	Description    string
	HasDescription bool
}

// ParseHTML scans raw HTML for the first <title> and description meta tag.
func ParseHTML(data []byte) *Result {
	r := &Result{}
	if m := titleRe.FindSubmatch(data); m != nil {
		r.Title = cleanTitle(string(m[1]))
		r.HasTitle = true
	}
	if m := descriptionRe.FindSubmatch(data); m != nil {
		r.Description = string(m[1])
		r.HasDescription = true
	}
	return r
}

// cleanTitle drops the first occurrence of the brand suffix and trims.
func cleanTitle(raw string) string {
	return strings.TrimSpace(strings.Replace(raw, TitleSuffix, "", 1))
}

// ParseConfig decodes a goose.json document into a key-value mapping.
// Empty input and a JSON null both yield an empty mapping.
func ParseConfig(data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}
	var cfg map[string]any
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parser: goose.json: %w", err)
	}
	if cfg == nil {
		cfg = map[string]any{}
	}
	return cfg, nil
}
