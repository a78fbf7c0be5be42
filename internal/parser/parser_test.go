package parser

import (
	"testing"
)

func TestParseHTML_TitleAndDescription(t *testing.T) {
	html := []byte(`<html><head>
<TITLE>Alice's Blog | Гусиный Интернет</TITLE>
<meta name="description" content="Notes about geese">
</head></html>`)
	r := ParseHTML(html)
	if !r.HasTitle || r.Title != "Alice's Blog" {
		t.Errorf("title = %q (has=%v), want %q", r.Title, r.HasTitle, "Alice's Blog")
	}
	if !r.HasDescription || r.Description != "Notes about geese" {
		t.Errorf("description = %q, want %q", r.Description, "Notes about geese")
	}
}

func TestParseHTML_FirstTitleWins(t *testing.T) {
	r := ParseHTML([]byte("<title>One</title><title>Two</title>"))
	if r.Title != "One" {
		t.Errorf("title = %q, want %q", r.Title, "One")
	}
}

func TestParseHTML_NoTags(t *testing.T) {
	r := ParseHTML([]byte("<html><body>hi</body></html>"))
	if r.HasTitle || r.HasDescription {
		t.Errorf("expected no matches, got %+v", r)
	}
}

func TestParseHTML_EmptyTitle(t *testing.T) {
	r := ParseHTML([]byte("<title>  | Гусиный Интернет </title>"))
	if !r.HasTitle {
		t.Fatal("expected title match")
	}
	if r.Title != "" {
		t.Errorf("title = %q, want empty", r.Title)
	}
}

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"title":"Pond","created":"2024-01-01","biom":"lake"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg["title"] != "Pond" || cfg["biom"] != "lake" {
		t.Errorf("cfg = %v", cfg)
	}
}

func TestParseConfig_EmptyAndNull(t *testing.T) {
	for _, in := range []string{"", "  \n", "null"} {
		cfg, err := ParseConfig([]byte(in))
		if err != nil {
			t.Fatalf("ParseConfig(%q): %v", in, err)
		}
		if cfg == nil || len(cfg) != 0 {
			t.Errorf("ParseConfig(%q) = %v, want empty map", in, cfg)
		}
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	for _, in := range []string{"{title:", "[1,2]", `"str"`} {
		if _, err := ParseConfig([]byte(in)); err == nil {
			t.Errorf("ParseConfig(%q) expected error", in)
		}
	}
}
