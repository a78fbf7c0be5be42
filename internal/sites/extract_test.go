package sites

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/models"
	"github.com/goose-online/goose-sites/internal/testutil"
)

func TestExtract_NoEntryPoint(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{
		User: "alice", Name: "notes",
		Config: map[string]any{"title": "Has a title anyway"},
	})

	rec, err := Extract(root, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.HasIndex || rec.IsValid {
		t.Errorf("hasIndex=%v isValid=%v, want both false", rec.HasIndex, rec.IsValid)
	}
	if _, ok := rec.Config[models.KeySize]; ok {
		t.Error("size must not be set without an entry point")
	}
}

func TestExtract_EntryPointWithoutTitle(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{
		User: "alice", Name: "bare", HTML: "<html><body>no head</body></html>",
	})

	rec, err := Extract(root, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !rec.HasIndex {
		t.Error("hasIndex should be true")
	}
	if rec.IsValid {
		t.Error("site without title must be invalid")
	}
}

func TestExtract_ScrapedFields(t *testing.T) {
	root := testutil.SitesTree(t)
	html := testutil.Page("Alice's Blog", "Geese and more geese")
	dir := testutil.AddSite(t, root, testutil.Site{User: "alice", Name: "blog", HTML: html})

	rec, err := Extract(root, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Title() != "Alice's Blog" {
		t.Errorf("title = %q", rec.Title())
	}
	if rec.Description() != "Geese and more geese" {
		t.Errorf("description = %q", rec.Description())
	}
	if !rec.IsValid {
		t.Error("expected valid site")
	}
	if rec.Username != "alice" || rec.SiteName != "blog" || rec.Path != "alice/blog" {
		t.Errorf("identity = %s/%s path %s", rec.Username, rec.SiteName, rec.Path)
	}
	if rec.URL != "https://Goose-Online.github.io/goose-sites/sites/alice/blog/" {
		t.Errorf("url = %q", rec.URL)
	}
	if got := rec.Config[models.KeySize]; got != int64(len(html)) {
		t.Errorf("size = %v, want %d", got, len(html))
	}
}

func TestExtract_ConfigWinsForTitleAndDescription(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{
		User: "bob", Name: "site1",
		Config: map[string]any{
			"title":        "Config Title",
			"description":  "Config description",
			"size":         1,
			"lastModified": "1999-01-01T00:00:00.000Z",
		},
		HTML: testutil.Page("HTML Title", "HTML description"),
	})
	mtime := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	if err := os.Chtimes(filepath.Join(dir, EntryPoint), mtime, mtime); err != nil {
		t.Fatal(err)
	}

	rec, err := Extract(root, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Title() != "Config Title" || rec.Description() != "Config description" {
		t.Errorf("title/description = %q / %q", rec.Title(), rec.Description())
	}
	if rec.Config[models.KeySize] == float64(1) {
		t.Error("size must be recomputed from the entry point")
	}
	if got := rec.Config[models.KeyLastModified]; got != "2024-03-04T05:06:07.000Z" {
		t.Errorf("lastModified = %v", got)
	}
}

func TestExtract_EmptyConfigTitleIsFilled(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{
		User: "bob", Name: "x",
		Config: map[string]any{"title": ""},
		HTML:   "<title>Scraped</title>",
	})
	rec, err := Extract(root, dir)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rec.Title() != "Scraped" {
		t.Errorf("title = %q, want Scraped", rec.Title())
	}
}

func TestExtract_MalformedConfig(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{User: "carol", Name: "broken", HTML: "<title>x</title>"})
	testutil.WriteFile(t, filepath.Join(dir, ConfigFile), []byte("{not json"))

	_, err := Extract(root, dir)
	if err == nil {
		t.Fatal("expected error for malformed goose.json")
	}
	if !errors.Is(err, apperr.ErrInvalidSite) {
		t.Errorf("error = %v, want ErrInvalidSite", err)
	}
}

func TestExtract_EntryPointDirectoryFails(t *testing.T) {
	root := testutil.SitesTree(t)
	dir := testutil.AddSite(t, root, testutil.Site{User: "dave", Name: "odd", Config: map[string]any{"title": "Odd"}})
	if err := os.MkdirAll(filepath.Join(dir, EntryPoint), 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := Extract(root, dir); err == nil {
		t.Fatal("expected error when index.html is a directory")
	}
}

func TestExtract_ValidityIsDerived(t *testing.T) {
	cases := []struct {
		name  string
		site  testutil.Site
		valid bool
	}{
		{"index and title", testutil.Site{HTML: "<title>T</title>"}, true},
		{"index no title", testutil.Site{HTML: "<p>x</p>"}, false},
		{"title only in config", testutil.Site{Config: map[string]any{"title": "T"}}, false},
		{"config title and index", testutil.Site{Config: map[string]any{"title": "T"}, HTML: "<p>x</p>"}, true},
		{"non-string title", testutil.Site{Config: map[string]any{"title": 5}, HTML: "<p>x</p>"}, false},
	}
	root := testutil.SitesTree(t)
	for i, tc := range cases {
		tc.site.User = "u"
		tc.site.Name = string(rune('a' + i))
		dir := testutil.AddSite(t, root, tc.site)
		rec, err := Extract(root, dir)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		want := rec.HasIndex && rec.Title() != ""
		if rec.IsValid != want || rec.IsValid != tc.valid {
			t.Errorf("%s: isValid = %v, want %v", tc.name, rec.IsValid, tc.valid)
		}
	}
}

func TestSplitSitePath(t *testing.T) {
	cases := []struct {
		rel, dir, user, site string
	}{
		{"alice/blog", "blog", "alice", "blog"},
		{"blog", "blog", "unknown", "blog"},
		{".", "odd", "unknown", "odd"},
	}
	for _, tc := range cases {
		u, s := splitSitePath(tc.rel, tc.dir)
		if u != tc.user || s != tc.site {
			t.Errorf("splitSitePath(%q) = %q, %q; want %q, %q", tc.rel, u, s, tc.user, tc.site)
		}
	}
}
