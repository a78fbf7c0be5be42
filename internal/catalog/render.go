package catalog

import (
	"fmt"
	"strings"

	"github.com/goose-online/goose-sites/internal/models"
	"github.com/goose-online/goose-sites/internal/storage"
)

const (
	recentLimit     = 10
	descriptionMax  = 60
	unknownCreated  = "Unknown"
	unknownBiom     = "unknown"
	noDescription   = "No description"
	generatedLayout = "2006-01-02 15:04:05 MST"
)

// ListingEntry is one row of the machine-readable listing in the README.
type ListingEntry struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
	URL   string `json:"url"`
	Biom  string `json:"biom"`
}

// Listing returns the compact listing for every site in the catalog.
func Listing(c *models.Catalog) []ListingEntry {
	out := make([]ListingEntry, 0, len(c.Sites))
	for i := range c.Sites {
		s := &c.Sites[i]
		biom := s.Biom()
		if biom == "" {
			biom = unknownBiom
		}
		out = append(out, ListingEntry{
			Title: s.Title(),
			Owner: s.Username,
			URL:   s.URL,
			Biom:  biom,
		})
	}
	return out
}

// Render produces the README.md summary of a catalog.
func Render(c *models.Catalog) (string, error) {
	var b strings.Builder

	b.WriteString("# 🦢 Goose Sites - Self-Hosted Websites Directory\n\n")
	b.WriteString("## 📊 Statistics\n")
	fmt.Fprintf(&b, "- **Total users:** %d\n", c.Metadata.TotalUsers)
	fmt.Fprintf(&b, "- **Total sites:** %d\n", c.Metadata.TotalSites)
	fmt.Fprintf(&b, "- **Valid sites:** %d\n", c.Metadata.ValidSites)
	fmt.Fprintf(&b, "- **Last updated:** %s\n\n", c.Metadata.GeneratedAt.Format(generatedLayout))

	b.WriteString("## 🏆 Recent Sites\n\n")
	b.WriteString("| Site | Owner | Description | Created |\n")
	b.WriteString("|------|-------|-------------|---------|\n")
	for i := range c.Sites[:min(recentLimit, len(c.Sites))] {
		s := &c.Sites[i]
		name := s.Title()
		if name == "" {
			name = s.SiteName
		}
		created := s.Created()
		if created == "" {
			created = unknownCreated
		}
		fmt.Fprintf(&b, "| [%s](%s) | %s | %s | %s |\n",
			cell(name), s.URL, cell(s.Username), cell(truncate(s.Description())), cell(created))
	}

	listing, err := storage.EncodeJSON(Listing(c))
	if err != nil {
		return "", fmt.Errorf("catalog: encode listing: %w", err)
	}
	b.WriteString("\n## 🔗 All Sites\n\n```json\n")
	b.Write(listing)
	b.WriteString("```\n\n---\n\n")
	b.WriteString("*This index is automatically generated by goosesites build-index.*\n")

	return b.String(), nil
}

// truncate shortens a description to descriptionMax characters.
func truncate(desc string) string {
	if desc == "" {
		return noDescription
	}
	r := []rune(desc)
	if len(r) <= descriptionMax {
		return desc
	}
	return string(r[:descriptionMax]) + "..."
}

// cell keeps a value on one table row.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
