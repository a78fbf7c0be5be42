// Package catalog assembles site records into the versioned index.json
// document and renders its Markdown summary.
package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/goose-online/goose-sites/internal/models"
)

// SchemaVersion is the catalog document version.
const SchemaVersion = "1.0.0"

// createdLayouts are the ISO-8601 forms accepted for config.created.
var createdLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseCreated returns the creation time of r. A missing or unparseable
// value reports ok=false and the record sorts by path.
func parseCreated(r *models.SiteRecord) (time.Time, bool) {
	raw := strings.TrimSpace(r.Created())
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range createdLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareSites orders two records: newest first when both carry a creation
// time, otherwise ascending by path.
func compareSites(a, b *models.SiteRecord) int {
	ta, okA := parseCreated(a)
	tb, okB := parseCreated(b)
	if okA && okB {
		return tb.Compare(ta)
	}
	return strings.Compare(a.Path, b.Path)
}

// SortSites stably sorts records in place with compareSites. compareSites is
// not transitive when dated and undated records mix, so records are first put
// in path order to make the result independent of the input order.
func SortSites(records []models.SiteRecord) {
	slices.SortFunc(records, func(a, b models.SiteRecord) int {
		return strings.Compare(a.Path, b.Path)
	})
	slices.SortStableFunc(records, func(a, b models.SiteRecord) int {
		return compareSites(&a, &b)
	})
}

// Assemble keeps the valid records, sorts them and wraps them with metadata.
// Invalid records never take part in the sort. totalSiteDirs includes sites
// that were skipped or invalid.
func Assemble(records []models.SiteRecord, userCount, totalSiteDirs int, now time.Time) *models.Catalog {
	valid := make([]models.SiteRecord, 0, len(records))
	for _, r := range records {
		if r.IsValid {
			valid = append(valid, r)
		}
	}
	SortSites(valid)

	return &models.Catalog{
		Metadata: models.CatalogMetadata{
			GeneratedAt: now.UTC(),
			TotalUsers:  userCount,
			TotalSites:  totalSiteDirs,
			ValidSites:  len(valid),
			Version:     SchemaVersion,
		},
		Sites: valid,
	}
}
