// Package models defines the domain types for goose-sites.
package models

import "time"

// Well-known keys of SiteRecord.Config.
const (
	KeyTitle        = "title"
	KeyDescription  = "description"
	KeyCreated      = "created"
	KeyBiom         = "biom"
	KeySize         = "size"
	KeyLastModified = "lastModified"
)

// SiteRecord describes one site directory under sites/<user>/<site>.
type SiteRecord struct {
	Username string         `json:"username"`
	SiteName string         `json:"siteName"`
	Path     string         `json:"path"`
	URL      string         `json:"url"`
	HasIndex bool           `json:"hasIndex"`
	Config   map[string]any `json:"config"`
	IsValid  bool           `json:"isValid"`
}

// Title returns config.title when it is a non-empty string.
func (r *SiteRecord) Title() string { return r.stringField(KeyTitle) }

// Description returns config.description when it is a string.
func (r *SiteRecord) Description() string { return r.stringField(KeyDescription) }

// Created returns the raw config.created value.
func (r *SiteRecord) Created() string { return r.stringField(KeyCreated) }

// Biom returns the free-form biom tag.
func (r *SiteRecord) Biom() string { return r.stringField(KeyBiom) }

func (r *SiteRecord) stringField(key string) string {
	if r.Config == nil {
		return ""
	}
	s, _ := r.Config[key].(string)
	return s
}

// Validate recomputes IsValid from HasIndex and the title. It is the only
// place IsValid is assigned.
func (r *SiteRecord) Validate() {
	r.IsValid = r.HasIndex && r.Title() != ""
}

// CatalogMetadata carries the aggregate counters of a catalog.
type CatalogMetadata struct {
	GeneratedAt time.Time `json:"generatedAt"`
	TotalUsers  int       `json:"totalUsers"`
	TotalSites  int       `json:"totalSites"`
	ValidSites  int       `json:"validSites"`
	Version     string    `json:"version"`
}

// Catalog is the index.json document.
type Catalog struct {
	Metadata CatalogMetadata `json:"metadata"`
	Sites    []SiteRecord    `json:"sites"`
}

// Violation kinds.
const (
	ViolationSiteLimit  = "site_limit"
	ViolationTotalLimit = "total_limit"
)

// Violation is a storage ceiling breach, either for one site or for the
// whole tree. Site fields are empty for total_limit violations.
type Violation struct {
	Kind    string  `json:"kind"`
	User    string  `json:"user,omitempty"`
	Site    string  `json:"site,omitempty"`
	SizeMB  float64 `json:"sizeMB,omitempty"`
	TotalMB float64 `json:"totalMB,omitempty"`
	LimitMB float64 `json:"limitMB"`
	Path    string  `json:"path,omitempty"`
}

// SiteUsage is the measured size of one site directory.
type SiteUsage struct {
	User   string  `json:"user"`
	Site   string  `json:"site"`
	Bytes  int64   `json:"bytes"`
	SizeMB float64 `json:"sizeMB"`
}
