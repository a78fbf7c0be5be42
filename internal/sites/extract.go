// Package sites discovers site directories under sites/<user>/<site> and
// extracts their catalog metadata.
package sites

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goose-online/goose-sites/internal/apperr"
	"github.com/goose-online/goose-sites/internal/models"
	"github.com/goose-online/goose-sites/internal/parser"
)

// Well-known file names inside a site directory.
const (
	ConfigFile = "goose.json"
	EntryPoint = "index.html"
)

// URLTemplate is the public address of a site; %s is the user/site path.
const URLTemplate = "https://Goose-Online.github.io/goose-sites/sites/%s/"

// Extract builds a SiteRecord for the site directory at sitePath, which must
// sit two levels below root. Any error means the site should be skipped.
func Extract(root, sitePath string) (*models.SiteRecord, error) {
	cfg, err := readConfig(filepath.Join(sitePath, ConfigFile))
	if err != nil {
		return nil, err
	}

	hasIndex, err := mergeEntryPoint(filepath.Join(sitePath, EntryPoint), cfg)
	if err != nil {
		return nil, err
	}

	rel, err := filepath.Rel(root, sitePath)
	if err != nil {
		return nil, fmt.Errorf("sites: relative path: %w", err)
	}
	rel = filepath.ToSlash(rel)
	username, siteName := splitSitePath(rel, filepath.Base(sitePath))

	rec := &models.SiteRecord{
		Username: username,
		SiteName: siteName,
		Path:     rel,
		URL:      fmt.Sprintf(URLTemplate, rel),
		HasIndex: hasIndex,
		Config:   cfg,
	}
	rec.Validate()
	return rec, nil
}

func readConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sites: read %s: %w", ConfigFile, err)
	}
	cfg, err := parser.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("sites: %s: %w: %v", ConfigFile, apperr.ErrInvalidSite, err)
	}
	return cfg, nil
}

// mergeEntryPoint scrapes the entry point into cfg. Config values win for
// title and description; size and lastModified always come from the file.
func mergeEntryPoint(path string, cfg map[string]any) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sites: stat %s: %w", EntryPoint, err)
	}
	if info.IsDir() {
		return false, fmt.Errorf("sites: %s is a directory", EntryPoint)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("sites: read %s: %w", EntryPoint, err)
	}

	res := parser.ParseHTML(data)
	if res.HasTitle && !isSet(cfg[models.KeyTitle]) {
		cfg[models.KeyTitle] = res.Title
	}
	if res.HasDescription && !isSet(cfg[models.KeyDescription]) {
		cfg[models.KeyDescription] = res.Description
	}

	cfg[models.KeySize] = info.Size()
	cfg[models.KeyLastModified] = isoTime(info.ModTime())
	return true, nil
}

// isSet reports whether a config value counts as defined: absent, null,
// false, zero and the empty string do not.
func isSet(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0
	default:
		return true
	}
}

func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func splitSitePath(rel, dirName string) (username, siteName string) {
	var parts []string
	for _, p := range strings.Split(rel, "/") {
		if p != "" && p != "." {
			parts = append(parts, p)
		}
	}
	if n := len(parts); n >= 2 {
		username, siteName = parts[n-2], parts[n-1]
	} else if n == 1 {
		siteName = parts[0]
	}
	if username == "" {
		username = "unknown"
	}
	if siteName == "" {
		siteName = dirName
	}
	return username, siteName
}
