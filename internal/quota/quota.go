// Package quota measures site directories against per-site and aggregate
// storage ceilings.
package quota

import (
	"context"
	"fmt"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/goose-online/goose-sites/internal/dirsize"
	"github.com/goose-online/goose-sites/internal/models"
	"github.com/goose-online/goose-sites/internal/sites"
)

// Limits are storage ceilings in binary megabytes.
type Limits struct {
	PerSiteMB float64
	TotalMB   float64
}

// Result is the outcome of one evaluation. It is complete even when
// violations are present.
type Result struct {
	Limits      Limits
	Users       int
	PerSite     []models.SiteUsage
	TotalUsedMB float64
	Violations  []models.Violation
}

// WithinLimits reports whether no ceiling was exceeded.
func (r *Result) WithinLimits() bool { return len(r.Violations) == 0 }

// Headroom returns the aggregate headroom against the total ceiling.
func (r *Result) Headroom() Headroom { return NewHeadroom(r.TotalUsedMB, r.Limits.TotalMB) }

// Headroom is usage against one ceiling. RemainingMB is negative once the
// ceiling is exceeded.
type Headroom struct {
	UsedMB      float64 `json:"usedMB"`
	LimitMB     float64 `json:"limitMB"`
	RemainingMB float64 `json:"remainingMB"`
	OverLimit   bool    `json:"overLimit"`
}

// NewHeadroom computes headroom for usedMB against limitMB.
func NewHeadroom(usedMB, limitMB float64) Headroom {
	return Headroom{
		UsedMB:      usedMB,
		LimitMB:     limitMB,
		RemainingMB: limitMB - usedMB,
		OverLimit:   usedMB > limitMB,
	}
}

// Evaluate sizes every site under root with up to workers goroutines and
// compares the figures against limits. Failure to list or size the tree is
// returned as an error; exceeded limits are reported in the Result.
func Evaluate(ctx context.Context, root string, limits Limits, workers int) (*Result, error) {
	dirs, users, err := sites.ListSiteDirs(root)
	if err != nil {
		return nil, err
	}

	sizes := make([]int64, len(dirs))
	g, gCtx := errgroup.WithContext(ctx)
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)
	for i, d := range dirs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			n, err := dirsize.Bytes(d.Path)
			if err != nil {
				return err
			}
			sizes[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("quota: size sites: %w", err)
	}

	res := &Result{
		Limits:     limits,
		Users:      len(users),
		PerSite:    make([]models.SiteUsage, 0, len(dirs)),
		Violations: []models.Violation{},
	}
	base := filepath.Base(root)
	for i, d := range dirs {
		mb := dirsize.MiB(sizes[i])
		res.TotalUsedMB += mb
		res.PerSite = append(res.PerSite, models.SiteUsage{
			User:   d.User,
			Site:   d.Site,
			Bytes:  sizes[i],
			SizeMB: dirsize.Round2(mb),
		})
		if mb > limits.PerSiteMB {
			res.Violations = append(res.Violations, models.Violation{
				Kind:    models.ViolationSiteLimit,
				User:    d.User,
				Site:    d.Site,
				SizeMB:  dirsize.Round2(mb),
				LimitMB: limits.PerSiteMB,
				Path:    path.Join(base, d.User, d.Site),
			})
		}
	}
	if res.TotalUsedMB > limits.TotalMB {
		res.Violations = append(res.Violations, models.Violation{
			Kind:    models.ViolationTotalLimit,
			TotalMB: dirsize.Round2(res.TotalUsedMB),
			LimitMB: limits.TotalMB,
		})
	}
	return res, nil
}
