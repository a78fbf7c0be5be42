package quota

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/goose-online/goose-sites/internal/dirsize"
	"github.com/goose-online/goose-sites/internal/models"
)

// WriteSummary prints the per-site usage table, the aggregate figures and
// any violations to w.
func WriteSummary(w io.Writer, r *Result) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Site", "Size", "MB", "Limit MB", "Status"})
	table.SetAutoFormatHeaders(false)
	for _, u := range r.PerSite {
		status := "ok"
		if dirsize.MiB(u.Bytes) > r.Limits.PerSiteMB {
			status = "OVER"
		}
		table.Append([]string{
			u.User + "/" + u.Site,
			humanize.IBytes(uint64(u.Bytes)),
			fmt.Sprintf("%.2f", u.SizeMB),
			fmt.Sprintf("%g", r.Limits.PerSiteMB),
			status,
		})
	}
	table.Render()

	h := r.Headroom()
	fmt.Fprintf(w, "\nSummary:\n")
	fmt.Fprintf(w, "  Total users: %d\n", r.Users)
	fmt.Fprintf(w, "  Total storage used: %.2f MB\n", h.UsedMB)
	fmt.Fprintf(w, "  Storage limit: %g MB\n", h.LimitMB)
	fmt.Fprintf(w, "  Remaining: %.2f MB\n", h.RemainingMB)

	if r.WithinLimits() {
		fmt.Fprintln(w, "\nAll limits are satisfied")
		return
	}
	fmt.Fprintln(w, "\nViolations found:")
	for _, v := range r.Violations {
		fmt.Fprintf(w, "  %s\n", DescribeViolation(v))
	}
}

// DescribeViolation renders one violation as a single line.
func DescribeViolation(v models.Violation) string {
	if v.Kind == models.ViolationTotalLimit {
		return fmt.Sprintf("Total storage exceeded: %.2f MB > %g MB", v.TotalMB, v.LimitMB)
	}
	return fmt.Sprintf("%s: %.2f MB > %g MB", v.Path, v.SizeMB, v.LimitMB)
}

// OwnerRow is one stored site in an owner usage table.
type OwnerRow struct {
	Site    string
	Entries int
	Bytes   int64
}

// WriteOwnerUsage prints an owner's stored sites and headroom to w.
func WriteOwnerUsage(w io.Writer, owner string, rows []OwnerRow, h Headroom) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Site", "Entries", "Size", "MB"})
	table.SetAutoFormatHeaders(false)
	for _, r := range rows {
		table.Append([]string{
			owner + "/" + r.Site,
			fmt.Sprintf("%d", r.Entries),
			humanize.IBytes(uint64(r.Bytes)),
			fmt.Sprintf("%.2f", dirsize.MiB(r.Bytes)),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\nUsed: %.2f MB of %g MB, remaining %.2f MB\n", h.UsedMB, h.LimitMB, h.RemainingMB)
	if h.OverLimit {
		fmt.Fprintln(w, "Over limit")
	}
}
