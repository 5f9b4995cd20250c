// Package ui (display.go) prints Vidispine responses and listings to the
// console, and provides the progress bar and the standard success and error
// messages used by the commands.
package ui

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/schollz/progressbar/v3"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

// Success prints a simple success message to standard output.
func Success(msg string) {
	fmt.Println(msg)
}

// PrintError prints an error to standard error.
func PrintError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// DisplayDocument prints a response body. XML is re-indented for reading.
func DisplayDocument(doc *vidispine.Document) {
	if doc.Empty() {
		fmt.Println("(no content)")
		return
	}
	tree := doc.Tree()
	if tree == nil {
		fmt.Println(doc.Text())
		return
	}
	out := tree.Copy()
	out.Indent(2)
	s, err := out.WriteToString()
	if err != nil {
		fmt.Println(doc.Text())
		return
	}
	fmt.Print(s)
}

// DisplaySearchHits prints search results, followed by a footer with the
// total reported by the server.
func DisplaySearchHits(hits []vidispine.SearchHit, total int) {
	if len(hits) == 0 {
		fmt.Println("No hits found.")
		return
	}

	fmt.Printf("%-12s %-20s %-16s %s\n", "Kind", "ID", "Start", "End")
	fmt.Println(strings.Repeat("-", 70))
	for _, h := range hits {
		fmt.Printf("%-12s %-20s %-16s %s\n", h.Kind, h.ID, dash(h.Start), dash(h.End))
	}
	printFooter(len(hits), total)
}

// DisplayFacets prints the counts of each facet.
func DisplayFacets(facets []vidispine.Facet) {
	for _, f := range facets {
		fmt.Printf("\nFacet %s:\n", f.Field)
		for _, c := range f.Counts {
			fmt.Printf("  %-40.40s %d\n", c.Value, c.Count)
		}
	}
}

// DisplayJobs prints a table of jobs.
func DisplayJobs(jobs []vidispine.JobRef, total int) {
	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return
	}

	fmt.Printf("%-14s %-20s %-16s %-22s %s\n", "Job ID", "Type", "User", "Status", "Started")
	fmt.Println(strings.Repeat("-", 100))
	for _, j := range jobs {
		fmt.Printf("%-14s %-20.20s %-16.16s %-22s %s\n", j.ID, j.Type, j.User, j.Status, formatStarted(j.Start))
	}
	printFooter(len(jobs), total)
}

// DisplayUsers prints a table of users.
func DisplayUsers(users []vidispine.UserRef, total int) {
	if len(users) == 0 {
		fmt.Println("No users found.")
		return
	}

	fmt.Printf("%-24s %-30s %-12s %s\n", "User Name", "Real Name", "Origin", "Disabled")
	fmt.Println(strings.Repeat("-", 80))
	for _, u := range users {
		fmt.Printf("%-24.24s %-30.30s %-12s %t\n", u.UserName, dash(u.RealName), dash(u.Origin), u.Disabled)
	}
	printFooter(len(users), total)
}

// DisplayFiles prints the files of a storage.
func DisplayFiles(files []vidispine.FileRef, total int) {
	if len(files) == 0 {
		fmt.Println("No files found.")
		return
	}

	fmt.Printf("%-14s %-50s %-8s %12s %s\n", "File ID", "Path", "State", "Size", "Item")
	fmt.Println(strings.Repeat("-", 100))
	for _, f := range files {
		fmt.Printf("%-14s %-50.50s %-8s %12s %s\n", f.ID, f.Path, f.State, formatBytes(f.Size), dash(f.ItemID))
	}
	printFooter(len(files), total)
}

// DisplayMetadata prints simple metadata sorted by field name.
func DisplayMetadata(md map[string]string) {
	if len(md) == 0 {
		fmt.Println("No metadata fields set.")
		return
	}
	keys := make([]string, 0, len(md))
	width := 0
	for k := range md {
		keys = append(keys, k)
		width = max(width, len(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-*s  %s\n", width, k, md[k])
	}
}

// DisplayURIs prints one URI per line.
func DisplayURIs(uris []string) {
	if len(uris) == 0 {
		fmt.Println("No thumbnails found.")
		return
	}
	for _, u := range uris {
		fmt.Println(u)
	}
}

func printFooter(shown, total int) {
	if total > shown {
		fmt.Printf("\nShowing %d of %d. Use --page or --all to see more.\n", shown, total)
		return
	}
	fmt.Printf("\n%d result(s).\n", shown)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// formatStarted renders a job start time in local time when it parses.
// Servers send offsets without a colon, e.g. 2024-03-01T10:20:30.123+0000.
func formatStarted(s string) string {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return dash(s)
	}
	return t.Local().Format(time.DateTime)
}

// formatBytes converts a size in bytes to a human-readable string using IEC
// units (KiB, MiB, GiB, etc.).
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}

// NewProgressBar creates a progress bar for uploads. It writes to stderr so
// that it does not mix with command output.
func NewProgressBar(maxBytes int64, description string) *progressbar.ProgressBar {
	if description == "" {
		description = "Uploading..."
	}
	return progressbar.NewOptions64(
		maxBytes,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
}

// UploadProgress adapts a progress bar to vidispine.UploadOptions.Progress.
func UploadProgress(bar *progressbar.ProgressBar) func(sent, total int64) {
	return func(sent, total int64) {
		_ = bar.Set64(sent)
	}
}
