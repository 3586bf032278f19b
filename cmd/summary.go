package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/ledger"
	"github.com/etnz/ledger/history"
)

// summaryMarkdown renders the outcome of an import as markdown.
func summaryMarkdown(j *ledger.Journal, results []result) string {
	var b strings.Builder
	b.WriteString("# Import summary\n\n")
	b.WriteString("| File | Format | Committed | Skipped | Duplicates | Rejected |\n")
	b.WriteString("|:-----|:-------|----------:|--------:|-----------:|---------:|\n")
	var total ledger.ImportStats
	for _, r := range results {
		format := r.Format
		if format == "" {
			format = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d |\n", cell(r.File), format,
			r.Stats.Committed, r.Stats.Skipped, r.Stats.Duplicates, r.Stats.Rejected)
		total.Committed += r.Stats.Committed
		total.Skipped += r.Stats.Skipped
		total.Duplicates += r.Stats.Duplicates
		total.Rejected += r.Stats.Rejected
	}
	fmt.Fprintf(&b, "| **Total** | | %d | %d | %d | %d |\n\n", total.Committed, total.Skipped, total.Duplicates, total.Rejected)

	fmt.Fprintf(&b, "Journal: %d entries, %d commodities.\n", j.Len(), j.Commodities().Len())

	var failed []result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, r := range failed {
			fmt.Fprintf(&b, "- `%s`: %v\n", r.File, r.Err)
		}
	}
	return b.String()
}

// historyMarkdown renders import sessions as a markdown table.
func historyMarkdown(sessions []history.Session) string {
	if len(sessions) == 0 {
		return "No import recorded yet.\n"
	}
	var b strings.Builder
	b.WriteString("# Import history\n\n")
	b.WriteString("| Started | Source | Format | Committed | Skipped | Duplicates | Rejected |\n")
	b.WriteString("|:--------|:-------|:-------|----------:|--------:|-----------:|---------:|\n")
	for _, s := range sessions {
		started := s.Started.Format("2006-01-02 15:04:05")
		if s.Finished.IsZero() {
			started += " (unfinished)"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %d | %d | %d | %d |\n", started, cell(s.Source), s.Format,
			s.Stats.Committed, s.Stats.Skipped, s.Stats.Duplicates, s.Stats.Rejected)
	}
	return b.String()
}

// cell escapes the pipes of a table cell.
func cell(s string) string { return strings.ReplaceAll(s, "|", `\|`) }
