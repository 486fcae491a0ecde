package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/wonny/radar/internal/contracts"
	"github.com/wonny/radar/internal/s0_data"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// PrintHeader prints a titled double-line header
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
}

// PrintSeparator prints a visual separator
func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, singleLine)
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator(w io.Writer) {
	fmt.Fprintln(w, doubleLine)
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// PrintKeyValue prints key-value pairs
func PrintKeyValue(w io.Writer, key string, value string, keyWidth int) {
	fmt.Fprintf(w, "   %-*s : %s\n", keyWidth, key, value)
}

// PrintTableHeader prints a table header
func PrintTableHeader(w io.Writer, columns []string, widths []int) {
	PrintTableRow(w, columns, widths)

	totalWidth := 0
	for i, width := range widths {
		totalWidth += width
		if i < len(widths)-1 {
			totalWidth += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", totalWidth))
}

// PrintTableRow prints a table row
func PrintTableRow(w io.Writer, values []string, widths []int) {
	for i, val := range values {
		if i < len(values)-1 {
			fmt.Fprintf(w, "%-*s  ", widths[i], val)
		} else {
			fmt.Fprint(w, val)
		}
	}
	fmt.Fprintln(w)
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var classificationColumns = []string{"RANK", "SYMBOL", "NAME", "TIER", "E", "SCORE", "FIRM", "REASON"}
var classificationWidths = []int{4, 8, 16, 10, 1, 5, 4, 0}

// PrintScanResult prints a ranked table, tier counts and insufficient inputs
func PrintScanResult(w io.Writer, result *contracts.ScanResult) {
	PrintHeader(w, fmt.Sprintf("Scan %s (%s)", formatDate(result), result.Source))
	PrintKeyValue(w, "Run ID", result.RunID, 11)
	PrintKeyValue(w, "Price Cap", fmt.Sprintf("%.2f", result.PriceCap), 11)
	PrintKeyValue(w, "Config", shortHash(result.ConfigHash), 11)
	PrintSeparator(w)

	PrintTableHeader(w, classificationColumns, classificationWidths)
	for _, c := range result.Ranked {
		e := " "
		if c.ECandidate {
			e = "E"
		}
		PrintTableRow(w, []string{
			fmt.Sprintf("%d", c.Rank),
			c.Symbol,
			truncate(c.Name, 16),
			c.Tier.String(),
			e,
			fmt.Sprintf("%d", c.Score.Total),
			fmt.Sprintf("%d/4", c.Firm.Count),
			c.Reason,
		}, classificationWidths)
	}

	PrintSeparator(w)
	counts := make([]string, 0, len(contracts.Tiers))
	for _, tier := range contracts.Tiers {
		counts = append(counts, fmt.Sprintf("%s=%d", tier, result.TierCounts[tier.String()]))
	}
	PrintKeyValue(w, "Tiers", strings.Join(counts, "  "), 11)
	PrintKeyValue(w, "E", fmt.Sprintf("%d", result.ECandidates), 11)

	if len(result.Insufficient) > 0 {
		PrintWarning(w, fmt.Sprintf("%d snapshot(s) skipped for insufficient data", len(result.Insufficient)))
		keys := make([]string, 0, len(result.Insufficient))
		for k := range result.Insufficient {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "   • %s: %s\n", k, result.Insufficient[k])
		}
	}

	PrintSuccess(w, fmt.Sprintf("%d classified in %s", result.Total(), result.Duration))
}

// PrintClassification prints the stage-by-stage detail of one security
func PrintClassification(w io.Writer, c contracts.Classification) {
	PrintHeader(w, fmt.Sprintf("%s %s", c.Symbol, c.Name))
	PrintKeyValue(w, "Tier", c.Tier.String(), 9)
	PrintKeyValue(w, "E", fmt.Sprintf("%t", c.ECandidate), 9)
	PrintKeyValue(w, "Reason", c.Reason, 9)
	PrintKeyValue(w, "Universe", c.Universe.Reason, 9)
	PrintKeyValue(w, "Firm", fmt.Sprintf("%d/4 (price=%t volume=%t trend=%t group=%t)",
		c.Firm.Count, c.Firm.Price, c.Firm.Volume, c.Firm.Trend, c.Firm.Group), 9)
	PrintKeyValue(w, "Score", fmt.Sprintf("%d (growth %.1f, quality %.1f, momentum %.1f, valuation %.1f)",
		c.Score.Total, c.Score.Growth, c.Score.Quality, c.Score.Momentum, c.Score.Valuation), 9)
	PrintDoubleSeparator(w)
}

func formatDate(result *contracts.ScanResult) string {
	if result.Date.IsZero() {
		return "-"
	}
	return result.Date.Format(s0_data.DateLayout)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
