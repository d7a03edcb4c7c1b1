// Package ui renders search results and patch summaries for the terminal.
package ui

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/aleister1102/sgpatch/internal/differ"
	"github.com/aleister1102/sgpatch/internal/models"
	"github.com/aleister1102/sgpatch/internal/patcher"
	"github.com/aleister1102/sgpatch/internal/store"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	AddedColor   = color.New(color.FgGreen)
	RemovedColor = color.New(color.FgRed)
	GutterColor  = color.New(color.Faint)
)

// Printer writes human readable output to w
type Printer struct {
	w    io.Writer
	root string
}

// NewPrinter creates a printer. Paths under root are shown relative to it.
func NewPrinter(w io.Writer, root string) *Printer {
	return &Printer{w: w, root: root}
}

func (p *Printer) relative(path string) string {
	if p.root == "" || !filepath.IsAbs(path) {
		return path
	}
	if rel, err := filepath.Rel(p.root, path); err == nil {
		return rel
	}
	return path
}

// SearchResults prints every match grouped by file, followed by a summary.
func (p *Printer) SearchResults(groups []models.FileResults) {
	if len(groups) == 0 {
		InfoColor.Fprintln(p.w, "No matches.")
		return
	}

	matches := 0
	for _, group := range groups {
		PathColor.Fprintln(p.w, p.relative(group.FilePath))
		for _, result := range group.Results {
			matches++
			for _, line := range result.FormattedLines {
				p.diffLine(line)
			}
			fmt.Fprintln(p.w)
		}
	}

	stats := differ.StatsFromLines(groups)
	HeaderColor.Fprintf(p.w, "%s in %s",
		humanize.Comma(int64(matches))+" "+plural(matches, "match", "matches"),
		humanize.Comma(int64(len(groups)))+" "+plural(len(groups), "file", "files"))
	if stats.LinesAdded > 0 || stats.LinesRemoved > 0 {
		fmt.Fprintf(p.w, " (%s, %s)",
			AddedColor.Sprintf("+%s", humanize.Comma(int64(stats.LinesAdded))),
			RemovedColor.Sprintf("-%s", humanize.Comma(int64(stats.LinesRemoved))))
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) diffLine(line models.DiffLine) {
	gutter := GutterColor.Sprintf("%5s %5s ", lineNumber(line.BeforeLine), lineNumber(line.AfterLine))
	switch line.Marker {
	case models.MarkerAdded:
		fmt.Fprintln(p.w, gutter+AddedColor.Sprint("+ "+line.Text))
	case models.MarkerRemoved:
		fmt.Fprintln(p.w, gutter+RemovedColor.Sprint("- "+line.Text))
	default:
		fmt.Fprintln(p.w, gutter+"  "+line.Text)
	}
}

// ReplaceSummary prints the per-file outcome of a patch run.
func (p *Printer) ReplaceSummary(runID string, result *patcher.BatchResult) {
	HeaderColor.Fprintf(p.w, "--- Patch Summary (%s) ---\n", runID)

	if len(result.Outcomes) == 0 {
		InfoColor.Fprintln(p.w, "No files were patched.")
		return
	}

	if result.Succeeded > 0 {
		SuccessColor.Fprintf(p.w, "Patched %d %s (%s written):\n",
			result.Succeeded, plural(result.Succeeded, "file", "files"),
			humanize.Bytes(uint64(result.BytesWritten())))
		for _, outcome := range result.Outcomes {
			if outcome.Succeeded() {
				fmt.Fprintf(p.w, "  - %s (%d %s, %s -> %s)\n",
					p.relative(outcome.Path), outcome.Edits, plural(outcome.Edits, "edit", "edits"),
					humanize.Bytes(uint64(outcome.BytesBefore)), humanize.Bytes(uint64(outcome.BytesAfter)))
			}
		}
	}
	if result.Failed > 0 {
		ErrorColor.Fprintf(p.w, "Failed to patch %d %s:\n", result.Failed, plural(result.Failed, "file", "files"))
		for _, outcome := range result.Outcomes {
			if !outcome.Succeeded() {
				fmt.Fprintf(p.w, "  - %s: %v\n", p.relative(outcome.Path), outcome.Err)
			}
		}
	}
}

// Runs lists recorded patch runs, newest first.
func (p *Printer) Runs(runs []store.PatchRun) {
	if len(runs) == 0 {
		InfoColor.Fprintln(p.w, "No patch runs recorded.")
		return
	}
	for _, run := range runs {
		status := SuccessColor.Sprint(run.Status)
		if run.Failed > 0 {
			status = ErrorColor.Sprint(run.Status)
		}
		fmt.Fprintf(p.w, "%s  %-9s  %d/%d files  %s  %s\n",
			run.RunID, status, run.Succeeded, run.NumFiles,
			humanize.Time(run.StartedAt), run.ProjectPath)
	}
}

// EngineStatus prints the result of an engine presence check.
func (p *Printer) EngineStatus(binary string, installed bool, version string) {
	if !installed {
		ErrorColor.Fprintf(p.w, "%s is not installed or not on PATH\n", binary)
		return
	}
	SuccessColor.Fprintf(p.w, "%s is installed: %s\n", binary, version)
}

// Error prints err in the error color.
func (p *Printer) Error(err error) {
	ErrorColor.Fprintf(p.w, "Error: %v\n", err)
}

func lineNumber(n *uint32) string {
	if n == nil {
		return ""
	}
	return fmt.Sprint(*n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
