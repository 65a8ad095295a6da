package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"golang.org/x/term"

	"github.com/macropower/folio/pkg/configurator"
	"github.com/macropower/folio/pkg/override"
)

// revertSampleSize is the number of file names spelled out in a revert
// description before the rest is summarized.
const revertSampleSize = 1

type styles struct {
	Title   lipgloss.Style
	Path    lipgloss.Style
	Type    lipgloss.Style
	Subtle  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
}

// newStyles returns styles for w. Styling is only applied when w is a
// terminal.
func newStyles(w io.Writer) *styles {
	r := lipgloss.NewRenderer(w)

	if f, ok := w.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: Fd fits in int.
		plain := r.NewStyle()

		return &styles{Title: plain, Path: plain, Type: plain, Subtle: plain, Success: plain, Error: plain}
	}

	return &styles{
		Title:   r.NewStyle().Bold(true),
		Path:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Type:    r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Subtle:  r.NewStyle().Foreground(lipgloss.Color("8")),
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// describeRevert returns the label of a revert action on candidates, naming
// the first files and counting the rest, e.g. "Revert file type overrides of
// a.txt and 2 more files".
func describeRevert(candidates []override.FileID) string {
	switch n := len(candidates); {
	case n == 0:
		return "Revert file type overrides"
	case n <= revertSampleSize:
		names := make([]string, 0, n)
		for _, c := range candidates {
			names = append(names, c.Name())
		}

		return fmt.Sprintf("Revert file type %s of %s",
			english.PluralWord(n, "override", ""),
			english.WordSeries(names, "and"),
		)
	default:
		names := make([]string, 0, revertSampleSize)
		for _, c := range candidates[:revertSampleSize] {
			names = append(names, c.Name())
		}

		return fmt.Sprintf("Revert file type overrides of %s and %s more %s",
			strings.Join(names, ", "),
			humanize.Comma(int64(n-revertSampleSize)),
			english.PluralWord(n-revertSampleSize, "file", ""),
		)
	}
}

// renderReport writes a dispatch report.
func renderReport(w io.Writer, s *styles, report *configurator.Report) error {
	var b strings.Builder

	if report.Module != "" {
		fmt.Fprintf(&b, "%s %s %s\n",
			s.Title.Render("module:"),
			s.Type.Render(report.Module),
			s.Subtle.Render("(from "+report.ModuleWriter+")"),
		)
	}

	for _, o := range report.Outcomes {
		status := s.Success.Render("ok")
		if o.Failed() {
			status = s.Error.Render("failed: " + o.Err.Error())
		}

		fmt.Fprintf(&b, "  %-20s %-10s %s %s\n",
			o.Descriptor.Name,
			s.Subtle.Render(o.Descriptor.Context.String()),
			status,
			s.Subtle.Render(o.Duration.Round(time.Millisecond).String()),
		)
	}

	_, err := io.WriteString(w, b.String())
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
