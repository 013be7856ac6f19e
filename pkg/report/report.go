// Package report renders checker findings for terminals and tooling logs.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/speakeasy-api/patmatch/checkexec"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiGreen  = "\x1b[32m"
	ansiBold   = "\x1b[1m"
)

// Printer writes human-readable reports for match analyses. Color is applied
// only when the destination is a terminal, unless overridden.
type Printer struct {
	out   io.Writer
	color bool
}

// NewPrinter creates a printer for w, auto-detecting color support.
func NewPrinter(w io.Writer) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Printer{out: w, color: color}
}

// WithColor forces color on or off.
func (p *Printer) WithColor(on bool) *Printer {
	return &Printer{out: p.out, color: on}
}

// Print renders one analysis result under a heading. Findings are laid out
// in a two-column table: severity-tagged kind, then detail. The kind column
// is aligned by display width so wide runes in shape names don't skew it.
func (p *Printer) Print(name string, res *checkexec.CheckResult) {
	if res == nil {
		return
	}
	heading := name
	if res.Exhaustive && len(res.Findings) == 0 {
		fmt.Fprintf(p.out, "%s: %s\n", heading, p.paint(ansiGreen, "ok"))
		return
	}
	fmt.Fprintf(p.out, "%s:\n", p.paint(ansiBold, heading))

	rows := make([][2]string, 0, len(res.Findings))
	width := 0
	for _, f := range res.Findings {
		label := fmt.Sprintf("%s[%s]", f.Severity(), f.Kind)
		if w := runewidth.StringWidth(label); w > width {
			width = w
		}
		rows = append(rows, [2]string{label, detail(f)})
	}
	for i, f := range res.Findings {
		label := runewidth.FillRight(rows[i][0], width)
		color := ansiYellow
		if f.Severity() == checkexec.SeverityError {
			color = ansiRed
		}
		fmt.Fprintf(p.out, "  %s  %s\n", p.paint(color, label), rows[i][1])
	}
}

// Summary renders a one-line verdict for a batch of analyses.
func (p *Printer) Summary(total, failed int) {
	if failed == 0 {
		fmt.Fprintf(p.out, "%s: %d match expression(s) analyzed\n", p.paint(ansiGreen, "ok"), total)
		return
	}
	fmt.Fprintf(p.out, "%s: %d of %d match expression(s) with errors\n",
		p.paint(ansiRed, "fail"), failed, total)
}

func (p *Printer) paint(color, s string) string {
	if !p.color {
		return s
	}
	return color + s + ansiReset
}

// detail renders the finding-specific explanation.
func detail(f checkexec.Finding) string {
	switch f.Kind {
	case checkexec.FindingNonExhaustive:
		parts := make([]string, len(f.Witnesses))
		for i, w := range f.Witnesses {
			parts[i] = "`" + w.String() + "`"
		}
		return "uncovered: " + strings.Join(parts, ", ")
	case checkexec.FindingUnreachableArm:
		return fmt.Sprintf("arm %d can never match; earlier arms already cover its values", f.ArmIndex)
	case checkexec.FindingRedundantOrAlternative:
		return fmt.Sprintf("arm %d, alternative %d is already covered", f.ArmIndex, f.AltIndex)
	case checkexec.FindingRefutablePattern:
		return fmt.Sprintf("%v", f.Err)
	default:
		if f.ArmIndex >= 0 {
			return fmt.Sprintf("arm %d: %v", f.ArmIndex, f.Err)
		}
		return fmt.Sprintf("%v", f.Err)
	}
}

// FormatFindings renders findings to a string without color, for callers
// embedding the report in larger diagnostics.
func FormatFindings(name string, res *checkexec.CheckResult) string {
	var b strings.Builder
	p := &Printer{out: &b, color: false}
	p.Print(name, res)
	return b.String()
}
