package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/handleui/compute-risk/internal/risk"
)

// Semantic colors, shared with the CLI's other human-facing output.
const (
	ColorBrand  = "42"  // Green - success states
	ColorMuted  = "240" // Dark gray - labels, hints
	ColorAccent = "45"  // Cyan - computed values
)

// styles binds the palette to a renderer so color support is detected for
// the actual destination writer rather than os.Stdout.
type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	accent  lipgloss.Style
	success lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color(ColorMuted)),
		accent:  r.NewStyle().Foreground(lipgloss.Color(ColorAccent)),
		success: r.NewStyle().Foreground(lipgloss.Color(ColorBrand)),
	}
}

// FormatExplain writes a human-readable breakdown of each computed phase:
// the factor values read from the artifact, their product and the option
// the risk field will be bound to.
func FormatExplain(w io.Writer, results []risk.Result) {
	s := newStyles(w)

	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintln(w, s.heading.Render(r.Phase.Name))

		width := labelWidth(r.Phase)
		factors := []struct {
			label string
			value int64
		}{
			{r.Phase.Severity, r.Factors.Severity},
			{r.Phase.Probability, r.Factors.Probability},
			{r.Phase.Detectability, r.Factors.Detectability},
		}
		for _, f := range factors {
			_, _ = fmt.Fprintf(w, "  %s  %s\n",
				s.muted.Render(fmt.Sprintf("%-*s", width, f.label)),
				s.accent.Render(strconv.FormatInt(f.value, 10)))
		}

		_, _ = fmt.Fprintf(w, "  %s %s %s\n",
			s.muted.Render("product"),
			s.muted.Render("="),
			s.accent.Render(strconv.FormatInt(r.Product, 10)))
		_, _ = fmt.Fprintf(w, "  %s %s %s %s\n",
			s.success.Render("✓"),
			fmt.Sprintf("%s (field %d)", r.Phase.Risk, r.FieldID),
			s.muted.Render("→"),
			s.accent.Render("option "+optionID(r)))
	}
}

func labelWidth(p risk.Phase) int {
	width := 0
	for _, l := range []string{p.Severity, p.Probability, p.Detectability} {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

func optionID(r risk.Result) string {
	if r.Option.ID == nil {
		return "null"
	}
	return string(r.Option.ID)
}
