package visual

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"gonum.org/v1/gonum/floats"
)

const clearScreen = "\x1b[2J\x1b[H"

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 2).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Width(22)

	trainStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#60A5FA"))

	testStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9CA3AF")).
			Italic(true)
)

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// TerminalSurface prints a text dashboard of the snapshot. It cannot show
// the image planes, so it reports their value ranges instead.
type TerminalSurface struct {
	out   io.Writer
	width int
	now   func() time.Time
}

func NewTerminalSurface(out io.Writer, width int) *TerminalSurface {
	if width < 40 {
		width = 80
	}
	return &TerminalSurface{out: out, width: width, now: time.Now}
}

func (s *TerminalSurface) Draw(snap *Snapshot) error {
	_, err := fmt.Fprint(s.out, clearScreen+s.Render(snap)+"\n")
	return err
}

func (s *TerminalSurface) Close() error { return nil }

// Render returns the dashboard without the clear-screen prefix.
func (s *TerminalSurface) Render(snap *Snapshot) string {
	header := headerStyle.Width(s.width).Render(fmt.Sprintf("ZNN training · iteration %d", snap.Iter))

	row := func(label, value string) string {
		return ansi.Truncate(labelStyle.Render(label)+value, s.width, "…")
	}
	sparkWidth := s.width - 22

	lines := []string{
		header,
		row("elapsed", s.elapsed(snap).String()),
		row("learning rate", fmt.Sprintf("%.6g", snap.Eta)),
		row("train cost", trainStyle.Render(fmt.Sprintf("%.6g", snap.Cost))),
		row("train cls error", trainStyle.Render(fmt.Sprintf("%.6g", snap.ClsErr))),
	}
	if _, cost, cls, ok := snap.Test.Last(); ok {
		lines = append(lines,
			row("test cost", testStyle.Render(fmt.Sprintf("%.6g", cost))),
			row("test cls error", testStyle.Render(fmt.Sprintf("%.6g", cls))),
		)
	}
	lines = append(lines,
		"",
		row("train cost curve", trainStyle.Render(sparkline(snap.Train.Costs, sparkWidth))),
		row("test cost curve", testStyle.Render(sparkline(snap.Test.Costs, sparkWidth))),
		row("train cls curve", trainStyle.Render(sparkline(snap.Train.ClsErrs, sparkWidth))),
		row("test cls curve", testStyle.Render(sparkline(snap.Test.ClsErrs, sparkWidth))),
		"",
	)
	for _, p := range snap.panels() {
		lines = append(lines, row(p.title+" range", valueRange(p.vol.Plane().Data)))
	}
	lines = append(lines, "", helpStyle.Render("refreshes every show period"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (s *TerminalSurface) elapsed(snap *Snapshot) time.Duration {
	if snap.Start.IsZero() {
		return 0
	}
	return s.now().Sub(snap.Start).Truncate(time.Second)
}

// sparkline draws the last width finite values, scaled to their own range.
func sparkline(vals []float64, width int) string {
	vals = finiteValues(vals)
	if len(vals) == 0 || width <= 0 {
		return "-"
	}
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}

	lo, hi := floats.Min(vals), floats.Max(vals)
	top := len(sparkBlocks) - 1
	var b strings.Builder
	for _, v := range vals {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

func valueRange(vals []float64) string {
	vals = finiteValues(vals)
	if len(vals) == 0 {
		return "-"
	}
	return fmt.Sprintf("[%.4g, %.4g]", unsignedZero(floats.Min(vals)), unsignedZero(floats.Max(vals)))
}

// unsignedZero maps -0 to 0 so it does not print as "-0".
func unsignedZero(v float64) float64 {
	if v == 0 {
		return math.Abs(v)
	}
	return v
}
