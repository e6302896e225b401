package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height lines,
// so stacked sections never reflow each other.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		// Bound the width computation on pathological lines.
		if width > 0 && len(ln) > 8192 {
			ln = xansi.Cut(ln, 0, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

const (
	modalMaxWidth = 72
	modalPadX     = 2
)

// modalBoxWidth is the outer width of a modal for a terminal of width w.
func modalBoxWidth(w int) int {
	bw := w - 8
	if bw > modalMaxWidth {
		bw = modalMaxWidth
	}
	if bw < 30 {
		bw = 30
	}
	return bw
}

// modalBodyWidth is the usable text width inside a modal.
func modalBodyWidth(w int) int {
	return modalBoxWidth(w) - 2*modalPadX - 2
}

func renderModalBox(width int, title, content string) string {
	bw := modalBoxWidth(width)
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(colorSurfaceFg).
		Background(colorControlBg).
		Width(bw-2).
		Padding(0, modalPadX).
		Render(title)
	body := lipgloss.NewStyle().
		Foreground(colorSurfaceFg).
		Width(bw-2).
		Padding(1, modalPadX).
		Render(content)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

// overlayCenter places fg in the middle of a width x height canvas.
func overlayCenter(width, height int, fg string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, fg)
}
