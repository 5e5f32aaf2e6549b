package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/segheap/heap/alloc"
	"github.com/joshuapare/segheap/internal/format"
)

const (
	allocCell = "█"
	freeCell  = "░"

	// maxMapLines bounds the map height; the cell unit grows to fit.
	maxMapLines = 16
)

var (
	// Color palette
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#04B575")
	mutedColor   = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#383838")
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor).Padding(0, 1)
	paneStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderColor).Padding(0, 1)
	allocStyle  = lipgloss.NewStyle().Foreground(successColor)
	freeStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	legendStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
)

// mapUnit picks the bytes per cell so total bytes fit in width*maxMapLines cells.
func mapUnit(total uint64, width int) uint64 {
	unit := uint64(format.MinBlockSize)
	for total/unit > uint64(width*maxMapLines) {
		unit *= 2
	}
	return unit
}

// renderHeapMap draws blocks as rows of cells, one cell per unit bytes and at
// least one per block.
func renderHeapMap(blocks []alloc.BlockInfo, width int, plain bool) string {
	width = max(width, 8)
	render := func(s lipgloss.Style, text string) string {
		if plain {
			return text
		}
		return s.Render(text)
	}

	var total uint64
	for _, b := range blocks {
		total += b.Size
	}
	unit := mapUnit(total, width)

	var (
		lines []string
		line  strings.Builder
		n     int
	)
	flush := func() {
		lines = append(lines, line.String())
		line.Reset()
		n = 0
	}
	for _, b := range blocks {
		cell, style := freeCell, freeStyle
		if b.Alloc {
			cell, style = allocCell, allocStyle
		}
		cells := max(1, int(b.Size/unit))
		for cells > 0 {
			take := min(cells, width-n)
			line.WriteString(render(style, strings.Repeat(cell, take)))
			n += take
			cells -= take
			if n == width {
				flush()
			}
		}
	}
	if n > 0 || len(lines) == 0 {
		flush()
	}

	legend := fmt.Sprintf("%s allocated  %s free  1 cell = %d bytes, %d blocks",
		allocCell, freeCell, unit, len(blocks))
	body := strings.Join(lines, "\n") + "\n" + render(legendStyle, legend)
	if plain {
		return "Heap map\n" + body
	}
	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Heap map"), paneStyle.Render(body))
}
