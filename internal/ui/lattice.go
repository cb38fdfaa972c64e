package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"signcheck/internal/qual"
)

// shortName keeps the tables narrow enough for an 80 column terminal.
func shortName(q qual.Qualifier) string {
	switch q {
	case qual.SignednessBottom:
		return "Bottom"
	case qual.SignedPositive:
		return "SP"
	case qual.BitPattern:
		return "BitPat"
	case qual.UnknownSignedness:
		return "Unknown"
	default:
		return q.String()
	}
}

type latticeStyles struct {
	header lipgloss.Style
	cell   lipgloss.Style
}

func newLatticeStyles(color bool) latticeStyles {
	base := lipgloss.NewStyle().Padding(0, 1)
	if !color {
		return latticeStyles{header: base, cell: base}
	}
	return latticeStyles{
		header: base.Bold(true).Foreground(lipgloss.Color("7")),
		cell:   base.Foreground(lipgloss.Color("6")),
	}
}

// RenderLattice draws the qualifier hierarchy level by level followed by the
// subtype and join tables.
func RenderLattice(color bool) string {
	st := newLatticeStyles(color)
	var b strings.Builder

	b.WriteString(st.header.UnsetPadding().Render("levels (bottom first)"))
	b.WriteString("\n")
	for i, level := range qual.Levels() {
		names := make([]string, len(level))
		for j, q := range level {
			names[j] = q.String()
		}
		b.WriteString("  ")
		b.WriteString(st.cell.UnsetPadding().Render(strings.Join(names, ", ")))
		if i == 0 {
			b.WriteString("  (bottom)")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(st.header.UnsetPadding().Render("row <: column"))
	b.WriteString("\n")
	b.WriteString(matrix(st, func(row, col qual.Qualifier) string {
		if qual.IsSubtype(row, col) {
			return "yes"
		}
		return "-"
	}))

	b.WriteString("\n\n")
	b.WriteString(st.header.UnsetPadding().Render("join"))
	b.WriteString("\n")
	b.WriteString(matrix(st, func(row, col qual.Qualifier) string {
		return shortName(qual.Join(row, col))
	}))
	b.WriteString("\n")
	return b.String()
}

func matrix(st latticeStyles, cell func(row, col qual.Qualifier) string) string {
	headers := []string{""}
	for _, q := range qual.All {
		headers = append(headers, shortName(q))
	}
	rows := make([][]string, 0, len(qual.All))
	for _, r := range qual.All {
		row := []string{shortName(r)}
		for _, c := range qual.All {
			row = append(row, cell(r, c))
		}
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow || col == 0 {
				return st.header
			}
			return st.cell
		})
	return t.String()
}
