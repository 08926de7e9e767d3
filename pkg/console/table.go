package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableTitleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// TableConfig describes a table to render.
type TableConfig struct {
	Title     string
	Headers   []string
	Rows      [][]string
	ShowTotal bool
	TotalRow  []string
}

// RenderTable renders config with rounded borders. An empty config renders
// as the empty string.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 && len(config.Rows) == 0 {
		return ""
	}

	rows := config.Rows
	if config.ShowTotal && len(config.TotalRow) > 0 {
		rows = append(append([][]string{}, rows...), config.TotalRow)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(config.Headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})

	var sb strings.Builder
	if config.Title != "" {
		sb.WriteString(applyStyle(tableTitleStyle, config.Title))
		sb.WriteString("\n")
	}
	sb.WriteString(t.String())
	sb.WriteString("\n")
	return sb.String()
}
