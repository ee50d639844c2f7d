package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true)
	speakerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	dialogStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5B8DEF")).
			Padding(0, 1)
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
)

// Render draws the frame's widgets in the order they were issued.
func (o *Overlay) Render(width int) string {
	if len(o.widgets) == 0 {
		return ""
	}
	inner := max(20, width-4)
	blocks := make([]string, 0, len(o.widgets))
	for _, w := range o.widgets {
		switch w.Kind {
		case WidgetCaption:
			blocks = append(blocks, captionStyle.Width(inner).Render(w.Text))
		case WidgetDialog:
			body := w.Text
			if w.Speaker != "" {
				body = speakerStyle.Render(w.Speaker) + "\n" + w.Text
			}
			blocks = append(blocks, dialogStyle.Width(inner).Render(body))
		case WidgetButton:
			blocks = append(blocks, buttonStyle.Render("▸ "+w.Text+" [enter]"))
		}
	}
	return strings.Join(blocks, "\n")
}
