package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Header is the banner above a status view: device name, profile and
// endpoint, then optional parameters.
type Header struct {
	Title    string   // e.g., "bathroom"
	Subtitle string   // e.g., "heating · wss://bridge.local/hysen"
	Params   []Detail // e.g., Clock, Session
	Width    int
}

// NewHeader creates a new header with the given values
func NewHeader(title, subtitle string, params ...Detail) *Header {
	return &Header{
		Title:    title,
		Subtitle: subtitle,
		Params:   params,
		Width:    GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (h *Header) SetWidth(width int) *Header {
	h.Width = width
	return h
}

// Render returns the styled header as a string
func (h *Header) Render() string {
	width := clampWidth(h.Width)

	top := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(h.Title)),
		HeaderCommandStyle.Render(h.Subtitle),
	)

	content := top
	if len(h.Params) > 0 {
		dividerWidth := width - 6 // Account for border and padding
		var params []string
		for _, p := range h.Params {
			params = append(params, HeaderParamKeyStyle.Render(p.Key+":")+" "+HeaderParamValueStyle.Render(p.Value))
		}
		content = lipgloss.JoinVertical(lipgloss.Left,
			top,
			RenderHorizontalDivider(dividerWidth, "─"),
			strings.Join(params, "\n"),
		)
	}

	return HeaderBorderStyle(width).Render(content)
}

// String implements fmt.Stringer
func (h *Header) String() string {
	return h.Render()
}
