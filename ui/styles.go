package ui

import "github.com/charmbracelet/lipgloss"

// Theme collects the lipgloss styles for every rendered element.
type Theme struct {
	AddressBar   lipgloss.Style
	AddressEdit  lipgloss.Style
	StatusBar    lipgloss.Style
	StatusError  lipgloss.Style
	PromptTitle  lipgloss.Style
	PromptLabel  lipgloss.Style
	Heading1     lipgloss.Style
	Heading2     lipgloss.Style
	Heading3     lipgloss.Style
	Link         lipgloss.Style
	LinkFocused  lipgloss.Style
	Text         lipgloss.Style
}

// DefaultTheme is a dark-terminal palette.
func DefaultTheme() Theme {
	return Theme{
		AddressBar:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		AddressEdit: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("24")).Padding(0, 1),
		StatusBar:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusError: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		PromptTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Bold(true),
		PromptLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		Heading1:    lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		Heading2:    lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true),
		Heading3:    lipgloss.NewStyle().Foreground(lipgloss.Color("225")),
		Link:        lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		LinkFocused: lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("39")).Bold(true),
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
}

// headingStyle picks the style for a heading level (1..3).
func (t Theme) headingStyle(level int) lipgloss.Style {
	switch level {
	case 1:
		return t.Heading1
	case 2:
		return t.Heading2
	default:
		return t.Heading3
	}
}
