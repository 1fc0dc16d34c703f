package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
const (
	ColorHeader    = lipgloss.Color("99")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("252")
	ColorMuted     = lipgloss.Color("241")
	ColorHighlight = lipgloss.Color("212")
	ColorAccent    = lipgloss.Color("63")
	ColorBorder    = lipgloss.Color("238")
	ColorMatch     = lipgloss.Color("214")
	ColorError     = lipgloss.Color("196")
	ColorDate      = lipgloss.Color("86")
)

// Layout constants.
const (
	defaultWidth  = 80
	defaultHeight = 24

	// borderPadding is the horizontal space taken by a rounded border.
	borderPadding = 2

	// minHeight is the smallest body height the model lays out.
	minHeight = 3
)

// Shared styles.
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorHeader).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorValue).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorLabel).
			Italic(true)

	DateStyle = lipgloss.NewStyle().
			Foreground(ColorDate).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	InfoStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StatusBarStyle = lipgloss.NewStyle().
			Foreground(ColorLabel)

	AxisStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)

	AxisDotStyle = lipgloss.NewStyle().
			Foreground(ColorAccent)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	SelectedCardStyle = CardStyle.
				BorderForeground(ColorHighlight)

	MatchCardStyle = CardStyle.
			BorderForeground(ColorMatch)

	StripLabelStyle = lipgloss.NewStyle().
			Foreground(ColorLabel)

	StripSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)

	TableHeaderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(ColorBorder).
				BorderBottom(true).
				Bold(true)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(ColorHighlight).
				Bold(true)
)
