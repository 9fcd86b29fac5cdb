package colors

import "github.com/charmbracelet/lipgloss"

// Nord color palette
var (
	// Polar night (backgrounds)
	Night0 = lipgloss.Color("#2e3440") // Default background
	Night1 = lipgloss.Color("#3b4252") // Elevated surfaces
	Night2 = lipgloss.Color("#434c5e") // Selection background
	Night3 = lipgloss.Color("#4c566a") // Comments, disabled

	// Snow storm (foregrounds)
	Snow0 = lipgloss.Color("#d8dee9") // Subtle text
	Snow1 = lipgloss.Color("#e5e9f0") // Default text
	Snow2 = lipgloss.Color("#eceff4") // Bright text

	// Frost (primary accents)
	Frost0 = lipgloss.Color("#8fbcbb") // Calm teal
	Frost1 = lipgloss.Color("#88c0d0") // Primary accent
	Frost2 = lipgloss.Color("#81a1c1") // Secondary accent
	Frost3 = lipgloss.Color("#5e81ac") // Tertiary accent

	// Aurora (semantic accents)
	Red    = lipgloss.Color("#bf616a") // Errors
	Orange = lipgloss.Color("#d08770") // Warnings, TX
	Yellow = lipgloss.Color("#ebcb8b") // Pending states
	Green  = lipgloss.Color("#a3be8c") // Success, connected
	Purple = lipgloss.Color("#b48ead") // Titles
)
