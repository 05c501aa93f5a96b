// Package ui holds the terminal styles drillctl renders with.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/resource"
	"github.com/servak90-glitch/servak90-glitch.github.io-sub001/internal/domain/thermal"
)

const (
	IconDrill = "⛏️"
	IconHeat  = "🔥"
	IconCool  = "❄️"
	IconHull  = "🛡️"
	IconCraft = "🔧"
	IconDrone = "🛸"
	IconCity  = "🏙️"
	IconInfo  = "ℹ️"
	IconWarn  = "⚠️"
	IconError = "🧨"
	IconBox   = "📦"
	IconLog   = "📜"
)

var (
	cPrimary = lipgloss.Color("63")  // blue
	cAccent  = lipgloss.Color("208") // molten orange
	cGood    = lipgloss.Color("42")  // green
	cWarn    = lipgloss.Color("214") // amber
	cBad     = lipgloss.Color("196") // red
	cMuted   = lipgloss.Color("244") // gray
	cGold    = lipgloss.Color("220") // gold
)

var (
	Title = lipgloss.NewStyle().Bold(true).Foreground(cAccent)
	H2    = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Muted = lipgloss.NewStyle().Foreground(cMuted)
	Key   = lipgloss.NewStyle().Bold(true).Foreground(cPrimary)
	Good  = lipgloss.NewStyle().Bold(true).Foreground(cGood)
	Warn  = lipgloss.NewStyle().Bold(true).Foreground(cWarn)
	Bad   = lipgloss.NewStyle().Bold(true).Foreground(cBad)
	Gold  = lipgloss.NewStyle().Bold(true).Foreground(cGold)

	Panel = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(cMuted).Padding(0, 1)
)

func Heading(icon string, title string) string {
	icon = strings.TrimSpace(icon)
	if icon != "" {
		icon += " "
	}
	return Title.Render(icon + title)
}

func LabelValue(label string, value any) string {
	return fmt.Sprintf("%s %v", Key.Render(label+":"), value)
}

// HeatBar renders heat as a 20-cell gauge colored by phase.
func HeatBar(heat float64, phase thermal.Phase) string {
	filled := int(heat / 5)
	if filled > 20 {
		filled = 20
	}
	if filled < 0 {
		filled = 0
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", 20-filled)
	style := Good
	switch {
	case phase == thermal.PhaseOverheated:
		style = Bad
	case heat >= 75:
		style = Warn
	}
	return style.Render(bar) + " " + Muted.Render(fmt.Sprintf("%.1f%%", heat))
}

// Integrity colors hull integrity by how close it is to a breach.
func Integrity(v float64) string {
	s := fmt.Sprintf("%.1f / 100", v)
	switch {
	case v <= 25:
		return Bad.Render(s)
	case v <= 60:
		return Warn.Render(s)
	}
	return Good.Render(s)
}

// Amount formats a resource quantity with thousands separators.
func Amount(v float64) string {
	return humanize.CommafWithDigits(v, 1)
}

// Bundle renders a wallet as "clay 1,200 · copper 35", sorted by name.
func Bundle(b resource.Bundle) string {
	if b.IsZero() {
		return Muted.Render("empty")
	}
	keys := make([]string, 0, len(b))
	for k, v := range b {
		if v > 0 {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k, Amount(b[resource.Kind(k)])))
	}
	return strings.Join(parts, " · ")
}

// Impact colors a recap impact tag.
func Impact(impact string) string {
	switch impact {
	case "POSITIVE":
		return Good.Render("+")
	case "NEGATIVE":
		return Bad.Render("!")
	}
	return Muted.Render("·")
}
