// Copyright (C) 2025 Code Whisperer Authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the whisper CLI.
package ux

import (
	"github.com/charmbracelet/lipgloss"
)

// Whisper color palette - muted violets and parchment
var (
	ColorVioletBright = lipgloss.Color("#B794F6") // Highlights, titles
	ColorViolet       = lipgloss.Color("#9F7AEA") // Primary brand color
	ColorVioletDeep   = lipgloss.Color("#6B46C1") // Borders, accents
	ColorParchment    = lipgloss.Color("#E8E3D8") // Body text on dark terminals
	ColorSlate        = lipgloss.Color("#5A6678") // Muted text, borders

	// Semantic colors
	ColorSuccess = lipgloss.Color("#48BB78")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles
var Styles = struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Bold       lipgloss.Style
	Muted      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	Error      lipgloss.Style
	Confidence lipgloss.Style

	Box        lipgloss.Style
	WarningBox lipgloss.Style
	ErrorBox   lipgloss.Style
}{
	Title:      lipgloss.NewStyle().Bold(true).Foreground(ColorVioletBright),
	Subtitle:   lipgloss.NewStyle().Foreground(ColorViolet),
	Bold:       lipgloss.NewStyle().Bold(true),
	Muted:      lipgloss.NewStyle().Foreground(ColorSlate),
	Success:    lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:    lipgloss.NewStyle().Foreground(ColorWarning),
	Error:      lipgloss.NewStyle().Foreground(ColorError),
	Confidence: lipgloss.NewStyle().Foreground(ColorSlate).Italic(true),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorVioletDeep).
		Padding(0, 1),
	WarningBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorWarning).
		Padding(0, 1),
	ErrorBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Padding(0, 1),
}

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconPending Icon = "○"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with appropriate styling
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	case IconPending:
		return Styles.Muted.Render(string(i))
	default:
		return string(i)
	}
}
