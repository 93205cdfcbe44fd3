package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, selection, accent, danger lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#E6EDF3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#656D76", Dark: "#8B949E"},
	border:    lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#30363D"},
	selection: lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#1F6FEB"},
	accent:    lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#58A6FF"},
	danger:    lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#F85149"},
}

type styles struct {
	app, topBar                      lipgloss.Style
	panel, columnTitle               lipgloss.Style
	header, cell, selected           lipgloss.Style
	footer, footerCount, footerClear lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	errorBanner                      lipgloss.Style
	listItem, listSel                lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	return styles{
		app:         base,
		topBar:      base.Copy().Bold(true).Padding(0, 1),
		panel:       base.Copy().BorderStyle(lipgloss.NormalBorder()).BorderForeground(palette.border),
		columnTitle: base.Copy().Bold(true).Padding(0, 1),
		header:      base.Copy().Bold(true).Foreground(palette.textMuted).Padding(0, 1),
		cell:        base.Copy().Padding(0, 1),
		selected:    base.Copy().Foreground(palette.text).Background(palette.selection).Padding(0, 1),
		footer:      base.Copy().Padding(0, 1).Foreground(palette.textMuted),
		footerCount: base.Copy().Bold(true),
		footerClear: base.Copy().Foreground(palette.accent),
		statusBar:   base.Copy().Padding(0, 1),
		statusSeg:   base.Copy().Padding(0, 1).MarginRight(1),
		statusHint:  base.Copy().Foreground(palette.textMuted),
		errorBanner: base.Copy().Bold(true).Foreground(palette.danger).Padding(0, 1),
		listItem:    base.Copy().Padding(0, 1),
		listSel:     base.Copy().Padding(0, 1).Bold(true).Foreground(palette.accent),
		cmdOverlay:  base.Copy().Border(lipgloss.RoundedBorder()).BorderForeground(palette.border).Padding(1, 2),
		cmdPrompt:   base.Copy().Bold(true),
		cmdHint:     base.Copy().Faint(true),
	}
}
