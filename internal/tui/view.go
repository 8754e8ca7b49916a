package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}
	if m.fullscreen {
		return m.pane.View()
	}
	return strings.Join([]string{m.headerView(), m.pane.View(), m.footerView()}, "\n")
}

// headerView renders the title, topic and breadcrumb.
func (m model) headerView() string {
	title := styles.Title.Render("mindmap")
	used := runewidth.StringWidth("mindmap")

	topic := m.pane.Topic()
	if topic != "" {
		t := fitCells(topic, max(1, (m.width-used)/2))
		title += " " + styles.Topic.Render(t)
		used += 1 + runewidth.StringWidth(t)
	}

	view := m.session.Snapshot()
	if warnings := m.session.Warnings(); len(warnings) > 0 {
		badge := fmt.Sprintf(" ⚠ %d", len(warnings))
		title += styles.Badge.Render(badge)
		used += runewidth.StringWidth(badge)
	}
	if len(view.Path) > 1 && m.width-used > 6 {
		title += styles.Breadcrumb.Render("  " + breadcrumb(view, m.width-used-2))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(title)
}

// footerView renders the last event and key help.
func (m model) footerView() string {
	if m.help.ShowAll {
		return m.help.View(m.keys)
	}
	hints := m.help.View(m.keys)
	if m.lastEvent == "" {
		return hints
	}
	room := m.width - lipgloss.Width(hints) - 3
	if room < 10 {
		return hints
	}
	return styles.Footer.Render(fitCells(m.lastEvent, room)) + " · " + hints
}

// footerHeight returns the number of rows the footer uses.
func (m model) footerHeight() int {
	return lipgloss.Height(m.footerView())
}

// renderTooSmall renders a message when the terminal is below the minimum size.
func (m model) renderTooSmall() string {
	msg := fmt.Sprintf("Terminal too small (%dx%d, need %dx%d)",
		m.width, m.height, minWidth, minHeight)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}
