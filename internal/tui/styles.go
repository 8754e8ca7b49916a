package tui

import "github.com/charmbracelet/lipgloss"

// styles contains the chrome styles used by the TUI.
var styles = struct {
	// Header styles
	Title      lipgloss.Style
	Topic      lipgloss.Style
	Breadcrumb lipgloss.Style
	Badge      lipgloss.Style

	// Status bar styles
	Status lipgloss.Style
	Notice lipgloss.Style
	Error  lipgloss.Style

	// Footer style
	Footer lipgloss.Style

	Placeholder lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Topic: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	Breadcrumb: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Badge: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Notice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")),

	Placeholder: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),
}

// mapStyles contains styles specific to mind-map rendering.
var mapStyles = struct {
	Edge         lipgloss.Style // Connector to a preview node
	EdgePath     lipgloss.Style // Connector along the expansion path
	Node         lipgloss.Style // Preview node
	NodePath     lipgloss.Style // Expanded ancestor on the path
	NodeCurrent  lipgloss.Style // Last node of the path
	NodeSelected lipgloss.Style // Keyboard selection
}{
	Edge: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	EdgePath: lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")),

	Node: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	NodePath: lipgloss.NewStyle().
		Foreground(lipgloss.Color("63")),

	NodeCurrent: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")), // Bright green for the current node

	NodeSelected: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")). // Bright cyan for selection
		Background(lipgloss.Color("236")),
}

// classStyle maps a grid cell class to its style.
func classStyle(c cellClass) lipgloss.Style {
	switch c {
	case classEdge:
		return mapStyles.Edge
	case classEdgePath:
		return mapStyles.EdgePath
	case classNode:
		return mapStyles.Node
	case classNodePath:
		return mapStyles.NodePath
	case classNodeCurrent:
		return mapStyles.NodeCurrent
	case classNodeSelected:
		return mapStyles.NodeSelected
	default:
		return lipgloss.NewStyle()
	}
}
