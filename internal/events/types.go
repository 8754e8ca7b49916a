// Package events defines the mind-map session event taxonomy and the
// per-session router that delivers them to the renderer and log sinks.
package events

import "time"

// EventType identifies the category and nature of an event.
type EventType string

const (
	// Data lifecycle
	EventGraphLoaded EventType = "graph.loaded"
	EventGraphEmpty  EventType = "graph.empty"

	// Expansion and layout
	EventPathChanged    EventType = "path.changed"
	EventLayoutComputed EventType = "layout.computed"

	// Viewport
	EventFitRequested      EventType = "fit.requested"
	EventFullscreenChanged EventType = "fullscreen.changed"

	// Export
	EventExportCompleted EventType = "export.completed"
	EventExportFailed    EventType = "export.failed"
)

// Event is the base interface for all session events.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	SessionID() string
}

// BaseEvent provides the common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Time      time.Time `json:"timestamp"`
	Session   string    `json:"session"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// SessionID returns the id of the mind-map session that emitted the event.
func (e BaseEvent) SessionID() string {
	return e.Session
}

// NewEvent creates a BaseEvent for the given session.
func NewEvent(eventType EventType, session string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Session:   session,
	}
}

// GraphLoadedEvent is emitted after a new graph replaces the previous one.
type GraphLoadedEvent struct {
	BaseEvent
	RootID    string   `json:"root_id"`
	Topic     string   `json:"topic,omitempty"` // Root label
	NodeCount int      `json:"node_count"`
	EdgeCount int      `json:"edge_count"`
	Degraded  bool     `json:"degraded"`
	Warnings  []string `json:"warnings,omitempty"`
}

// PathChangedEvent is emitted after a toggle mutates the expansion path.
type PathChangedEvent struct {
	BaseEvent
	NodeID  string   `json:"node_id"`
	Outcome string   `json:"outcome"` // expanded, collapsed, unreachable
	Path    []string `json:"path"`
}

// LayoutComputedEvent is emitted after the visible subgraph is laid out.
type LayoutComputedEvent struct {
	BaseEvent
	Generation int      `json:"generation"`
	Direction  string   `json:"direction"`
	Visible    int      `json:"visible"`
	Hidden     []string `json:"hidden,omitempty"`
	Cached     bool     `json:"cached"`
}

// FitRequestedEvent asks the renderer to fit the layout of the given
// generation to its viewport. Renderers drop requests for older generations.
type FitRequestedEvent struct {
	BaseEvent
	Generation int    `json:"generation"`
	Reason     string `json:"reason"` // layout, fullscreen, manual
}

// FullscreenChangedEvent is emitted when the display mode changes.
type FullscreenChangedEvent struct {
	BaseEvent
	Fullscreen bool `json:"fullscreen"`
	Fallback   bool `json:"fallback,omitempty"` // Host refused; in-pane mode used
}

// ExportCompletedEvent is emitted after a successful export.
type ExportCompletedEvent struct {
	BaseEvent
	Format string `json:"format"`
	Path   string `json:"path,omitempty"`
	Bytes  int    `json:"bytes"`
}

// ExportFailedEvent is emitted when an export fails.
type ExportFailedEvent struct {
	BaseEvent
	Format string `json:"format"`
	Error  string `json:"error"`
}
