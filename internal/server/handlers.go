package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/npratt/mindmap/internal/export"
	"github.com/npratt/mindmap/internal/mindmap"
	"github.com/npratt/mindmap/internal/source"
)

// RenderRequest describes which part of a mind-map to lay out. Toggles are
// replayed in order, as if the user clicked each node; Expand then drills
// straight down to one node.
type RenderRequest struct {
	Mindmap   json.RawMessage `json:"mindmap"`
	Topic     string          `json:"topic,omitempty"`
	Toggles   []mindmap.ID    `json:"toggles,omitempty"`
	Expand    mindmap.ID      `json:"expand,omitempty"`
	Direction string          `json:"direction,omitempty"`
}

// NodeView is a positioned visible node.
type NodeView struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	OnPath      bool    `json:"on_path"`
	Current     bool    `json:"current"`
	HasChildren bool    `json:"has_children"`
	Expanded    bool    `json:"expanded"`
}

// EdgeView is a drawable connector.
type EdgeView struct {
	ID         string       `json:"id"`
	Source     string       `json:"source"`
	Target     string       `json:"target"`
	SourceSide mindmap.Side `json:"source_side"`
	TargetSide mindmap.Side `json:"target_side"`
}

// LayoutResponse is the laid-out visible subgraph.
type LayoutResponse struct {
	Topic     string         `json:"topic,omitempty"`
	RootID    string         `json:"root_id"`
	Path      []string       `json:"path"`
	Direction string         `json:"direction"`
	Nodes     []NodeView     `json:"nodes"`
	Edges     []EdgeView     `json:"edges"`
	Hidden    []string       `json:"hidden,omitempty"`
	Bounds    mindmap.Bounds `json:"bounds"`
	Warnings  []string       `json:"warnings,omitempty"`
	Notices   []string       `json:"notices,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Service   string            `json:"service"`
	Uptime    string            `json:"uptime,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

// errorResponse mirrors the learning backend's error body.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Service:   "mindmap",
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Details: map[string]string{
			"go_version":    runtime.Version(),
			"cached_layouts": strconv.Itoa(s.adapter.CacheLen()),
		},
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	out, status, err := s.render(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, r, http.StatusOK, buildResponse(out))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, status, err := s.render(w, r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	view := out.view

	if r.URL.Query().Get("encoding") == "datauri" {
		uri, err := export.FormatDataURI(view.Subgraph, view.Layout, format, s.opts.Export)
		if err != nil {
			writeError(w, exportStatus(err), err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, uri)
		return
	}

	// Render fully before writing headers so failures still get a JSON error.
	var buf bytes.Buffer
	if _, err := export.RenderView(&buf, view, format, s.opts.Export); err != nil {
		s.logger.Error("export failed", "format", format, "error", err)
		writeError(w, exportStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if r.URL.Query().Get("download") == "true" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(out.topic, format)))
	}
	_, _ = w.Write(buf.Bytes())
}

// rendered is a laid-out request.
type rendered struct {
	view     mindmap.View
	topic    string
	warnings []string
	notices  []string
}

// render decodes the request and lays out the requested expansion. It
// returns the status code to use when err is non-nil.
func (s *Server) render(w http.ResponseWriter, r *http.Request) (*rendered, int, error) {
	if r.Method != http.MethodPost {
		return nil, http.StatusMethodNotAllowed, errors.New("method not allowed")
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return nil, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err)
	}
	defer func() { _ = r.Body.Close() }()

	var req RenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err)
	}

	var data *mindmap.Data
	topic := req.Topic
	res, err := s.decoder.Decode(req.Mindmap)
	switch {
	case errors.Is(err, source.ErrNoData):
		// No data yet renders an empty view.
	case err != nil:
		return nil, http.StatusBadRequest, err
	default:
		data = res.Data
		if topic == "" {
			topic = res.Topic
		}
	}

	dir := s.opts.Direction
	if req.Direction != "" {
		dir = mindmap.ParseDirection(req.Direction)
	}

	session := mindmap.NewSession(s.adapter,
		mindmap.WithDirection(dir),
		mindmap.WithSessionLogger(s.logger),
	)
	defer session.Close()
	session.Load(data)

	var notices []string
	for _, id := range req.Toggles {
		if res := session.Toggle(string(id)); res.Outcome == mindmap.OutcomeUnreachable {
			notices = append(notices, fmt.Sprintf("node %s is not reachable from the root; collapsed to root", id))
		}
	}
	if req.Expand != "" {
		if err := session.ExpandTo(string(req.Expand)); err != nil {
			notices = append(notices, err.Error())
		}
	}

	view := session.Snapshot()
	if topic == "" {
		if root, ok := view.Subgraph.Lookup(view.RootID); ok {
			topic = root.Label
		}
	}
	return &rendered{
		view:     view,
		topic:    topic,
		warnings: session.Warnings(),
		notices:  notices,
	}, http.StatusOK, nil
}

// buildResponse flattens a view into the JSON response.
func buildResponse(out *rendered) LayoutResponse {
	view := out.view
	resp := LayoutResponse{
		Topic:     out.topic,
		RootID:    view.RootID,
		Path:      view.Path,
		Direction: string(view.Direction),
		Nodes:     []NodeView{},
		Edges:     []EdgeView{},
		Warnings:  out.warnings,
		Notices:   out.notices,
	}
	if resp.Path == nil {
		resp.Path = []string{}
	}
	if view.Layout == nil {
		return resp
	}

	resp.Hidden = view.Layout.Hidden
	resp.Bounds = view.Layout.Bounds

	for _, id := range view.Layout.Order {
		n, ok := view.Subgraph.Lookup(id)
		if !ok {
			continue
		}
		p := view.Layout.Placements[id]
		resp.Nodes = append(resp.Nodes, NodeView{
			ID:          id,
			Label:       n.Label,
			X:           p.X,
			Y:           p.Y,
			Width:       p.Width,
			Height:      p.Height,
			OnPath:      n.OnPath,
			Current:     n.Current,
			HasChildren: n.HasChildren,
			Expanded:    n.Expanded,
		})
	}
	for _, e := range view.Layout.Edges {
		resp.Edges = append(resp.Edges, EdgeView{
			ID:         e.ID,
			Source:     e.Source,
			Target:     e.Target,
			SourceSide: view.Layout.Placements[e.Source].SourceSide,
			TargetSide: view.Layout.Placements[e.Target].TargetSide,
		})
	}
	return resp
}

func exportStatus(err error) int {
	if errors.Is(err, export.ErrNothingToExport) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if r.URL.Query().Get("pretty") == "true" {
		encoder.SetIndent("", "  ")
	}
	_ = encoder.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
