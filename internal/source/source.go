// Package source loads mind-map data from files, external commands and the
// learning backend.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/npratt/mindmap/internal/mindmap"
)

var (
	// ErrNoData means the payload carried no mind-map at all.
	ErrNoData = errors.New("no mind-map data")
	// ErrInvalidData means the payload does not match the mind-map schema.
	ErrInvalidData = errors.New("invalid mind-map data")
)

// Result is a loaded mind-map and the topic it was generated for.
type Result struct {
	Topic string
	Data  *mindmap.Data
}

// Loader produces mind-map data.
type Loader interface {
	Load(ctx context.Context) (*Result, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*Result, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (*Result, error) {
	return f(ctx)
}

// envelope is the learning-content response shape that carries a mind-map
// next to the lesson material.
type envelope struct {
	Topic   string          `json:"topic"`
	Mindmap json.RawMessage `json:"mindmap"`
}

// Decoder turns raw JSON into a Result.
type Decoder struct {
	// Strict rejects payloads that fail schema validation. Otherwise schema
	// violations are logged and the graph builder absorbs them.
	Strict bool
	Logger *slog.Logger
}

// Decode accepts either a bare {"nodes": [...], "edges": [...]} graph or an
// envelope with "mindmap" and "topic" keys.
func (d Decoder) Decode(raw []byte) (*Result, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrNoData
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	res := &Result{}
	graph := raw
	if _, ok := keys["nodes"]; !ok {
		if _, ok := keys["edges"]; !ok {
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
			}
			if len(env.Mindmap) == 0 || string(env.Mindmap) == "null" {
				return nil, ErrNoData
			}
			res.Topic = env.Topic
			graph = env.Mindmap
		}
	}

	if err := validateGraph(graph); err != nil {
		if d.Strict {
			return nil, err
		}
		d.logger().Warn("mind-map data does not match schema, loading anyway", "error", err)
	}

	var data mindmap.Data
	if err := json.Unmarshal(graph, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	res.Data = &data
	return res, nil
}

func (d Decoder) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// Decode decodes raw with a lenient Decoder.
func Decode(raw []byte) (*Result, error) {
	return Decoder{}.Decode(raw)
}
