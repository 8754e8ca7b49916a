package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/npratt/mindmap/internal/testutil"
)

func TestServeCommand_StopsWithContext(t *testing.T) {
	testutil.Workspace(t)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	stdout, _, err := runCLIContext(t, ctx, nil, "", "serve", "--addr", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("serve failed: %v", err)
	}
	if !strings.Contains(stdout, "Serving mind-maps on http://127.0.0.1:0") {
		t.Errorf("unexpected output %q", stdout)
	}
}

func TestServeCommand_InvalidDirection(t *testing.T) {
	testutil.Workspace(t)

	_, _, err := runCLI(t, nil, "", "serve", "--direction", "up")
	if err == nil || !strings.Contains(err.Error(), "layout.direction") {
		t.Errorf("expected a direction error, got %v", err)
	}
}
