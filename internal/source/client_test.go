package source

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientFetchMindmap(t *testing.T) {
	var got LearningRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != LearningContentEndpoint {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pages": [{"title": "intro"}], "mindmap": ` + graphJSON + `}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", WithToken("secret"))
	res, err := c.FetchMindmap(context.Background(), LearningRequest{
		Topic:       "Go",
		UserProfile: map[string]any{"level": "beginner"},
	})
	if err != nil {
		t.Fatalf("FetchMindmap failed: %v", err)
	}

	if got.Topic != "Go" || got.UserProfile["level"] != "beginner" {
		t.Errorf("unexpected request body %+v", got)
	}
	if auth != "Bearer secret" {
		t.Errorf("expected bearer token, got %q", auth)
	}
	if res.Topic != "Go" {
		t.Errorf("expected topic to fall back to request, got %q", res.Topic)
	}
	if len(res.Data.Nodes) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(res.Data.Nodes))
	}
}

func TestClientAPIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"error field", http.StatusBadRequest, `{"error": "topic is required"}`, "topic is required"},
		{"no body", http.StatusInternalServerError, ``, "POST /generate-learning-content failed with status 500"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "POST /generate-learning-content failed with status 502"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).FetchMindmap(context.Background(), LearningRequest{Topic: "Go"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %v", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Message != tt.wantMsg {
				t.Errorf("expected message %q, got %q", tt.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestClientNoMindmap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pages": []}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Loader(LearningRequest{Topic: "Go"}).Load(context.Background())
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestClientTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, WithTimeout(20*time.Millisecond))
	_, err := c.FetchMindmap(context.Background(), LearningRequest{Topic: "Go"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
