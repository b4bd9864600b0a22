// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/jeranaias/redraft/internal/action"
	"github.com/jeranaias/redraft/internal/model"
)

// sseServer returns a test server that answers every chat completions POST
// with the given content deltas as an SSE stream.
func sseServer(t *testing.T, deltas []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, d := range deltas {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", d)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(Config{
		Name:    "test",
		Kind:    KindOpenAI,
		BaseURL: baseURL,
		APIKey:  "sk-test",
	}, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestClient_Stream(t *testing.T) {
	srv := sseServer(t, []string{"Hel", "lo, ", "world"})
	defer srv.Close()

	c := testClient(t, srv.URL)

	var snapshots []string
	text, err := c.Stream(context.Background(), "m", []model.ChatMessage{model.NewUserMessage("hi")}, action.OutputPlain, func(cumulative string) {
		snapshots = append(snapshots, cumulative)
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}

	if text != "Hello, world" {
		t.Errorf("accumulated text = %q, want %q", text, "Hello, world")
	}

	// Snapshots are cumulative, one per content delta.
	want := []string{"Hel", "Hello, ", "Hello, world"}
	if len(snapshots) != len(want) {
		t.Fatalf("snapshot count = %d, want %d (%v)", len(snapshots), len(want), snapshots)
	}
	for i := range want {
		if snapshots[i] != want[i] {
			t.Errorf("snapshot[%d] = %q, want %q", i, snapshots[i], want[i])
		}
	}
}

func TestClient_Stream_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model overloaded"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	_, err := c.Stream(context.Background(), "m", []model.ChatMessage{model.NewUserMessage("hi")}, action.OutputPlain, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error = %v, want *HTTPError", err)
	}
	if httpErr.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", httpErr.Status)
	}
	if httpErr.Body == "" {
		t.Error("Body must retain the error payload")
	}
}

func TestClient_Stream_Cancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := testClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan error, 1)
	go func() {
		_, err := c.Stream(ctx, "m", []model.ChatMessage{model.NewUserMessage("hi")}, action.OutputPlain, func(cumulative string) {
			cancel()
		})
		got <- err
	}()

	err := <-got
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestClient_ValidationBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{
			name:  "bad url",
			cfg:   Config{Kind: KindOpenAI, BaseURL: "not a url", APIKey: "k"},
			field: "base_url",
		},
		{
			name:  "missing api key",
			cfg:   Config{Kind: KindOpenAI, BaseURL: srv.URL},
			field: "api_key",
		},
		{
			name:  "missing signing key",
			cfg:   Config{Kind: KindProxy, BaseURL: srv.URL},
			field: "signing_key",
		},
		{
			name:  "unknown kind",
			cfg:   Config{Kind: "telegraph", BaseURL: srv.URL, APIKey: "k"},
			field: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg, nil)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Field != tt.field {
				t.Errorf("Field = %q, want %q", vErr.Field, tt.field)
			}
		})
	}

	if hits.Load() != 0 {
		t.Errorf("server observed %d requests, want 0", hits.Load())
	}
}

func TestClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"All fixed."}}]}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	text, err := c.Complete(context.Background(), "m", []model.ChatMessage{model.NewUserMessage("hi")}, action.OutputPlain)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "All fixed." {
		t.Errorf("text = %q, want %q", text, "All fixed.")
	}
}

func TestClient_ListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":[
			{"id":"gpt-4o-mini","display_name":"GPT-4o mini","is_default":true},
			{"id":"gpt-4o","display_name":"GPT-4o","is_premium":true}
		]}`)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels() error = %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("model count = %d, want 2", len(models))
	}
	if !models[0].Default {
		t.Error("models[0].Default = false, want true")
	}
	if !models[1].Premium {
		t.Error("models[1].Premium = false, want true")
	}
}

func TestClient_Stream_IgnoresContentlessFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		// Role-only frame, empty delta, then real content.
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
		flusher.Flush()
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)

	calls := 0
	text, err := c.Stream(context.Background(), "m", []model.ChatMessage{model.NewUserMessage("hi")}, action.OutputPlain, func(string) {
		calls++
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if text != "ok" {
		t.Errorf("text = %q, want %q", text, "ok")
	}
	if calls != 1 {
		t.Errorf("callback calls = %d, want 1", calls)
	}
}
