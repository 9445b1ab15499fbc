package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tacogips/dcg/internal/config"
)

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	return New(Options{Config: cfg, LogOutput: &logs}), &logs
}

func post(t *testing.T, s *Server, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, logs := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if !strings.Contains(logs.String(), "path=/health") || !strings.Contains(logs.String(), "status=200") {
		t.Errorf("expected request log, got %q", logs.String())
	}
}

func TestGenerate(t *testing.T) {
	s, _ := newTestServer(t, nil)

	body := `{"template": "@param title: string\n<h1>@(title)</h1>\n@output toc\nx\n@end_output\n", "package_name": "pages"}`
	rec := post(t, s, "/api/generate", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.Contains(resp.Source, "package pages") || !strings.Contains(resp.Source, "func Generate(") {
		t.Errorf("unexpected source:\n%s", resp.Source)
	}
	if len(resp.Parameters) != 1 || resp.Parameters[0] != (parameterJSON{Name: "title", Type: "string"}) {
		t.Errorf("unexpected parameters %+v", resp.Parameters)
	}
	if len(resp.OutputKeys) != 1 || resp.OutputKeys[0] != "toc" {
		t.Errorf("unexpected output keys %v", resp.OutputKeys)
	}
	if resp.Sections == nil || resp.Imports == nil || resp.References == nil {
		t.Error("empty lists should encode as arrays")
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"template":`, http.StatusBadRequest},
		{"empty template", `{"template": ""}`, http.StatusBadRequest},
		{"parse error", `{"template": "@code\nx := 1\n", "name": "page.dcg"}`, http.StatusUnprocessableEntity},
		{"bad package name", `{"template": "x", "package_name": "a-b"}`, http.StatusUnprocessableEntity},
	}

	s, _ := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/generate", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp map[string]any
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] == nil {
				t.Errorf("expected error field, got %v", resp)
			}
		})
	}

	t.Run("diagnostics", func(t *testing.T) {
		rec := post(t, s, "/api/generate", `{"template": "ok\n@section A\nx\n", "name": "page.dcg"}`)
		var resp struct {
			Diagnostics []diagnosticJSON `json:"diagnostics"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Diagnostics) != 1 || resp.Diagnostics[0].Line != 2 || resp.Diagnostics[0].File != "page.dcg" {
			t.Errorf("unexpected diagnostics %+v", resp.Diagnostics)
		}
	})
}

func TestGenerate_BodyLimit(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.MaxBodyBytes = 16
	s, _ := newTestServer(t, cfg)

	rec := post(t, s, "/api/generate", `{"template": "`+strings.Repeat("x", 64)+`"}`)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", rec.Code)
	}
}

func TestCheck(t *testing.T) {
	s, _ := newTestServer(t, nil)

	tests := []struct {
		name  string
		body  string
		ok    bool
		stage string
	}{
		{"valid", `{"template": "@(1)\n"}`, true, ""},
		{"compile problems are not reported", `{"template": "@(missing)\n"}`, true, ""},
		{"unexpected closer", `{"template": "@end_code\n"}`, false, "parse"},
		{"reserved parameter", `{"template": "@param dcgX: int\n"}`, false, "generate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, s, "/api/check", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var resp checkResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.OK != tt.ok {
				t.Errorf("expected ok=%v, got %+v", tt.ok, resp)
			}
			if tt.stage != "" && (len(resp.Diagnostics) == 0 || resp.Diagnostics[0].Stage != tt.stage) {
				t.Errorf("expected %s diagnostic, got %+v", tt.stage, resp.Diagnostics)
			}
		})
	}
}

func TestRoutes(t *testing.T) {
	s, _ := newTestServer(t, nil)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/generate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/render", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		format   string
		expected string
	}{
		{"info", "json", `"msg":"hello"`},
		{"debug", "text", "msg=hello"},
		{"bogus", "text", "msg=hello"},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			newLogger(tt.level, tt.format, &buf).Info("hello")
			if !strings.Contains(buf.String(), tt.expected) {
				t.Errorf("expected %q in %q", tt.expected, buf.String())
			}
		})
	}

	var buf bytes.Buffer
	newLogger("error", "text", &buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered at error level, got %q", buf.String())
	}
}

func TestListenAndServe(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.Addr = "127.0.0.1:0"
	s := New(Options{Config: cfg, LogOutput: io.Discard})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
