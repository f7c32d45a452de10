package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newTestFactory(t *testing.T, handler http.HandlerFunc) *Factory {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	f, err := NewFactory("test-key", WithBaseURL(srv.URL+"/"), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new factory: %v", err)
	}
	return f
}

func TestCompleteSendsDeterministicConfig(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("expected api key header")
		}
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"atsScore\": 71}"}]}}]}`)
	})

	cand, err := f.Candidate(context.Background(), "gemini-1.5-flash", "v1")
	if err != nil {
		t.Fatalf("candidate: %v", err)
	}
	if cand.Name() != "gemini:gemini-1.5-flash@v1" {
		t.Fatalf("unexpected name %q", cand.Name())
	}

	text, err := cand.Complete(context.Background(), "score this")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != `{"atsScore": 71}` {
		t.Fatalf("unexpected text %q", text)
	}
	if !strings.HasPrefix(gotPath, "/v1/") || !strings.HasSuffix(gotPath, "gemini-1.5-flash:generateContent") {
		t.Fatalf("unexpected path %q", gotPath)
	}
	cfg, _ := gotBody["generationConfig"].(map[string]any)
	if cfg == nil {
		t.Fatalf("expected generationConfig in request, got %v", gotBody)
	}
	if cfg["temperature"] != float64(0) {
		t.Fatalf("expected temperature 0, got %v", cfg["temperature"])
	}
	if cfg["topK"] != float64(1) {
		t.Fatalf("expected topK 1, got %v", cfg["topK"])
	}
}

func TestCompleteReturnsErrorOnHTTPFailure(t *testing.T) {
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`)
	})
	cand, err := f.Candidate(context.Background(), "gemini-missing", "")
	if err != nil {
		t.Fatalf("candidate: %v", err)
	}
	if _, err := cand.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error")
	}
}

func TestCompleteRejectsEmptyText(t *testing.T) {
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`)
	})
	cand, _ := f.Candidate(context.Background(), "gemini-1.5-flash", "v1")
	if _, err := cand.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error for blank reply")
	}
}

func TestFactorySharesClientPerVersion(t *testing.T) {
	var calls atomic.Int32
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	a, err := f.Client(context.Background(), "v1")
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	b, _ := f.Client(context.Background(), "")
	c, _ := f.Client(context.Background(), "v1beta")
	if a != b {
		t.Fatal("expected v1 client to be reused")
	}
	if a == c {
		t.Fatal("expected separate client for v1beta")
	}
}

func TestNewFactoryRequiresKey(t *testing.T) {
	if _, err := NewFactory(" "); err == nil {
		t.Fatal("expected error without key")
	}
}

func TestListModels(t *testing.T) {
	f := newTestFactory(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"models":[
			{"name":"models/gemini-1.5-flash","displayName":"Gemini 1.5 Flash","supportedGenerationMethods":["generateContent","countTokens"]},
			{"name":"models/text-embedding-004","supportedGenerationMethods":["embedContent"]}
		]}`)
	})

	models, err := f.ListModels(context.Background(), "v1beta")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].Name != "gemini-1.5-flash" || !models[0].SupportsGenerate() {
		t.Fatalf("unexpected first model %+v", models[0])
	}
	if models[1].SupportsGenerate() {
		t.Fatalf("embedding model should not support generateContent")
	}
}
