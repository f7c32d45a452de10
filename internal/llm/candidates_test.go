package llm

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestParseCandidateList(t *testing.T) {
	specs, err := ParseCandidateList(" gemini:gemini-1.5-flash@v1, gemini-2.0-flash-exp , openai:gpt-4o-mini ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []CandidateSpec{
		{Provider: "gemini", Model: "gemini-1.5-flash", APIVersion: "v1"},
		{Provider: "gemini", Model: "gemini-2.0-flash-exp"},
		{Provider: "openai", Model: "gpt-4o-mini"},
	}
	if !reflect.DeepEqual(specs, want) {
		t.Fatalf("expected %+v, got %+v", want, specs)
	}
}

func TestParseCandidateListRejectsUnknownProvider(t *testing.T) {
	if _, err := ParseCandidateList("claude:x"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if _, err := ParseCandidateList("gemini:@v1"); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestLoadCandidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.yaml")
	data := []byte(`candidates:
  - provider: gemini
    model: gemini-1.5-flash
    apiVersion: v1
  - model: gemini-1.5-flash-8b
  - provider: OpenAI
    model: gpt-4o-mini
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	specs, err := LoadCandidateFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("expected 3 specs, got %d", len(specs))
	}
	if specs[1].Provider != ProviderGemini || specs[2].Provider != ProviderOpenAI {
		t.Fatalf("unexpected providers %+v", specs)
	}
}

func TestResolveCandidates(t *testing.T) {
	specs, err := ResolveCandidates("", "", "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(specs, DefaultGeminiCandidates) {
		t.Fatalf("expected defaults, got %+v", specs)
	}

	specs, err = ResolveCandidates("", "", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if last := specs[len(specs)-1]; last.Provider != ProviderOpenAI || last.Model != "gpt-4o-mini" {
		t.Fatalf("expected openai appended, got %+v", last)
	}

	specs, err = ResolveCandidates("openai:gpt-4.1", "", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(specs) != 1 || specs[0].Model != "gpt-4.1" {
		t.Fatalf("expected configured openai entry only, got %+v", specs)
	}
}
