package resumes

import (
	"context"
	"errors"
	"strings"
	"sync"

	"resume-scorer/internal/llm"
)

var resumeText = strings.Repeat("Senior Go engineer building payment APIs. ", 4)

type stubExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (s *stubExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.text, s.err
}

func (s *stubExtractor) setText(text string) {
	s.mu.Lock()
	s.text = text
	s.mu.Unlock()
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubScorer struct {
	mu    sync.Mutex
	calls int
	err   error
	// hook runs inside Score before it returns, outside the lock.
	hook func()
}

func (s *stubScorer) Score(ctx context.Context, text string) (llm.Result, error) {
	s.mu.Lock()
	s.calls++
	hook, err := s.hook, s.err
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	if err != nil {
		return llm.Result{}, err
	}
	return llm.Result{
		ATSScore: 72,
		Resume: llm.StructuredResume{
			PersonalInfo: llm.PersonalInfo{Name: "Jane Doe"},
			Summary:      "Backend engineer.",
			Skills:       []string{"Go"},
			Experience:   []llm.Experience{},
			Education:    []llm.Education{},
			Projects:     []llm.Project{},
			SectionNames: llm.DefaultSectionNames,
		},
		Tips:  []string{"Quantify impact."},
		Model: "stub:model",
	}, nil
}

func (s *stubScorer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type failingCandidate struct {
	name string
}

func (f failingCandidate) Name() string { return f.name }

func (f failingCandidate) Complete(ctx context.Context, prompt string) (string, error) {
	return "", errors.New(f.name + " unavailable")
}

func newTestService(repo Repo, ext *stubExtractor, scorer llm.Scorer) *Service {
	return &Service{
		Repo:         repo,
		Extractor:    ext,
		Scorer:       scorer,
		QuotaLimit:   10,
		MaxFileBytes: 1024,
		DedupScope:   DedupOwner,
	}
}

func pdfUpload(body string) *Upload {
	return &Upload{
		Body:        strings.NewReader(body),
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		FileName:    "cv.pdf",
	}
}
