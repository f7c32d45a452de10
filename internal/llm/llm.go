package llm

import (
	"context"
	"errors"
)

// ErrAllModelsExhausted matches the error returned when every candidate failed.
var ErrAllModelsExhausted = errors.New("all model candidates failed")

// Scorer scores resume text and returns the normalized analysis.
type Scorer interface {
	Score(ctx context.Context, text string) (Result, error)
}

// Candidate is one model endpoint in the fallback chain.
type Candidate interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Result is a normalized model reply.
type Result struct {
	ATSScore int              `json:"atsScore"`
	Resume   StructuredResume `json:"newResume"`
	Tips     []string         `json:"tips"`
	// Model names the candidate that produced the reply.
	Model string `json:"-"`
}

// StructuredResume is the rewritten resume. Every field is always present
// after normalization.
type StructuredResume struct {
	PersonalInfo PersonalInfo `json:"personalInfo"`
	Summary      string       `json:"summary"`
	Skills       []string     `json:"skills"`
	Experience   []Experience `json:"experience"`
	Education    []Education  `json:"education"`
	Projects     []Project    `json:"projects"`
	SectionNames SectionNames `json:"sectionNames"`
}

type PersonalInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
	Location string `json:"location,omitempty"`
}

type Experience struct {
	Role         string   `json:"role"`
	Company      string   `json:"company"`
	Duration     string   `json:"duration"`
	Location     string   `json:"location"`
	Achievements []string `json:"achievements"`
}

type Education struct {
	Degree string `json:"degree"`
	School string `json:"school"`
	Year   string `json:"year"`
}

type Project struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
	Link        string   `json:"link"`
}

// SectionNames holds the display labels for each resume section.
type SectionNames struct {
	Summary    string `json:"summary"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
	Projects   string `json:"projects"`
}
