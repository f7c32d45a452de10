package llm

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// CandidateSpec describes one chain entry before a client is built for it.
type CandidateSpec struct {
	Provider   string `yaml:"provider"`
	Model      string `yaml:"model"`
	APIVersion string `yaml:"apiVersion,omitempty"`
}

// String renders the spec in the LLM_CANDIDATES syntax.
func (s CandidateSpec) String() string {
	out := s.Provider + ":" + s.Model
	if s.APIVersion != "" {
		out += "@" + s.APIVersion
	}
	return out
}

// DefaultGeminiCandidates is the fallback order used when nothing is configured.
var DefaultGeminiCandidates = []CandidateSpec{
	{Provider: ProviderGemini, Model: "gemini-1.5-flash", APIVersion: "v1"},
	{Provider: ProviderGemini, Model: "gemini-1.5-flash-8b", APIVersion: "v1"},
	{Provider: ProviderGemini, Model: "gemini-2.0-flash-exp", APIVersion: "v1"},
}

// ParseCandidateList parses "provider:model@version,..." entries. The
// provider defaults to gemini and the version may be omitted.
func ParseCandidateList(raw string) ([]CandidateSpec, error) {
	var specs []CandidateSpec
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		spec := CandidateSpec{Provider: ProviderGemini}
		if provider, rest, ok := strings.Cut(part, ":"); ok {
			spec.Provider = strings.ToLower(strings.TrimSpace(provider))
			part = rest
		}
		if model, version, ok := strings.Cut(part, "@"); ok {
			spec.Model = strings.TrimSpace(model)
			spec.APIVersion = strings.TrimSpace(version)
		} else {
			spec.Model = strings.TrimSpace(part)
		}
		if err := spec.validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

type candidateFile struct {
	Candidates []CandidateSpec `yaml:"candidates"`
}

// LoadCandidateFile reads a YAML file with a top-level "candidates" list.
func LoadCandidateFile(path string) ([]CandidateSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidate file: %w", err)
	}
	return ParseCandidateYAML(data)
}

// ParseCandidateYAML decodes the candidate file format.
func ParseCandidateYAML(data []byte) ([]CandidateSpec, error) {
	var file candidateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode candidate file: %w", err)
	}
	for i := range file.Candidates {
		spec := &file.Candidates[i]
		spec.Provider = strings.ToLower(strings.TrimSpace(spec.Provider))
		if spec.Provider == "" {
			spec.Provider = ProviderGemini
		}
		if err := spec.validate(); err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i, err)
		}
	}
	return file.Candidates, nil
}

// ResolveCandidates picks the configured chain: the YAML file wins over the
// inline list, which wins over the Gemini defaults. When openAIModel is set an
// OpenAI entry is appended unless the chain already names one.
func ResolveCandidates(inline, filePath, openAIModel string) ([]CandidateSpec, error) {
	var specs []CandidateSpec
	var err error
	switch {
	case strings.TrimSpace(filePath) != "":
		specs, err = LoadCandidateFile(filePath)
	case strings.TrimSpace(inline) != "":
		specs, err = ParseCandidateList(inline)
	default:
		specs = append([]CandidateSpec(nil), DefaultGeminiCandidates...)
	}
	if err != nil {
		return nil, err
	}
	if openAIModel == "" {
		return specs, nil
	}
	for _, s := range specs {
		if s.Provider == ProviderOpenAI {
			return specs, nil
		}
	}
	return append(specs, CandidateSpec{Provider: ProviderOpenAI, Model: openAIModel}), nil
}

func (s CandidateSpec) validate() error {
	switch s.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown provider %q", s.Provider)
	}
	if s.Model == "" {
		return fmt.Errorf("candidate %q has no model", s.String())
	}
	return nil
}
