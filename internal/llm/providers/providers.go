// Package providers turns candidate specs into live model clients.
package providers

import (
	"context"
	"fmt"

	"resume-scorer/internal/llm"
	"resume-scorer/internal/llm/gemini"
	"resume-scorer/internal/llm/openai"
)

// Keys carries provider credentials and endpoint overrides.
type Keys struct {
	GeminiAPIKey  string
	GeminiOptions []gemini.Option
	OpenAIAPIKey  string
	OpenAIOptions []openai.Option
}

// Build creates one candidate per spec, in order. Specs whose provider has no
// key are skipped; at least one candidate must remain.
func Build(ctx context.Context, specs []llm.CandidateSpec, keys Keys) ([]llm.Candidate, error) {
	var factory *gemini.Factory
	if keys.GeminiAPIKey != "" {
		f, err := gemini.NewFactory(keys.GeminiAPIKey, keys.GeminiOptions...)
		if err != nil {
			return nil, err
		}
		factory = f
	}

	var out []llm.Candidate
	for _, spec := range specs {
		switch spec.Provider {
		case llm.ProviderGemini:
			if factory == nil {
				continue
			}
			c, err := factory.Candidate(ctx, spec.Model, spec.APIVersion)
			if err != nil {
				return nil, fmt.Errorf("build %s: %w", spec, err)
			}
			out = append(out, c)
		case llm.ProviderOpenAI:
			if keys.OpenAIAPIKey == "" {
				continue
			}
			c, err := openai.NewClient(keys.OpenAIAPIKey, spec.Model, keys.OpenAIOptions...)
			if err != nil {
				return nil, fmt.Errorf("build %s: %w", spec, err)
			}
			out = append(out, c)
		default:
			return nil, fmt.Errorf("unknown provider %q", spec.Provider)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no model candidates could be built from %d specs", len(specs))
	}
	return out, nil
}
