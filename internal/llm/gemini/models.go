package gemini

import (
	"context"
	"fmt"
	"strings"
)

// ModelInfo summarizes a model listed by the API.
type ModelInfo struct {
	Name             string
	DisplayName      string
	SupportedActions []string
	InputTokenLimit  int32
}

// SupportsGenerate reports whether the model accepts generateContent.
func (m ModelInfo) SupportsGenerate() bool {
	for _, a := range m.SupportedActions {
		if a == "generateContent" {
			return true
		}
	}
	return false
}

// ListModels returns every model visible to the key at apiVersion.
func (f *Factory) ListModels(ctx context.Context, apiVersion string) ([]ModelInfo, error) {
	client, err := f.Client(ctx, apiVersion)
	if err != nil {
		return nil, err
	}
	var out []ModelInfo
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, fmt.Errorf("list models %s: %w", apiVersion, err)
		}
		out = append(out, ModelInfo{
			Name:             strings.TrimPrefix(m.Name, "models/"),
			DisplayName:      m.DisplayName,
			SupportedActions: m.SupportedActions,
			InputTokenLimit:  m.InputTokenLimit,
		})
	}
	return out, nil
}
