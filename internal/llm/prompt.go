package llm

import (
	_ "embed"
	"strings"
)

// PromptVersion identifies the embedded scoring prompt.
const PromptVersion = "score_v1"

//go:embed prompts/score_v1.txt
var scorePromptV1 string

// BuildScorePrompt renders the scoring prompt for the given resume text.
func BuildScorePrompt(resumeText string) string {
	return strings.Replace(scorePromptV1, "{{RESUME_TEXT}}", resumeText, 1)
}
