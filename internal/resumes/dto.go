package resumes

import (
	"time"

	"resume-scorer/internal/llm"
)

// ReportResponse is the outward-facing report view.
type ReportResponse struct {
	ID          string               `json:"id"`
	ATSScore    int                  `json:"atsScore"`
	NewResume   llm.StructuredResume `json:"newResume"`
	Suggestions []string             `json:"suggestions"`
	Model       string               `json:"model,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
}

// HistoryItem is one row of the owner's history listing.
type HistoryItem struct {
	ID        string    `json:"id"`
	ATSScore  int       `json:"atsScore"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryResponse is returned by GET /resumes.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
	Usage Usage         `json:"usage"`
}

func toReport(rec Record) ReportResponse {
	suggestions := []string(rec.Suggestions)
	if suggestions == nil {
		suggestions = []string{}
	}
	return ReportResponse{
		ID:          rec.ID,
		ATSScore:    rec.ATSScore,
		NewResume:   rec.Structured.Data(),
		Suggestions: suggestions,
		Model:       rec.Model,
		CreatedAt:   rec.CreatedAt,
	}
}

func toHistoryItem(rec Record) HistoryItem {
	return HistoryItem{
		ID:        rec.ID,
		ATSScore:  rec.ATSScore,
		Name:      rec.Structured.Data().PersonalInfo.Name,
		CreatedAt: rec.CreatedAt,
	}
}
