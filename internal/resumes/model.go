package resumes

import (
	"io"
	"time"

	"gorm.io/datatypes"

	"resume-scorer/internal/llm"
)

// Record is one persisted resume analysis. Records are never updated in place.
type Record struct {
	ID          string                                   `gorm:"column:id;primaryKey"`
	OwnerID     string                                   `gorm:"column:owner_id"`
	RawText     string                                   `gorm:"column:raw_text"`
	RawTextHash string                                   `gorm:"column:raw_text_hash"`
	Structured  datatypes.JSONType[llm.StructuredResume] `gorm:"column:structured"`
	ATSScore    int                                      `gorm:"column:ats_score"`
	Suggestions datatypes.JSONSlice[string]              `gorm:"column:suggestions"`
	Model       string                                   `gorm:"column:model"`
	CreatedAt   time.Time                                `gorm:"column:created_at"`
}

func (Record) TableName() string { return "resumes" }

// Upload is a file submitted for analysis.
type Upload struct {
	Body        io.Reader
	ContentType string
	Size        int64
	FileName    string
}

// Submission is the outcome of a successful ProcessSubmission call.
type Submission struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
}

// Usage reports how many records an owner holds against the quota.
type Usage struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
}
