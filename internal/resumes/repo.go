package resumes

import (
	"context"
	"fmt"
	"strings"
)

// DedupScope selects which existing records a new submission is compared against.
type DedupScope string

const (
	DedupOwner  DedupScope = "owner"
	DedupGlobal DedupScope = "global"
	DedupOff    DedupScope = "off"
)

// ParseDedupScope maps a config value to a DedupScope.
func ParseDedupScope(raw string) (DedupScope, error) {
	switch s := DedupScope(strings.ToLower(strings.TrimSpace(raw))); s {
	case "":
		return DedupOwner, nil
	case DedupOwner, DedupGlobal, DedupOff:
		return s, nil
	default:
		return "", fmt.Errorf("unknown dedup scope %q", raw)
	}
}

// Repo defines persistence operations for resume records.
type Repo interface {
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	// FindLatestByRawText returns the id of the newest record whose raw text
	// equals text, or "" when there is none.
	FindLatestByRawText(ctx context.Context, text string, scope DedupScope, ownerID string) (string, error)
	// CreateWithinQuota inserts rec unless the owner already holds limit records.
	CreateWithinQuota(ctx context.Context, rec Record, limit int) error
	Get(ctx context.Context, id string) (Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
	// DeleteOwned reports whether a record with id owned by ownerID was removed.
	DeleteOwned(ctx context.Context, ownerID, id string) (bool, error)
	DeleteAllOwned(ctx context.Context, ownerID string) (int64, error)
}
