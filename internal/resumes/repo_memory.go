package resumes

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{records: make(map[string]Record)}
}

func (r *MemoryRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.countLocked(ownerID), nil
}

func (r *MemoryRepo) countLocked(ownerID string) int {
	n := 0
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			n++
		}
	}
	return n
}

func (r *MemoryRepo) FindLatestByRawText(ctx context.Context, text string, scope DedupScope, ownerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if scope == DedupOff {
		return "", nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *Record
	for id := range r.records {
		rec := r.records[id]
		if rec.RawText != text {
			continue
		}
		if scope == DedupOwner && rec.OwnerID != ownerID {
			continue
		}
		if latest == nil || rec.CreatedAt.After(latest.CreatedAt) {
			latest = &rec
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.ID, nil
}

func (r *MemoryRepo) CreateWithinQuota(ctx context.Context, rec Record, limit int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > 0 && r.countLocked(rec.OwnerID) >= limit {
		return &QuotaError{Limit: limit}
	}
	r.records[rec.ID] = rec
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// ListByOwner returns the owner's records newest first.
func (r *MemoryRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok || rec.OwnerID != ownerID {
		return false, nil
	}
	delete(r.records, id)
	return true, nil
}

func (r *MemoryRepo) DeleteAllOwned(ctx context.Context, ownerID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rec := range r.records {
		if rec.OwnerID == ownerID {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}
