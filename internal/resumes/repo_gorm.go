package resumes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"resume-scorer/internal/shared/util"
)

// GormRepo persists records in Postgres through gorm.
type GormRepo struct {
	DB *gorm.DB
}

// NewGormRepo constructs a GormRepo.
func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&Record{}).Where("owner_id = ?", ownerID).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count resumes: %w", err)
	}
	return int(n), nil
}

// FindLatestByRawText narrows on the hash index and confirms with full text equality.
func (r *GormRepo) FindLatestByRawText(ctx context.Context, text string, scope DedupScope, ownerID string) (string, error) {
	if scope == DedupOff {
		return "", nil
	}
	q := r.DB.WithContext(ctx).Model(&Record{}).
		Where("raw_text_hash = ? AND raw_text = ?", util.HashText(text), text)
	if scope == DedupOwner {
		q = q.Where("owner_id = ?", ownerID)
	}
	var ids []string
	if err := q.Order("created_at DESC").Limit(1).Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("find resume by text: %w", err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// CreateWithinQuota serializes inserts per owner with a transaction-scoped
// advisory lock so the count and the insert cannot interleave.
func (r *GormRepo) CreateWithinQuota(ctx context.Context, rec Record, limit int) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", rec.OwnerID).Error; err != nil {
			return fmt.Errorf("lock owner quota: %w", err)
		}
		var n int64
		if err := tx.Model(&Record{}).Where("owner_id = ?", rec.OwnerID).Count(&n).Error; err != nil {
			return fmt.Errorf("count resumes: %w", err)
		}
		if limit > 0 && n >= int64(limit) {
			return &QuotaError{Limit: limit}
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert resume: %w", err)
		}
		return nil
	})
}

func (r *GormRepo) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("get resume: %w", err)
	}
	return rec, nil
}

// ListByOwner returns the owner's records newest first. Raw text is not loaded.
func (r *GormRepo) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	var recs []Record
	err := r.DB.WithContext(ctx).
		Select("id", "owner_id", "structured", "ats_score", "suggestions", "model", "created_at").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return recs, nil
}

func (r *GormRepo) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	res := r.DB.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&Record{})
	if res.Error != nil {
		return false, fmt.Errorf("delete resume: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) DeleteAllOwned(ctx context.Context, ownerID string) (int64, error) {
	res := r.DB.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&Record{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete resumes: %w", res.Error)
	}
	return res.RowsAffected, nil
}
