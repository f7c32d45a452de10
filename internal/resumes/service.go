package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"

	"resume-scorer/internal/extract"
	"resume-scorer/internal/llm"
	"resume-scorer/internal/shared/metrics"
	"resume-scorer/internal/shared/storage/object"
	"resume-scorer/internal/shared/telemetry"
	"resume-scorer/internal/shared/util"
)

const (
	DefaultQuotaLimit   = 10
	DefaultMaxFileBytes = 5 << 20
	// MinTextLength is the minimum number of runes of extracted text worth scoring.
	MinTextLength = 50

	// inflightTimeout bounds a shared analysis once it no longer follows the
	// caller that started it.
	inflightTimeout = 5 * time.Minute
)

// Service runs the resume analysis pipeline.
type Service struct {
	Repo         Repo
	Extractor    extract.Extractor
	Scorer       llm.Scorer
	Archive      object.Store
	QuotaLimit   int
	MaxFileBytes int64
	DedupScope   DedupScope
	Now          func() time.Time

	inflight singleflight.Group
}

// ProcessSubmission validates, extracts, deduplicates, scores and persists an
// uploaded resume. Nothing is written unless scoring succeeds.
func (s *Service) ProcessSubmission(ctx context.Context, ownerID string, file *Upload) (Submission, error) {
	metrics.IncSubmission()
	sub, err := s.process(ctx, ownerID, file)
	if err != nil {
		metrics.IncSubmissionRejected(Classify(err).Code)
		fields := map[string]any{
			"owner_id": ownerID,
			"error":    err,
		}
		if file != nil {
			if name, nameErr := util.SanitizeFileName(file.FileName); nameErr == nil {
				fields["file_name"] = name
			}
			fields["size_bytes"] = file.Size
		}
		telemetry.Warn("resume.submission_rejected", fields)
		return Submission{}, err
	}
	return sub, nil
}

// Admit runs the identity and quota checks that precede any file handling.
func (s *Service) Admit(ctx context.Context, ownerID string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthorized
	}
	count, err := s.Repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if limit := s.quotaLimit(); count >= limit {
		return &QuotaError{Limit: limit}
	}
	return nil
}

func (s *Service) process(ctx context.Context, ownerID string, file *Upload) (Submission, error) {
	if err := s.Admit(ctx, ownerID); err != nil {
		return Submission{}, err
	}
	if file == nil || file.Body == nil || file.Size <= 0 {
		return Submission{}, ErrNoFileProvided
	}
	if !isPDF(file.ContentType, file.FileName) {
		return Submission{}, ErrUnsupportedFileType
	}
	maxBytes := s.maxFileBytes()
	if file.Size > maxBytes {
		return Submission{}, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file.Body, maxBytes+1))
	if err != nil {
		return Submission{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return Submission{}, ErrFileTooLarge
	}
	if len(data) == 0 {
		return Submission{}, ErrNoFileProvided
	}

	text, err := s.Extractor.Extract(ctx, data)
	if err != nil {
		return Submission{}, &ExtractionError{Err: err}
	}
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < MinTextLength {
		return Submission{}, ErrInsufficientText
	}

	scope := s.dedupScope()
	if scope == DedupOff {
		return s.analyze(ctx, ownerID, text, data)
	}

	// Identical submissions from one owner share one scoring call. The shared
	// call is detached from the leader's cancellation; every caller only stops
	// its own wait.
	key := ownerID + "|" + util.HashText(text)
	token := new(int)
	ch := s.inflight.DoChan(key, func() (any, error) {
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), inflightTimeout)
		defer cancel()
		sub, err := s.analyze(flightCtx, ownerID, text, data)
		return flightResult{sub: sub, leader: token}, err
	})
	select {
	case <-ctx.Done():
		return Submission{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Submission{}, res.Err
		}
		fr := res.Val.(flightResult)
		sub := fr.sub
		if fr.leader != token {
			sub.Duplicate = true
		}
		return sub, nil
	}
}

type flightResult struct {
	sub    Submission
	leader *int
}

func (s *Service) analyze(ctx context.Context, ownerID, text string, pdf []byte) (Submission, error) {
	scope := s.dedupScope()
	existing, err := s.Repo.FindLatestByRawText(ctx, text, scope, ownerID)
	if err != nil {
		return Submission{}, err
	}
	if existing != "" {
		metrics.IncDedupHit()
		telemetry.Info("resume.dedup_hit", map[string]any{
			"owner_id":  ownerID,
			"resume_id": existing,
			"scope":     string(scope),
		})
		return Submission{ID: existing, Duplicate: true}, nil
	}

	res, err := s.Scorer.Score(ctx, text)
	if err != nil {
		return Submission{}, &AnalysisError{Err: err}
	}

	rec := Record{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		RawText:     text,
		RawTextHash: util.HashText(text),
		Structured:  datatypes.NewJSONType(res.Resume),
		ATSScore:    res.ATSScore,
		Suggestions: datatypes.NewJSONSlice(res.Tips),
		Model:       res.Model,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.Repo.CreateWithinQuota(ctx, rec, s.quotaLimit()); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return Submission{}, err
		}
		return Submission{}, fmt.Errorf("persist resume: %w", err)
	}

	metrics.IncRecordCreated()
	telemetry.Info("resume.created", map[string]any{
		"owner_id":  ownerID,
		"resume_id": rec.ID,
		"ats_score": rec.ATSScore,
		"model":     rec.Model,
	})
	s.archivePut(ctx, ownerID, rec.ID, pdf)
	return Submission{ID: rec.ID}, nil
}

// ArchiveKey is where the uploaded PDF for a record is kept. The owner id
// is hashed so provider subjects never appear in object names.
func ArchiveKey(ownerID, id string) string {
	return util.HashText(ownerID)[:16] + "/" + id + ".pdf"
}

// Archive failures never fail the request; the record is already committed.
func (s *Service) archivePut(ctx context.Context, ownerID, id string, body []byte) {
	if s.Archive == nil || len(body) == 0 {
		return
	}
	if err := s.Archive.Put(ctx, ArchiveKey(ownerID, id), "application/pdf", body); err != nil {
		telemetry.Warn("resume.archive_failed", map[string]any{"resume_id": id, "op": "put", "error": err})
	}
}

func (s *Service) archiveDelete(ctx context.Context, ownerID string, ids ...string) {
	if s.Archive == nil {
		return
	}
	for _, id := range ids {
		if err := s.Archive.Delete(ctx, ArchiveKey(ownerID, id)); err != nil {
			telemetry.Warn("resume.archive_failed", map[string]any{"resume_id": id, "op": "delete", "error": err})
		}
	}
}

// GetUsage reports the owner's record count against the quota.
func (s *Service) GetUsage(ctx context.Context, ownerID string) (Usage, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Usage{}, ErrUnauthorized
	}
	count, err := s.Repo.CountByOwner(ctx, ownerID)
	if err != nil {
		return Usage{}, err
	}
	return Usage{Count: count, Limit: s.quotaLimit()}, nil
}

// ListHistory returns the owner's records, newest first.
func (s *Service) ListHistory(ctx context.Context, ownerID string) ([]Record, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, ErrUnauthorized
	}
	return s.Repo.ListByOwner(ctx, ownerID)
}

// Get returns a record by id. Reports are shareable, so no owner check is made.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Record{}, ErrNotFound
	}
	return s.Repo.Get(ctx, id)
}

// DeleteOne removes a single record owned by ownerID.
func (s *Service) DeleteOne(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(ownerID) == "" {
		return ErrUnauthorized
	}
	ok, err := s.Repo.DeleteOwned(ctx, ownerID, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFoundOrForbidden
	}
	s.archiveDelete(ctx, ownerID, strings.TrimSpace(id))
	telemetry.Info("resume.deleted", map[string]any{"owner_id": ownerID, "resume_id": id})
	return nil
}

// ClearHistory deletes every record owned by ownerID and returns how many went.
func (s *Service) ClearHistory(ctx context.Context, ownerID string) (int64, error) {
	if strings.TrimSpace(ownerID) == "" {
		return 0, ErrUnauthorized
	}
	var archived []string
	if s.Archive != nil {
		recs, err := s.Repo.ListByOwner(ctx, ownerID)
		if err != nil {
			return 0, err
		}
		for _, rec := range recs {
			archived = append(archived, rec.ID)
		}
	}
	n, err := s.Repo.DeleteAllOwned(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	s.archiveDelete(ctx, ownerID, archived...)
	telemetry.Info("resume.history_cleared", map[string]any{"owner_id": ownerID, "deleted": n})
	return n, nil
}

// Limit is the configured per-owner quota.
func (s *Service) Limit() int { return s.quotaLimit() }

func (s *Service) quotaLimit() int {
	if s.QuotaLimit > 0 {
		return s.QuotaLimit
	}
	return DefaultQuotaLimit
}

func (s *Service) maxFileBytes() int64 {
	if s.MaxFileBytes > 0 {
		return s.MaxFileBytes
	}
	return DefaultMaxFileBytes
}

func (s *Service) dedupScope() DedupScope {
	if s.DedupScope == "" {
		return DedupOwner
	}
	return s.DedupScope
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func isPDF(contentType, fileName string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(fileName)), ".pdf")
}
