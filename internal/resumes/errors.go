package resumes

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized        = errors.New("login required to analyze a resume")
	ErrQuotaExceeded       = errors.New("resume analysis quota reached")
	ErrNoFileProvided      = errors.New("no file provided")
	ErrUnsupportedFileType = errors.New("only PDF files are supported")
	ErrFileTooLarge        = errors.New("file exceeds the maximum upload size")
	ErrExtractionFailed    = errors.New("could not extract text from the file")
	ErrInsufficientText    = errors.New("not enough text found in the resume")
	ErrAnalysisFailed      = errors.New("resume analysis failed")
	ErrNotFound            = errors.New("resume not found")
	ErrNotFoundOrForbidden = errors.New("resume not found or not owned by caller")
)

// QuotaError carries the limit that was hit.
type QuotaError struct {
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("resume analysis quota reached (limit %d)", e.Limit)
}

func (e *QuotaError) Is(target error) bool { return target == ErrQuotaExceeded }

// ExtractionError wraps the extractor failure.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrExtractionFailed.Error(), e.Err)
}

func (e *ExtractionError) Is(target error) bool { return target == ErrExtractionFailed }
func (e *ExtractionError) Unwrap() error        { return e.Err }

// AnalysisError wraps the scoring failure, usually llm.ErrAllModelsExhausted.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAnalysisFailed.Error(), e.Err)
}

func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }
func (e *AnalysisError) Unwrap() error        { return e.Err }

// ErrorKind is how a pipeline error is reported to clients.
type ErrorKind struct {
	Status  int
	Code    string
	Message string
}

var errorKinds = []struct {
	target error
	kind   ErrorKind
}{
	{ErrUnauthorized, ErrorKind{http.StatusUnauthorized, "unauthorized", ErrUnauthorized.Error()}},
	{ErrQuotaExceeded, ErrorKind{http.StatusTooManyRequests, "quota_exceeded", ErrQuotaExceeded.Error()}},
	{ErrNoFileProvided, ErrorKind{http.StatusBadRequest, "no_file", ErrNoFileProvided.Error()}},
	{ErrUnsupportedFileType, ErrorKind{http.StatusUnsupportedMediaType, "unsupported_file_type", ErrUnsupportedFileType.Error()}},
	{ErrFileTooLarge, ErrorKind{http.StatusRequestEntityTooLarge, "file_too_large", ErrFileTooLarge.Error()}},
	{ErrExtractionFailed, ErrorKind{http.StatusUnprocessableEntity, "extraction_failed", ErrExtractionFailed.Error()}},
	{ErrInsufficientText, ErrorKind{http.StatusUnprocessableEntity, "insufficient_text", ErrInsufficientText.Error()}},
	{ErrAnalysisFailed, ErrorKind{http.StatusBadGateway, "analysis_failed", ErrAnalysisFailed.Error()}},
	{ErrNotFound, ErrorKind{http.StatusNotFound, "not_found", ErrNotFound.Error()}},
	{ErrNotFoundOrForbidden, ErrorKind{http.StatusNotFound, "not_found", ErrNotFoundOrForbidden.Error()}},
}

// Classify maps err onto its client-facing status and code. Unknown errors are
// internal_error with a generic message.
func Classify(err error) ErrorKind {
	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.kind
		}
	}
	return ErrorKind{http.StatusInternalServerError, "internal_error", "failed to process request"}
}
