package resumes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-scorer/internal/shared/server/middleware"
	"resume-scorer/internal/shared/server/respond"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
	// UploadLimit guards POST /resumes when set.
	UploadLimit gin.HandlerFunc

	reportPath string
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, uploadLimit gin.HandlerFunc) *Handler {
	return &Handler{Svc: svc, UploadLimit: uploadLimit}
}

// SubmissionResponse is returned by POST /resumes.
type SubmissionResponse struct {
	ID        string `json:"id"`
	Duplicate bool   `json:"duplicate"`
	Location  string `json:"location"`
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	h.reportPath = rg.BasePath() + "/resumes/"

	upload := []gin.HandlerFunc{middleware.RequireUser()}
	if h.UploadLimit != nil {
		upload = append(upload, h.UploadLimit)
	}
	upload = append(upload, h.upload)

	rg.POST("/resumes", upload...)
	rg.GET("/resumes", middleware.RequireUser(), h.history)
	rg.GET("/resumes/usage", middleware.RequireUser(), h.usage)
	rg.GET("/resumes/:id", h.report)
	rg.DELETE("/resumes/:id", middleware.RequireUser(), h.deleteOne)
	rg.DELETE("/resumes", middleware.RequireUser(), h.clear)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.maxFileBytes()+multipartOverhead)

	var file *Upload
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			if admitErr := h.Svc.Admit(c.Request.Context(), userID); admitErr != nil {
				h.writeError(c, admitErr)
				return
			}
			h.writeError(c, ErrFileTooLarge)
			return
		}
	} else {
		f, openErr := fileHeader.Open()
		if openErr != nil {
			respond.Error(c, http.StatusBadRequest, "no_file", "unable to read file", nil)
			return
		}
		defer f.Close()
		file = &Upload{
			Body:        f,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Size:        fileHeader.Size,
			FileName:    fileHeader.Filename,
		}
	}

	sub, err := h.Svc.ProcessSubmission(c.Request.Context(), userID, file)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Set("resumeId", sub.ID)
	location := h.reportPath + sub.ID
	status := http.StatusCreated
	if sub.Duplicate {
		status = http.StatusOK
	}
	respond.Located(c, status, location, SubmissionResponse{ID: sub.ID, Duplicate: sub.Duplicate, Location: location})
}

func (h *Handler) history(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	recs, err := h.Svc.ListHistory(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	usage, err := h.Svc.GetUsage(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items := make([]HistoryItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, toHistoryItem(rec))
	}
	respond.JSON(c, http.StatusOK, HistoryResponse{Items: items, Usage: usage})
}

func (h *Handler) usage(c *gin.Context) {
	usage, err := h.Svc.GetUsage(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, usage)
}

func (h *Handler) report(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)

	rec, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toReport(rec))
}

func (h *Handler) deleteOne(c *gin.Context) {
	id := c.Param("id")
	c.Set("resumeId", id)

	if err := h.Svc.DeleteOne(c.Request.Context(), middleware.UserIDFromContext(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	respond.NoContent(c)
}

func (h *Handler) clear(c *gin.Context) {
	n, err := h.Svc.ClearHistory(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"deleted": n})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	kind := Classify(err)
	message := kind.Message
	var details any
	switch kind.Code {
	case "quota_exceeded":
		limit := h.Svc.Limit()
		var quotaErr *QuotaError
		if errors.As(err, &quotaErr) {
			limit = quotaErr.Limit
			message = quotaErr.Error()
		}
		details = gin.H{"limit": limit}
	case "file_too_large":
		details = gin.H{"maxBytes": h.Svc.maxFileBytes()}
	case "extraction_failed", "analysis_failed":
		message = err.Error()
	}
	respond.Error(c, kind.Status, kind.Code, message, details)
}
