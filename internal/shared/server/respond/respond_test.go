package respond

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLocatedSetsHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil)

	Located(c, http.StatusCreated, "/api/v1/resumes/r1", gin.H{"id": "r1"})

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != "/api/v1/resumes/r1" {
		t.Fatalf("expected location header, got %q", got)
	}
	if !strings.Contains(resp.Body.String(), `"id":"r1"`) {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
}

func TestNoContentWritesEmptyBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodDelete, "/api/v1/resumes/r1", nil)

	NoContent(c)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", resp.Body.String())
	}
}

func TestErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	resp := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(resp)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/resumes", nil)

	Error(c, http.StatusTooManyRequests, "quota_exceeded", "quota reached", gin.H{"limit": 10})

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	body := resp.Body.String()
	if !strings.Contains(body, `"code":"quota_exceeded"`) || !strings.Contains(body, `"limit":10`) {
		t.Fatalf("unexpected envelope %s", body)
	}
	if !c.IsAborted() {
		t.Fatalf("expected context aborted")
	}
}
