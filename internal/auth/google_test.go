package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	sharedauth "resume-scorer/internal/shared/auth"
	"resume-scorer/internal/users"
)

func TestUIRedirect(t *testing.T) {
	got, err := uiRedirect("https://app.example.com/login?lang=en", "abc", "/resumes/r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("token") != "abc" || q.Get("lang") != "en" || q.Get("next") != "/resumes/r1" {
		t.Fatalf("unexpected query: %s", u.RawQuery)
	}
	if _, err := uiRedirect("", "abc", ""); err == nil {
		t.Fatalf("expected error for empty redirect")
	}
}

func TestSafeNextPath(t *testing.T) {
	tests := map[string]string{
		"/resumes/r1":          "/resumes/r1",
		"":                     "",
		"https://evil.example": "",
		"//evil.example/path":  "",
		`/\evil.example`:       "",
		"resumes":              "",
	}
	for in, want := range tests {
		if got := safeNextPath(in); got != want {
			t.Fatalf("safeNextPath(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestStateStoreConsumesOnce(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := newStateStore()
	store.now = func() time.Time { return now }
	store.put("s1", pendingLogin{verifier: "v1", expires: now.Add(time.Minute)})
	store.put("expired", pendingLogin{expires: now.Add(-time.Second)})

	login, ok := store.consume("s1")
	if !ok || login.verifier != "v1" {
		t.Fatalf("expected first consume to succeed, got %+v %v", login, ok)
	}
	if _, ok := store.consume("s1"); ok {
		t.Fatalf("expected second consume to fail")
	}
	if _, ok := store.consume("expired"); ok {
		t.Fatalf("expected expired state to fail")
	}
}

func TestStateStorePrunesOnPut(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	store := newStateStore()
	store.now = func() time.Time { return now }
	store.put("old", pendingLogin{expires: now.Add(time.Minute)})

	now = now.Add(2 * time.Minute)
	store.put("new", pendingLogin{expires: now.Add(time.Minute)})
	if n := store.len(); n != 1 {
		t.Fatalf("expected expired state pruned, got %d entries", n)
	}
}

func TestStartRequiresConfig(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer, _ := sharedauth.NewSigner("secret", "dev")
	svc := NewGoogleService(GoogleConfig{}, signer, nil)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start", nil))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestGoogleLoginFlow(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			_ = r.ParseForm()
			if r.PostForm.Get("code_verifier") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer at-1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"123","email":"jane@example.com","name":"Jane Doe","given_name":"Jane","family_name":"Doe"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(provider.Close)

	signer, err := sharedauth.NewSigner("secret", "dev")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	userSvc := users.NewService(users.NewMemoryRepo())
	svc := NewGoogleService(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/v1/auth/google/callback",
		UIRedirect:   "http://ui.local/auth",
	}, signer, userSvc)
	svc.oauthConfig.Endpoint = oauth2.Endpoint{
		AuthURL:   provider.URL + "/auth",
		TokenURL:  provider.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	svc.userInfoURL = provider.URL + "/userinfo"

	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/start?next=/resumes/r1", nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d", resp.Code)
	}
	authURL, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse auth url: %v", err)
	}
	state := authURL.Query().Get("state")
	if state == "" {
		t.Fatalf("expected state in auth url, got %s", authURL)
	}
	if authURL.Query().Get("code_challenge_method") != "S256" {
		t.Fatalf("expected PKCE challenge in auth url, got %s", authURL)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=c1&state="+state, nil))
	if resp.Code != http.StatusFound {
		t.Fatalf("expected status 302, got %d: %s", resp.Code, resp.Body.String())
	}
	uiURL, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("parse ui url: %v", err)
	}
	if uiURL.Query().Get("next") != "/resumes/r1" {
		t.Fatalf("expected next path carried through, got %s", uiURL)
	}
	claims, err := signer.Verify(uiURL.Query().Get("token"))
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if claims.Subject != "google:123" || claims.Email != "jane@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	user, err := userSvc.GetByID(context.Background(), "google:123")
	if err != nil {
		t.Fatalf("expected user persisted: %v", err)
	}
	if user.GivenName != "Jane" || user.FamilyName != "Doe" {
		t.Fatalf("unexpected user: %+v", user)
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?code=c1&state="+state, nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected replayed state to be rejected, got %d", resp.Code)
	}
}

func TestCallbackProviderError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	signer, _ := sharedauth.NewSigner("secret", "dev")
	svc := NewGoogleService(GoogleConfig{ClientID: "c", ClientSecret: "s", RedirectURL: "http://x/cb"}, signer, nil)
	r := gin.New()
	svc.RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/auth/google/callback?error=access_denied", nil))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}
