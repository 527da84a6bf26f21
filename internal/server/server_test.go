package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumerank/internal/config"
	rankErrors "resumerank/internal/errors"
	"resumerank/internal/observability"

	"log/slog"
)

// identityStub answers every identity provider call with a full credential set
func identityStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"localId": "u1",
			"email": "jane@example.com",
			"idToken": "id-token",
			"refreshToken": "refresh",
			"expiresIn": "3600"
		}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, identityEndpoint string) (*Server, *http.ServeMux) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		Enabled: true,
		Identity: config.IdentityConfig{
			Endpoint: identityEndpoint,
			APIKey:   "test-key",
			Timeout:  5 * time.Second,
		},
		Session: config.SessionConfig{TTL: time.Hour, CleanupInterval: time.Minute},
		MFA:     config.MFAConfig{ChallengeTTL: time.Minute, MaxAttempts: 3},
	}
	cfg.App.MaxFileSize = 1 << 20
	cfg.App.MinJobDescriptionChars = 50

	logger := rankErrors.NewLogger(slog.LevelError)
	srv := NewServer(cfg, ServerConfig{
		Host:           "127.0.0.1",
		Port:           "0",
		Version:        "test",
		MaxRequestSize: 1 << 20,
	}, logger)
	t.Cleanup(srv.Gate.Close)

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, cfg)
	if err != nil {
		t.Fatalf("failed to build observability manager: %v", err)
	}

	return srv, srv.setupRoutes(om)
}

// signIn runs the sign-in flow against the stub and returns a session token
func signIn(t *testing.T, mux *http.ServeMux) string {
	t.Helper()

	body := `{"email": "jane@example.com", "password": "pw"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signin", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("sign-in failed: %d %s", rec.Code, rec.Body.String())
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad sign-in response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("sign-in response carries no token")
	}
	return resp.Token
}

func TestGatedEndpointRequiresSession(t *testing.T) {
	_, mux := newTestServer(t, "https://identity.example")

	for _, path := range []string{"/summarize", "/questions", "/rank", "/convert", "/export/rankings", "/export/questions"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d, want 401", path, rec.Code)
		}
	}
}

func TestSignInIssuesUsableSession(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)

	token := signIn(t, mux)

	// The session unlocks a gated endpoint
	body := `{"qna": [{"question": "Q1?", "answer": "Look for depth."}]}`
	req := httptest.NewRequest(http.MethodPost, "/export/questions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("export with session: status = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %s", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("response is not a PDF")
	}
}

func TestInvalidSessionTokenRejected(t *testing.T) {
	_, mux := newTestServer(t, "https://identity.example")

	req := httptest.NewRequest(http.MethodPost, "/rank", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRankRejectsEmptyResumeSet(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)
	token := signIn(t, mux)

	for name, body := range map[string]string{
		"empty request": `{"jobDescription": "Engineer"}`,
		"blank corpus":  `{"jobDescription": "Engineer", "resumeCorpus": "   \n  "}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/rank", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestExportRankingsProducesWorkbook(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)
	token := signIn(t, mux)

	body := `{"results": [{"name": "Jane Doe", "summary": "Engineer", "score": 87,
		"rationale": "Strong", "breakdown": {"essentialSkillsMatch": 35, "relevantExperience": 28,
		"requiredQualifications": 16, "keywordPresence": 8}, "recommendation": "Strong Match"}]}`
	req := httptest.NewRequest(http.MethodPost, "/export/rankings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type = %s", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("no workbook bytes produced")
	}
}

func TestExportRankingsRefusesEmptyResults(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)
	token := signIn(t, mux)

	req := httptest.NewRequest(http.MethodPost, "/export/rankings", strings.NewReader(`{"results": []}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestConvertEndpointIsolatesFailures(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)
	token := signIn(t, mux)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, content := range map[string]string{
		"good.txt": "Jane Doe\nEngineer",
		"bad.exe":  "binary",
	} {
		part, err := writer.CreateFormFile("files", name)
		if err != nil {
			t.Fatalf("form setup: %v", err)
		}
		part.Write([]byte(content))
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/convert", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []struct {
			Filename string `json:"filename"`
			Text     string `json:"text"`
			Error    string `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(resp.Results))
	}

	byName := map[string]string{}
	errsByName := map[string]string{}
	for _, result := range resp.Results {
		byName[result.Filename] = result.Text
		errsByName[result.Filename] = result.Error
	}
	if byName["good.txt"] != "Jane Doe\nEngineer" {
		t.Errorf("good.txt text = %q", byName["good.txt"])
	}
	if errsByName["bad.exe"] == "" {
		t.Error("bad.exe should carry an error")
	}
}

func TestSignOutIsIdempotent(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)
	token := signIn(t, mux)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("sign-out status = %d", rec.Code)
		}
	}

	// The session is gone afterwards
	req := httptest.NewRequest(http.MethodPost, "/rank", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("destroyed session still accepted: %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, mux := newTestServer(t, "https://identity.example")

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp["service"] != "resumerank" {
		t.Errorf("service = %v", resp["service"])
	}
}

func TestRateLimitKeyExtraction(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/rank", nil)
	req.Header.Set("Authorization", "Bearer session-token")
	req.RemoteAddr = "10.0.0.1:1234"

	if key := getRateLimitKey(req, true, true); key != "session:session-token" {
		t.Errorf("session key = %s", key)
	}
	if key := getRateLimitKey(req, false, true); key != "ip:10.0.0.1" {
		t.Errorf("ip key = %s", key)
	}
	if key := getRateLimitKey(req, false, false); key != "" {
		t.Errorf("disabled key = %s", key)
	}
}

func TestRateLimiterEnforcesBurst(t *testing.T) {
	limiter := NewRateLimiter(60, 2, rankErrors.NewLogger(slog.LevelError))
	defer limiter.Close()

	if !limiter.Allow("ip:10.0.0.1") || !limiter.Allow("ip:10.0.0.1") {
		t.Fatal("burst capacity should admit the first two requests")
	}
	if limiter.Allow("ip:10.0.0.1") {
		t.Error("third immediate request should be limited")
	}
	// Other keys are unaffected
	if !limiter.Allow("ip:10.0.0.2") {
		t.Error("separate key should have its own bucket")
	}
}

func TestSignUpResponseCreatedWithJSONContentType(t *testing.T) {
	stub := identityStub(t)
	_, mux := newTestServer(t, stub.URL)

	body := `{"email": "jane@example.com", "password": "str0ng-password"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var resp SessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Token == "" {
		t.Error("sign-up response carries no token")
	}
}
