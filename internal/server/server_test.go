package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hireprep/internal/app"
	"hireprep/internal/store"
	"hireprep/pkg/export"

	"github.com/nguyenthenguyen/docx"
)

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) GenerateText(context.Context, string, string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

type testEnv struct {
	server  *httptest.Server
	gen     *stubGenerator
	extract *extractStub
}

type extractStub struct {
	text string
	err  error
}

func (e *extractStub) extract(io.ReaderAt, int64) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gen := &stubGenerator{reply: "1. Why Go?"}
	ex := &extractStub{text: "extracted resume text"}
	appCore, err := app.New(app.Config{
		Generator: gen,
		Extractor: ex.extract,
		Store:     store.NewMemoryStore(),
		Sessions:  store.NewMemorySessionStore(),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	staticDir := t.TempDir()
	for _, name := range []string{"index.html", "agreement.html", "privacy.html"} {
		if err := os.WriteFile(filepath.Join(staticDir, name), []byte("<html>"+name+"</html>"), 0o644); err != nil {
			t.Fatalf("write static page: %v", err)
		}
	}

	srv := New(Config{App: appCore, StaticDir: staticDir, SessionCookieTTL: 3600})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, gen: gen, extract: ex}
}

func postJSON(t *testing.T, url string, payload any, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func register(t *testing.T, env *testEnv, username, password string) {
	t.Helper()
	resp := postJSON(t, env.server.URL+"/api/register", map[string]string{"username": username, "password": password})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
}

func login(t *testing.T, env *testEnv, username, password string) *http.Cookie {
	t.Helper()
	resp := postJSON(t, env.server.URL+"/api/login", map[string]string{"username": username, "password": password})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == SessionCookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("login response missing session cookie")
	return nil
}

func analyzeRequest(t *testing.T, url, filename, jd string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := w.CreateFormFile("resume", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 fake")); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if jd != "" {
		if err := w.WriteField("jd", jd); err != nil {
			t.Fatalf("write jd field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url+"/api/analyze", &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do analyze request: %v", err)
	}
	return resp
}

func TestRegisterLoginCheckAuthLogoutFlow(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	cookie := login(t, env, "alice1", "secret1")

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/check_auth", nil)
	req.AddCookie(cookie)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("check_auth: %v", err)
	}
	body := decodeBody(t, resp)
	if body["is_authenticated"] != true || body["username"] != "alice1" {
		t.Fatalf("check_auth body = %v", body)
	}

	logoutResp := postJSON(t, env.server.URL+"/api/logout", nil, cookie)
	defer logoutResp.Body.Close()
	if logoutResp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d", logoutResp.StatusCode)
	}

	req2, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/check_auth", nil)
	req2.AddCookie(cookie)
	resp2, err := http.DefaultClient.Do(req2)
	if err != nil {
		t.Fatalf("check_auth after logout: %v", err)
	}
	body2 := decodeBody(t, resp2)
	if body2["is_authenticated"] != false {
		t.Fatalf("session should be dead after logout, got %v", body2)
	}
}

func TestCheckAuthAnonymous(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/api/check_auth")
	if err != nil {
		t.Fatalf("check_auth: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["is_authenticated"] != false {
		t.Fatalf("expected unauthenticated, got %v", body)
	}
}

func TestRegisterDuplicateConflict(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	resp := postJSON(t, env.server.URL+"/api/register", map[string]string{"username": "alice1", "password": "other12"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", resp.StatusCode)
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	cases := []struct {
		name     string
		username string
		password string
	}{
		{"short username", "ab", "secret1"},
		{"username with space", "user name", "secret1"},
		{"password without digit", "alice1", "password"},
		{"empty username", "", "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, env.server.URL+"/api/register", map[string]string{"username": tc.username, "password": tc.password})
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestLoginWrongCredentials(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	resp := postJSON(t, env.server.URL+"/api/login", map[string]string{"username": "alice1", "password": "wrong12"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLogoutWithoutSession(t *testing.T) {
	env := newTestEnv(t)
	resp := postJSON(t, env.server.URL+"/api/logout", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestAnalyzeAuthenticatedRecordsHistory(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	cookie := login(t, env, "alice1", "secret1")

	resp := analyzeRequest(t, env.server.URL, "resume.pdf", "backend role", cookie)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["questions"] != env.gen.reply {
		t.Fatalf("questions = %v, want %q", body["questions"], env.gen.reply)
	}

	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/history", nil)
	req.AddCookie(cookie)
	histResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer histResp.Body.Close()
	var entries []map[string]any
	if err := json.NewDecoder(histResp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("history length = %d, want 1", len(entries))
	}
	if entries[0]["questions"] != env.gen.reply {
		t.Fatalf("history entry questions = %v", entries[0]["questions"])
	}
	if _, ok := entries[0]["timestamp"]; !ok {
		t.Fatalf("history entry missing timestamp")
	}
}

func TestAnalyzeAnonymousLeavesNoHistory(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")

	resp := analyzeRequest(t, env.server.URL, "resume.pdf", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("anonymous analyze status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	cookie := login(t, env, "alice1", "secret1")
	req, _ := http.NewRequest(http.MethodGet, env.server.URL+"/api/history", nil)
	req.AddCookie(cookie)
	histResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer histResp.Body.Close()
	var entries []map[string]any
	if err := json.NewDecoder(histResp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("anonymous analysis wrote %d history rows, want 0", len(entries))
	}
}

func TestAnalyzeMissingFile(t *testing.T) {
	env := newTestEnv(t)
	resp := analyzeRequest(t, env.server.URL, "", "some jd")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeExtractionFailure(t *testing.T) {
	env := newTestEnv(t)
	env.extract.err = errors.New("cannot parse pdf")
	resp := analyzeRequest(t, env.server.URL, "resume.pdf", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if !strings.Contains(body["error"].(string), "cannot parse pdf") {
		t.Fatalf("error body should carry extraction failure, got %v", body)
	}
}

func TestAnalyzeGenerationFailure(t *testing.T) {
	env := newTestEnv(t)
	env.gen.err = errors.New("upstream unavailable")
	resp := analyzeRequest(t, env.server.URL, "resume.pdf", "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", resp.StatusCode)
	}
}

func TestHistoryRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/api/history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestDownloadWordRequiresAuth(t *testing.T) {
	env := newTestEnv(t)
	resp := postJSON(t, env.server.URL+"/api/download_word", map[string]string{"content": "# Questions"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestDownloadWordReturnsDocument(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	cookie := login(t, env, "alice1", "secret1")

	resp := postJSON(t, env.server.URL+"/api/download_word", map[string]string{"content": "# Interview Questions\n* What is a goroutine?"}, cookie)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != export.ContentType {
		t.Fatalf("content type = %q", got)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, downloadFilename) {
		t.Fatalf("content disposition = %q", got)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		t.Fatalf("response is not a readable docx: %v", err)
	}
	defer doc.Close()
	content := doc.Editable().GetContent()
	if !strings.Contains(content, "Interview Questions") {
		t.Fatalf("document missing heading text")
	}
	if !strings.Contains(content, "What is a goroutine?") {
		t.Fatalf("document missing bullet text")
	}
}

func TestDownloadWordEmptyContent(t *testing.T) {
	env := newTestEnv(t)
	register(t, env, "alice1", "secret1")
	cookie := login(t, env, "alice1", "secret1")
	resp := postJSON(t, env.server.URL+"/api/download_word", map[string]string{"content": "  "}, cookie)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)
	for _, path := range []string{"/", "/agreement", "/privacy"} {
		resp, err := http.Get(env.server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
	resp, err := http.Get(env.server.URL + "/nope")
	if err != nil {
		t.Fatalf("get /nope: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("/nope status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	body := decodeBody(t, resp)
	if body["status"] != "ok" {
		t.Fatalf("healthz body = %v", body)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	resp, err := http.Get(env.server.URL + "/api/register")
	if err != nil {
		t.Fatalf("get register: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
