package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"narasi-web/internal/narrative"
	"narasi-web/internal/session"
)

const stubResponse = `{
	"analysis": "Dibuat narasi formal dan santai",
	"narratives": [
		{"title": "Formal", "content": "Sobat Organis, ..."},
		{"title": "Santai", "content": "Sobat Organis, ..."}
	],
	"dataNeeded": []
}`

type stubGenerator struct {
	response string
	err      error
	calls    int
}

func (g *stubGenerator) Generate(context.Context, string, []narrative.Turn) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

func newTestServer(gen session.Generator) http.Handler {
	return New(session.NewStore(gen)).Handler()
}

func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/session", nil))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: status %d", rr.Code)
	}
	var resp struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.SessionID
}

func postJSON(t *testing.T, h http.Handler, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeSnapshot(t *testing.T, rr *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	return snap
}

func TestHealthz(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rr.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)

	rr := postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"event"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("select goal: status %d, body %s", rr.Code, rr.Body.String())
	}

	rr = postJSON(t, h, "/api/session/"+id+"/mode", `{"mode":"manual"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("select mode: status %d", rr.Code)
	}

	rr = postJSON(t, h, "/api/session/"+id+"/generate",
		`{"text":"Webinar Daur Ulang, 10 Mei 2025, Zoom, daftar di bit.ly/x"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate: status %d, body %s", rr.Code, rr.Body.String())
	}

	snap := decodeSnapshot(t, rr)
	if snap.State != "ready" {
		t.Errorf("state = %q, want ready", snap.State)
	}
	if len(snap.Output.Narratives) != 2 {
		t.Errorf("narratives = %d, want 2", len(snap.Output.Narratives))
	}

	rr = postJSON(t, h, "/api/session/"+id+"/revise", `{"message":"Buat lebih singkat"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("revise: status %d, body %s", rr.Code, rr.Body.String())
	}
	snap = decodeSnapshot(t, rr)
	if len(snap.Chat) != 4 {
		t.Errorf("chat length = %d, want 4", len(snap.Chat))
	}

	rr = postJSON(t, h, "/api/session/"+id+"/reset", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rr.Code)
	}
	snap = decodeSnapshot(t, rr)
	if snap.State != "empty" || snap.Output != nil || len(snap.Chat) != 0 {
		t.Errorf("post-reset snapshot not pristine: %+v", snap)
	}
}

func TestGenerate_FieldsComposedServerSide(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"link"}`)

	rr := postJSON(t, h, "/api/session/"+id+"/generate",
		`{"fields":{"url":"https://contoh.com","summary":"Artikel penting","source":"The Guardian"}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("generate: status %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestGenerate_MissingFormField(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"link"}`)

	rr := postJSON(t, h, "/api/session/"+id+"/generate", `{"fields":{"url":"https://contoh.com"}}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestGenerate_UnknownSession(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	rr := postJSON(t, h, "/api/session/nope/generate", `{"text":"halo"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rr.Code)
	}
}

func TestGenerate_InvalidGoal(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)

	rr := postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"podcast"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestGenerate_UpstreamFailure(t *testing.T) {
	h := newTestServer(&stubGenerator{response: `{not json`})
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"general"}`)

	rr := postJSON(t, h, "/api/session/"+id+"/generate", `{"text":"buat narasi"}`)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", rr.Code)
	}
}

func multipartDocument(t *testing.T, mediaType, filename, content, message string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if message != "" {
		if err := mw.WriteField("message", message); err != nil {
			t.Fatal(err)
		}
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, filename))
	hdr.Set("Content-Type", mediaType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestGenerate_DocumentUpload(t *testing.T) {
	gen := &stubGenerator{response: stubResponse}
	h := newTestServer(gen)
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"volunteer"}`)
	postJSON(t, h, "/api/session/"+id+"/mode", `{"mode":"upload"}`)

	body, contentType := multipartDocument(t, "application/pdf", "tor.pdf", "%PDF-1.7 ...", "")
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+id+"/generate", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("generate: status %d, body %s", rr.Code, rr.Body.String())
	}
	if gen.calls != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls)
	}
}

// The media-type gate fires before any generation request goes out.
func TestGenerate_UnsupportedMediaType(t *testing.T) {
	gen := &stubGenerator{response: stubResponse}
	h := newTestServer(gen)
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"event"}`)

	body, contentType := multipartDocument(t, "application/zip", "arsip.zip", "PK...", "")
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+id+"/generate", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
	if gen.calls != 0 {
		t.Errorf("generator calls = %d, want 0", gen.calls)
	}
}

func TestRevise_WithAttachment(t *testing.T) {
	gen := &stubGenerator{response: stubResponse}
	h := newTestServer(gen)
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"event"}`)
	postJSON(t, h, "/api/session/"+id+"/generate", `{"text":"Webinar Daur Ulang"}`)

	body, contentType := multipartDocument(t, "text/plain", "revisi.txt", "poin tambahan", "Sesuaikan dengan catatan ini")
	req := httptest.NewRequest(http.MethodPost, "/api/session/"+id+"/revise", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("revise: status %d, body %s", rr.Code, rr.Body.String())
	}

	snap := decodeSnapshot(t, rr)
	last := snap.Chat[len(snap.Chat)-2]
	if !strings.Contains(last.Text, "[Lampiran: revisi.txt]") {
		t.Errorf("user turn missing attachment marker: %q", last.Text)
	}
}

func TestRevise_EmptyRejected(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)
	postJSON(t, h, "/api/session/"+id+"/goal", `{"goal":"event"}`)
	postJSON(t, h, "/api/session/"+id+"/generate", `{"text":"Webinar"}`)

	rr := postJSON(t, h, "/api/session/"+id+"/revise", `{"message":"  "}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rr.Code)
	}
}

func TestRevise_BeforeGenerateConflicts(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	id := createSession(t, h)

	rr := postJSON(t, h, "/api/session/"+id+"/revise", `{"message":"ubah"}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("expected status 409, got %d", rr.Code)
	}
}

func TestStaticFallback(t *testing.T) {
	h := newTestServer(&stubGenerator{response: stubResponse})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/langkah/2", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Asisten Narasi YPBB") {
		t.Error("SPA fallback did not serve index.html")
	}
}
