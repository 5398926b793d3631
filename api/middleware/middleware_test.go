package middleware

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/soundshelf/soundshelf-backend/internal/uploads"
	"github.com/soundshelf/soundshelf-backend/pkg/config"
	"github.com/soundshelf/soundshelf-backend/pkg/storage/local"
)

func TestRequestIDEchoesIncomingHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("expected incoming request id echoed, got %q", got)
	}
}

func TestRequestIDGeneratesWhenAbsent(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	got := w.Header().Get("X-Request-Id")
	if got == "" {
		t.Fatal("expected generated request id")
	}
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("generated request id is not a uuid: %q", got)
	}
}

func TestRecovererConvertsPanicTo500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "boom") {
		t.Fatalf("panic detail leaked to client: %s", w.Body.String())
	}
}

func TestStatusRecorderDefaultsTo200OnWrite(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	if _, err := rec.Write([]byte("ok")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if rec.status != http.StatusOK {
		t.Fatalf("expected implicit 200, got %d", rec.status)
	}
}

func TestStatusRecorderKeepsFirstStatus(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)
	if rec.status != http.StatusNotFound {
		t.Fatalf("expected first status kept, got %d", rec.status)
	}
}

func TestUploadAttachesResultToContext(t *testing.T) {
	store, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	pipeline, err := uploads.NewPipeline(store, 1024)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	if err := mw.WriteField("title", "So What"); err != nil {
		t.Fatalf("WriteField: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing writer: %v", err)
	}

	var seenTitle string
	handler := Upload(pipeline, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTitle = FormValuesFromContext(r.Context()).Get("title")
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected handler to run, got %d: %s", w.Code, w.Body.String())
	}
	if seenTitle != "So What" {
		t.Fatalf("form values not attached, got %q", seenTitle)
	}
}

func TestUploadShortCircuitsOnNonMultipartBody(t *testing.T) {
	store, err := local.New(t.TempDir())
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}
	pipeline, err := uploads.NewPipeline(store, 1024)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	called := false
	handler := Upload(pipeline, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if called {
		t.Fatal("handler should not run when intake fails")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestContextAccessorsWithoutResult(t *testing.T) {
	ctx := context.Background()
	if _, ok := UploadResultFromContext(ctx); ok {
		t.Fatal("expected no result on bare context")
	}
	if got := UploadedFileFromContext(ctx); got != "" {
		t.Fatalf("expected empty filename, got %q", got)
	}
	if got := FormValuesFromContext(ctx); len(got) != 0 {
		t.Fatalf("expected empty values, got %v", got)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	handler := CORS(config.CORSConfig{AllowedOrigin: "http://localhost:3000"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestCORSRejectsOtherOrigin(t *testing.T) {
	handler := CORS(config.CORSConfig{AllowedOrigin: "http://localhost:3000"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no allow-origin header for foreign origin, got %q", got)
	}
}
