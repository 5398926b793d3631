package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/soundshelf/soundshelf-backend/internal/tracks"
	"github.com/soundshelf/soundshelf-backend/internal/uploads"
	"github.com/soundshelf/soundshelf-backend/pkg/config"
	"github.com/soundshelf/soundshelf-backend/pkg/db/models"
	"github.com/soundshelf/soundshelf-backend/pkg/storage/local"
	"github.com/soundshelf/soundshelf-backend/pkg/types"
)

type testEnv struct {
	router    http.Handler
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "tracks.db")), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.Track{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	uploadDir := t.TempDir()
	store, err := local.New(uploadDir)
	if err != nil {
		t.Fatalf("local.New: %v", err)
	}

	pipeline, err := uploads.NewPipeline(store, 10*1024*1024)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}

	svc, err := tracks.NewService(tracks.NewRepository(conn))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	cfg := &config.Config{
		App:    config.AppConfig{Env: "test", Port: "3001"},
		CORS:   config.CORSConfig{AllowedOrigin: "http://localhost:3000"},
		Upload: config.UploadConfig{Dir: uploadDir, MaxUploadMB: 10},
	}

	return &testEnv{
		router:    NewRouter(cfg, nil, nil, store, pipeline, svc, prometheus.NewRegistry()),
		uploadDir: uploadDir,
	}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type trackPart struct {
	field       string
	fileName    string
	contentType string
	body        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...trackPart) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for field, value := range fields {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	for _, file := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition",
			`form-data; name="`+file.field+`"; filename="`+file.fileName+`"`)
		header.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		if _, err := part.Write(file.body); err != nil {
			t.Fatalf("writing file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return buf, mw.FormDataContentType()
}

func createTrack(t *testing.T, env *testEnv) map[string]any {
	t.Helper()
	body, contentType := multipartBody(t, map[string]string{
		"title":  "So What",
		"artist": "Miles Davis",
		"image":  "http://example.com/cover.png",
		"video":  "http://example.com/clip.mp4",
	}, trackPart{
		field:       "music",
		fileName:    "so-what.mp3",
		contentType: "audio/mpeg",
		body:        []byte("ID3 fake audio payload"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/music", body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(t, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var envelope types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding create response: %v", err)
	}
	track, ok := envelope.Data.(map[string]any)
	if !ok {
		t.Fatalf("unexpected data payload: %v", envelope.Data)
	}
	return track
}

func TestCreateTrackStoresRecordAndFile(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)

	if track["title"] != "So What" || track["artist"] != "Miles Davis" {
		t.Fatalf("fields not echoed: %v", track)
	}

	music, _ := track["music"].(string)
	if !strings.HasSuffix(music, ".mp3") {
		t.Fatalf("stored filename should keep the extension, got %q", music)
	}
	if strings.Contains(music, "so-what") {
		t.Fatalf("stored filename should be generated, got %q", music)
	}

	if _, err := os.Stat(filepath.Join(env.uploadDir, music)); err != nil {
		t.Fatalf("uploaded file missing on disk: %v", err)
	}
}

func TestCreateValidationCollectsAllMessages(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":  "Hi",
		"artist": "Miles Davis",
		"image":  "http://example.com/cover.png",
		"video":  "http://example.com/clip.mp4",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music", body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(t, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var envelope types.ValidationEnvelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding validation response: %v", err)
	}
	if len(envelope.Messages) != 2 {
		t.Fatalf("expected exactly the title and music messages, got %v", envelope.Messages)
	}
	if !strings.Contains(envelope.Messages[0], "title") {
		t.Fatalf("first message should be about the title, got %q", envelope.Messages[0])
	}
	if !strings.Contains(envelope.Messages[1], "music file") {
		t.Fatalf("second message should be about the music file, got %q", envelope.Messages[1])
	}
}

func TestCreateRejectsDisallowedFileType(t *testing.T) {
	env := newTestEnv(t)

	body, contentType := multipartBody(t, map[string]string{
		"title":  "So What",
		"artist": "Miles Davis",
		"image":  "http://example.com/cover.png",
		"video":  "http://example.com/clip.mp4",
	}, trackPart{
		field:       "music",
		fileName:    "notes.txt",
		contentType: "text/plain",
		body:        []byte("not audio"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/music", body)
	req.Header.Set("Content-Type", contentType)
	w := env.do(t, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	entries, err := os.ReadDir(env.uploadDir)
	if err != nil {
		t.Fatalf("reading upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left files behind: %v", entries)
	}

	listReq := httptest.NewRequest(http.MethodGet, "/api/v1/music", nil)
	listW := env.do(t, listReq)
	var envelope types.Envelope
	if err := json.NewDecoder(listW.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	if rows, ok := envelope.Data.([]any); !ok || len(rows) != 0 {
		t.Fatalf("rejected upload created a record: %v", envelope.Data)
	}
}

func TestListContainsCreatedTrackOnce(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)
	id := track["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/music", nil)
	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var envelope types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding list response: %v", err)
	}
	rows, ok := envelope.Data.([]any)
	if !ok {
		t.Fatalf("unexpected list payload: %v", envelope.Data)
	}

	seen := 0
	for _, row := range rows {
		if entry, ok := row.(map[string]any); ok && entry["id"] == id {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("expected id once in list, saw it %d times", seen)
	}
}

func TestGetTrackByID(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)
	id := track["id"].(string)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/"+id, nil)
	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetUnknownTrackReturns404(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/6f1c8f0a-52b8-4f87-9a3a-6f9c8e8d2b11", nil)
	w := env.do(t, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetMalformedIDReturns400(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/music/not-a-uuid", nil)
	w := env.do(t, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestUpdateTrackAppliesPartialBody(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)
	id := track["id"].(string)

	payload := strings.NewReader(`{"title":"Freddie Freeloader"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/music/"+id, payload)
	req.Header.Set("Content-Type", "application/json")
	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding update response: %v", err)
	}
	updated := envelope.Data.(map[string]any)
	if updated["title"] != "Freddie Freeloader" {
		t.Fatalf("title not updated: %v", updated)
	}
	if updated["artist"] != "Miles Davis" {
		t.Fatalf("untouched field changed: %v", updated)
	}
}

func TestDeleteTrackKeepsUploadedFile(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)
	id := track["id"].(string)
	music := track["music"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/music/"+id, nil)
	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var envelope types.Envelope
	if err := json.NewDecoder(w.Body).Decode(&envelope); err != nil {
		t.Fatalf("decoding delete response: %v", err)
	}
	deleted := envelope.Data.(map[string]any)
	if deleted["id"] != id {
		t.Fatalf("delete should echo the removed record: %v", deleted)
	}

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/music/"+id, nil)
	if got := env.do(t, getReq); got.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", got.Code)
	}

	fileReq := httptest.NewRequest(http.MethodGet, "/uploads/"+music, nil)
	if got := env.do(t, fileReq); got.Code != http.StatusOK {
		t.Fatalf("uploaded file should survive record deletion, got %d", got.Code)
	}
}

func TestServeUploadReturnsFileBytes(t *testing.T) {
	env := newTestEnv(t)

	track := createTrack(t, env)
	music := track["music"].(string)

	req := httptest.NewRequest(http.MethodGet, "/uploads/"+music, nil)
	w := env.do(t, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	data, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("reading file response: %v", err)
	}
	if string(data) != "ID3 fake audio payload" {
		t.Fatalf("unexpected file bytes: %q", data)
	}
}

func TestServeUploadUnknownFileReturns404(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/uploads/deadbeef.mp3", nil)
	w := env.do(t, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/health/live", "/health/ready", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := env.do(t, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 from %s, got %d", path, w.Code)
		}
	}
}
