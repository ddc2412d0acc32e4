package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carelingo/internal/chat"
	"carelingo/internal/config"
	"carelingo/internal/database"
)

type stubService struct {
	textIn     chat.TextInput
	audioIn    chat.AudioInput
	message    *database.Message
	history    []database.Message
	summary    string
	submitErr  error
	historyErr error
}

func (s *stubService) SubmitText(_ context.Context, in chat.TextInput) (*database.Message, error) {
	s.textIn = in
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.message, nil
}

func (s *stubService) SubmitAudio(_ context.Context, in chat.AudioInput) (*database.Message, error) {
	s.audioIn = in
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return s.message, nil
}

func (s *stubService) History(context.Context) ([]database.Message, error) {
	if s.historyErr != nil {
		return nil, s.historyErr
	}
	return s.history, nil
}

func (s *stubService) Summarize(context.Context) (string, error) {
	return s.summary, nil
}

type stubStore struct {
	database.Store
	pingErr error
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func newTestRouter(t *testing.T, svc ChatService, store database.Store) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.ServerConfig{
		Host:            "127.0.0.1",
		Port:            8080,
		ShutdownTimeout: 5 * time.Second,
		MaxAudioBytes:   1 << 20,
	}
	return NewRouter(svc, store, cfg, t.TempDir(), "/static/audio", logger)
}

func sampleMessage() *database.Message {
	return &database.Message{
		ID:             1,
		Role:           "doctor",
		OriginalText:   "Take two tablets daily",
		TranslatedText: "Tome dos tabletas al día",
		OriginalLang:   database.LangAuto,
		TargetLang:     "Spanish",
		Timestamp:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPostTextReturnsCreatedMessage(t *testing.T) {
	t.Parallel()

	svc := &stubService{message: sampleMessage()}
	router := newTestRouter(t, svc, &stubStore{})

	body := `{"role":"doctor","text":"Take two tablets daily","target_lang":"Spanish"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got database.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Tome dos tabletas al día", got.TranslatedText)

	assert.Equal(t, "doctor", svc.textIn.Role)
	assert.Equal(t, "Spanish", svc.textIn.TargetLang)
}

func TestPostTextMissingFieldIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{}, &stubStore{})

	body := `{"role":"doctor","text":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostTextServiceFailureIsServerError(t *testing.T) {
	t.Parallel()

	svc := &stubService{submitErr: errors.New("db down")}
	router := newTestRouter(t, svc, &stubStore{})

	body := `{"role":"doctor","text":"hi","target_lang":"Spanish"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func audioForm(t *testing.T, fields map[string]string, filename string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPostAudioReturnsCreatedMessage(t *testing.T) {
	t.Parallel()

	msg := sampleMessage()
	msg.OriginalLang = database.LangAudioAuto
	msg.OriginalAudioURL = "/static/audio/audio_abc.m4a"
	svc := &stubService{message: msg}
	router := newTestRouter(t, svc, &stubStore{})

	buf, contentType := audioForm(t, map[string]string{
		"role":        "patient",
		"target_lang": "English",
	}, "recording.m4a", []byte("fake-audio"))

	req := httptest.NewRequest(http.MethodPost, "/chat/audio", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got database.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, database.LangAudioAuto, got.OriginalLang)
	assert.NotEmpty(t, got.OriginalAudioURL)

	assert.Equal(t, "patient", svc.audioIn.Role)
	assert.Equal(t, "recording.m4a", svc.audioIn.Filename)
	assert.Equal(t, []byte("fake-audio"), svc.audioIn.Data)
}

func TestPostAudioMissingFileIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{}, &stubStore{})

	buf, contentType := audioForm(t, map[string]string{
		"role":        "patient",
		"target_lang": "English",
	}, "", nil)

	req := httptest.NewRequest(http.MethodPost, "/chat/audio", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostAudioMissingRoleIsBadRequest(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{}, &stubStore{})

	buf, contentType := audioForm(t, map[string]string{"target_lang": "English"}, "a.wav", []byte("x"))

	req := httptest.NewRequest(http.MethodPost, "/chat/audio", buf)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetHistoryReturnsMessages(t *testing.T) {
	t.Parallel()

	svc := &stubService{history: []database.Message{*sampleMessage()}}
	router := newTestRouter(t, svc, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got []database.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "doctor", got[0].Role)
}

func TestGetHistoryEmptyIsEmptyArray(t *testing.T) {
	t.Parallel()

	svc := &stubService{history: []database.Message{}}
	router := newTestRouter(t, svc, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetSummarize(t *testing.T) {
	t.Parallel()

	svc := &stubService{summary: "No conversation logs found."}
	router := newTestRouter(t, svc, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/summarize", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "No conversation logs found.", got["summary"])
}

func TestStaticAudioServing(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio_abc.m4a"), []byte("blob"), 0o644))

	cfg := config.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second, MaxAudioBytes: 1 << 20}
	router := NewRouter(&stubService{}, &stubStore{}, cfg, dir, "/static/audio", logger)

	req := httptest.NewRequest(http.MethodGet, "/static/audio/audio_abc.m4a", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "blob", w.Body.String())
}

func TestCORSHeadersPresent(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{history: []database.Message{}}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{}, &stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthzDegraded(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &stubService{}, &stubStore{pingErr: errors.New("closed")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
