package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/datachat/internal/document"
	"github.com/xxxsen/datachat/internal/model"
	appErr "github.com/xxxsen/datachat/internal/pkg/errors"
)

type stubService struct {
	registerName   string
	registerDocs   []document.Document
	registerPrompt string
	answerName     string
	answerQuery    string
	answerTopK     int
	answer         string
	answerErr      error
	deleteErr      error
	datasets       map[string]*model.Dataset
}

func (s *stubService) Register(ctx context.Context, name string, docs []document.Document, systemPrompt string) error {
	s.registerName = name
	s.registerDocs = docs
	s.registerPrompt = systemPrompt
	return nil
}

func (s *stubService) Answer(ctx context.Context, name string, query string, topK int) (string, error) {
	s.answerName = name
	s.answerQuery = query
	s.answerTopK = topK
	return s.answer, s.answerErr
}

func (s *stubService) Delete(ctx context.Context, name string) error {
	return s.deleteErr
}

func (s *stubService) List(ctx context.Context) (map[string]*model.Dataset, error) {
	return s.datasets, nil
}

func newTestEngine(t *testing.T, svc DataChatService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	registry := document.NewRegistry()
	require.NoError(t, registry.Register("record", document.NewRecordFactory(document.RecordConfig{})))
	h := NewDatasetHandler(svc, registry)
	engine := gin.New()
	engine.POST("/datasets/:name/upload", h.Upload)
	engine.POST("/datasets/:name/chat", h.Chat)
	engine.DELETE("/datasets/:name", h.Delete)
	engine.GET("/datasets", h.List)
	engine.GET("/document-types", h.Types)
	return engine
}

func doJSON(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestUploadBuildsDocuments(t *testing.T) {
	svc := &stubService{}
	engine := newTestEngine(t, svc)

	body := `{
		"document_type": "record",
		"system_prompt": "You are a conference assistant.",
		"data": [
			{"id": 1, "title": "The Future of AI"},
			{"id": 2, "title": "Agile in Practice"}
		]
	}`
	w := doJSON(engine, http.MethodPost, "/datasets/conf-sessions/upload", body)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "uploaded and processed successfully")

	require.Equal(t, "conf-sessions", svc.registerName)
	require.Equal(t, "You are a conference assistant.", svc.registerPrompt)
	require.Len(t, svc.registerDocs, 2)
	require.Equal(t, "1", svc.registerDocs[0].ID())
	require.Contains(t, svc.registerDocs[0].Text(), "title: The Future of AI")
}

func TestUploadRejectsUnknownType(t *testing.T) {
	svc := &stubService{}
	engine := newTestEngine(t, svc)

	w := doJSON(engine, http.MethodPost, "/datasets/conf/upload", `{"document_type":"video","data":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "unknown document type")
	require.Empty(t, svc.registerName)
}

func TestUploadRequiresDocumentType(t *testing.T) {
	engine := newTestEngine(t, &stubService{})
	w := doJSON(engine, http.MethodPost, "/datasets/conf/upload", `{"data":[{"id":1}]}`)
	require.Contains(t, w.Body.String(), "document_type required")
}

func TestChat(t *testing.T) {
	svc := &stubService{answer: "two sessions"}
	engine := newTestEngine(t, svc)

	w := doJSON(engine, http.MethodPost, "/datasets/conf/chat", `{"message":"what sessions?","top_k":5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "two sessions")
	require.Equal(t, "conf", svc.answerName)
	require.Equal(t, "what sessions?", svc.answerQuery)
	require.Equal(t, 5, svc.answerTopK)
}

func TestChatRequiresMessage(t *testing.T) {
	svc := &stubService{}
	engine := newTestEngine(t, svc)
	w := doJSON(engine, http.MethodPost, "/datasets/conf/chat", `{"top_k":5}`)
	require.Contains(t, w.Body.String(), "message required")
	require.Empty(t, svc.answerName)
}

func TestChatUnknownDataset(t *testing.T) {
	svc := &stubService{answerErr: appErr.ErrDatasetNotFound}
	engine := newTestEngine(t, svc)
	w := doJSON(engine, http.MethodPost, "/datasets/ghost/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "dataset not found")
}

func TestDeleteUnknownDataset(t *testing.T) {
	svc := &stubService{deleteErr: appErr.ErrDatasetNotFound}
	engine := newTestEngine(t, svc)
	w := doJSON(engine, http.MethodDelete, "/datasets/ghost", "")
	require.Contains(t, w.Body.String(), "dataset not found")
}

func TestTypes(t *testing.T) {
	engine := newTestEngine(t, &stubService{})
	req := httptest.NewRequest(http.MethodGet, "/document-types", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "record")
}
