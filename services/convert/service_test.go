package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflow-codegen/api/pkg/n8n"
)

// stubRepo implements WorkflowRepo for testing without a database.
type stubRepo struct {
	record *WorkflowRecord
	saved  *ConversionResult
	err    error
}

func (r *stubRepo) Create(_ context.Context, name string, def *n8n.Workflow) (*WorkflowRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	now := time.Now().UTC()
	r.record = &WorkflowRecord{
		ID: "11111111-2222-3333-4444-555555555555", Name: name, Definition: def,
		CreatedAt: now, UpdatedAt: now,
	}
	return r.record, nil
}

func (r *stubRepo) Get(_ context.Context, _ string) (*WorkflowRecord, error) {
	return r.record, r.err
}

func (r *stubRepo) SaveConversion(_ context.Context, result *ConversionResult) error {
	r.saved = result
	return r.err
}

func setupRouter(repo *stubRepo) *mux.Router {
	svc := &Service{repo: repo}
	router := mux.NewRouter()
	svc.LoadRoutes(router.PathPrefix("/api/v1").Subrouter())
	return router
}

func storedSample() *WorkflowRecord {
	now := time.Now().UTC()
	wf := sampleWorkflow
	return &WorkflowRecord{
		ID: sampleWorkflowID, Name: wf.Name, Definition: &wf,
		CreatedAt: now, UpdatedAt: now,
	}
}

func TestHandleImportWorkflow_Success(t *testing.T) {
	repo := &stubRepo{}
	router := setupRouter(repo)

	body, err := json.Marshal(sampleWorkflow)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/workflows", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var result WorkflowRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "Order Processing", result.Name)
	assert.NotEmpty(t, result.ID)
	require.NotNil(t, result.Definition)
	assert.Len(t, result.Definition.Nodes, 8)
}

func TestHandleImportWorkflow_DefaultName(t *testing.T) {
	repo := &stubRepo{}
	router := setupRouter(repo)

	req := httptest.NewRequest("POST", "/api/v1/workflows", bytes.NewReader([]byte(`{"nodes": [], "connections": {}}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var result WorkflowRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "Untitled Workflow", result.Name)
}

func TestHandleImportWorkflow_InvalidJSON(t *testing.T) {
	repo := &stubRepo{}
	router := setupRouter(repo)

	req := httptest.NewRequest("POST", "/api/v1/workflows", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Equal(t, "invalid workflow document", result["message"])
}

func TestHandleGetWorkflow_Success(t *testing.T) {
	repo := &stubRepo{record: storedSample()}
	router := setupRouter(repo)

	req := httptest.NewRequest("GET", "/api/v1/workflows/"+sampleWorkflowID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result WorkflowRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, sampleWorkflowID, result.ID)
	assert.Equal(t, "Order Processing", result.Name)
}

func TestHandleGetWorkflow_NotFound(t *testing.T) {
	repo := &stubRepo{}
	router := setupRouter(repo)

	req := httptest.NewRequest("GET", "/api/v1/workflows/00000000-0000-0000-0000-000000000000", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var result map[string]string
	json.NewDecoder(w.Body).Decode(&result)
	assert.Equal(t, "workflow not found", result["message"])
}

func TestHandleConvertWorkflow_Success(t *testing.T) {
	repo := &stubRepo{record: storedSample()}
	router := setupRouter(repo)

	req := httptest.NewRequest("POST", "/api/v1/workflows/"+sampleWorkflowID+"/convert", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ConversionResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.NotEmpty(t, result.ConversionID)
	assert.Equal(t, sampleWorkflowID, result.WorkflowID)
	assert.Equal(t, "Order Processing", result.WorkflowName)
	assert.Len(t, result.ExecutionOrder, 8)
	assert.Len(t, result.Steps, 8)
	assert.Empty(t, result.Warnings)

	require.NotNil(t, repo.saved)
	assert.Equal(t, result.ConversionID, repo.saved.ConversionID)
}

func TestHandleConvertWorkflow_NotFound(t *testing.T) {
	repo := &stubRepo{}
	router := setupRouter(repo)

	req := httptest.NewRequest("POST", "/api/v1/workflows/00000000-0000-0000-0000-000000000000/convert", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Nil(t, repo.saved)
}

func TestJSONMiddleware(t *testing.T) {
	repo := &stubRepo{record: storedSample()}
	router := setupRouter(repo)

	req := httptest.NewRequest("GET", "/api/v1/workflows/"+sampleWorkflowID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}
