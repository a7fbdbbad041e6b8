package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/procure/backend/internal/application/workflow"
	"github.com/procure/backend/internal/infrastructure/locks"
	"github.com/procure/backend/internal/infrastructure/persistence"
	"github.com/procure/backend/internal/infrastructure/persistence/models"
	"github.com/procure/backend/internal/interfaces/http/dto"
	"github.com/procure/backend/internal/interfaces/http/handler"
	"github.com/procure/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	dto.RegisterValidators()
}

func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.DocumentModel{},
		&models.DocumentItemModel{},
		&models.SupplyModel{},
		&models.AuditLogModel{},
		&models.SequenceCounterModel{},
	))

	locker := locks.NewMemoryLocker()
	t.Cleanup(func() { _ = locker.Close() })

	orchestrator := workflow.NewOrchestrator(
		persistence.NewGormUnitOfWork(db), locker, workflow.NewPropagator(nil), nil)

	engine := gin.New()
	router.NewRouter(engine).Register(handler.NewDocumentHandler(orchestrator)).Setup()
	return engine
}

type apiResponse struct {
	Success bool `json:"success"`
	Data    json.RawMessage
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta *struct {
		Total int64 `json:"total"`
	} `json:"meta"`
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp apiResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func createDraft(t *testing.T, engine *gin.Engine) *workflow.DocumentDTO {
	t.Helper()
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/documents/purchase_request", gin.H{
		"period": "2026-07",
		"items": []gin.H{
			{"line_key": "a", "description": "Bond paper", "unit": "ream", "quantity": 10, "unit_cost": "35.25"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var doc workflow.DocumentDTO
	require.NoError(t, json.Unmarshal(resp.Data, &doc))
	return &doc
}

func TestCreateDocument(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	assert.Equal(t, "2026-07-0001", doc.Number)
	assert.Equal(t, "draft", string(doc.Status))
	assert.Equal(t, "352.50", doc.TotalAmount)
}

func TestCreateDocumentRejectsUnknownType(t *testing.T) {
	engine := newTestServer(t)
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/documents/shipping_manifest", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNSUPPORTED_TYPE", resp.Error.Code)
}

func TestCreateDocumentRejectsBadAmount(t *testing.T) {
	engine := newTestServer(t)
	w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/documents/purchase_request", gin.H{
		"items": []gin.H{
			{"line_key": "a", "quantity": 1, "unit_cost": "not-a-number"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_AMOUNT", resp.Error.Code)
}

func TestPerformAction(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	w, resp := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/documents/purchase_request/%s/actions", doc.ID), gin.H{"action": "submit"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated workflow.DocumentDTO
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "pending", string(updated.Status))
}

func TestPerformIllegalTransitionConflicts(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	w, resp := doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/documents/purchase_request/%s/actions", doc.ID), gin.H{"action": "award"})
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ILLEGAL_TRANSITION", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "allowed")
}

func TestGetDocument(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	w, resp := doJSON(t, engine, http.MethodGet,
		"/api/v1/documents/purchase_request/"+doc.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got workflow.DocumentDTO
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, doc.Number, got.Number)
	assert.Len(t, got.Items, 1)
}

func TestGetDocumentNotFound(t *testing.T) {
	engine := newTestServer(t)
	w, resp := doJSON(t, engine, http.MethodGet,
		"/api/v1/documents/purchase_request/b6f3a0c0-0000-4000-8000-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestListDocuments(t *testing.T) {
	engine := newTestServer(t)
	createDraft(t, engine)

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/documents/purchase_request?page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestListDocumentsByNumber(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	w, resp := doJSON(t, engine, http.MethodGet,
		"/api/v1/documents/purchase_request?number="+doc.Number, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got workflow.DocumentDTO
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, doc.ID, got.ID)
}

func TestDeleteDocument(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	w, _ := doJSON(t, engine, http.MethodDelete,
		"/api/v1/documents/purchase_request/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = doJSON(t, engine, http.MethodGet,
		"/api/v1/documents/purchase_request/"+doc.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditTrail(t *testing.T) {
	engine := newTestServer(t)
	doc := createDraft(t, engine)

	_, _ = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/api/v1/documents/purchase_request/%s/actions", doc.ID), gin.H{"action": "submit"})

	w, resp := doJSON(t, engine, http.MethodGet,
		fmt.Sprintf("/api/v1/documents/purchase_request/%s/audit", doc.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []workflow.AuditEntryDTO
	require.NoError(t, json.Unmarshal(resp.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "submit", string(entries[0].Action))
	assert.Equal(t, "draft", string(entries[0].FromStatus))
	assert.Equal(t, "pending", string(entries[0].ToStatus))
}
