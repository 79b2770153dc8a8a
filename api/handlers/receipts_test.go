package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NazarSenchuk/receipt-processor/api/middleware"
	"github.com/NazarSenchuk/receipt-processor/internal/enum"
	"github.com/NazarSenchuk/receipt-processor/internal/models"
)

type mockReceiptRepository struct {
	mock.Mock
}

func (m *mockReceiptRepository) Save(ctx context.Context, record *models.ReceiptRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockReceiptRepository) GetBySender(ctx context.Context, emailFrom string) ([]models.ReceiptRecord, error) {
	args := m.Called(ctx, emailFrom)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReceiptRecord), args.Error(1)
}

func setupRouter(repo *mockReceiptRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CORSMiddleware())

	v1 := r.Group("/v1")
	v1.Use(middleware.IdentityClaimsMiddleware())
	v1.GET("/receipts", ListReceipts(repo))

	return r
}

func sampleRecords() []models.ReceiptRecord {
	amount := models.Decimal("12.50")
	return []models.ReceiptRecord{
		{
			ReceiptID:   "msg-1_receipt.jpg",
			MessageID:   "msg-1",
			Filename:    "receipt.jpg",
			EmailFrom:   "jane@x.com",
			Status:      enum.ReceiptStatusProcessed,
			ReceiptData: &models.ReceiptFields{TotalAmount: &amount},
		},
	}
}

func TestListReceiptsMissingIdentity(t *testing.T) {
	repo := &mockReceiptRepository{}
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Email is required or user must be authenticated", body["error"])
	repo.AssertNotCalled(t, "GetBySender", mock.Anything, mock.Anything)
}

func TestListReceiptsByQueryParam(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "jane@x.com").Return(sampleRecords(), nil)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?email=jane@x.com", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Receipts retrieved successfully", body["message"])
	assert.Equal(t, float64(1), body["count"])
	items := body["items"].([]interface{})
	require.Len(t, items, 1)

	// amounts come back as raw JSON numbers, exact to the stored decimal
	assert.Contains(t, w.Body.String(), `"total_amount":12.50`)
}

func TestListReceiptsByClaimsHeader(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "jane@x.com").Return(sampleRecords(), nil)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	req.Header.Set(middleware.ClaimsHeader, `{"email": "jane@x.com"}`)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertCalled(t, "GetBySender", mock.Anything, "jane@x.com")
}

func TestListReceiptsClaimsOverrideQueryParam(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "claims@x.com").Return(sampleRecords(), nil)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?email=query@x.com", nil)
	req.Header.Set(middleware.ClaimsHeader, `{"email": "claims@x.com"}`)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertCalled(t, "GetBySender", mock.Anything, "claims@x.com")
}

func TestListReceiptsAlternateClaim(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "jane@x.com").Return(sampleRecords(), nil)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts", nil)
	req.Header.Set(middleware.ClaimsHeader, `{"cognito:email": "jane@x.com"}`)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListReceiptsNoneFound(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "nobody@x.com").Return([]models.ReceiptRecord{}, nil)
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?email=nobody@x.com", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "No receipts found for email: nobody@x.com", body["message"])
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["items"])
}

func TestListReceiptsRepositoryFailure(t *testing.T) {
	repo := &mockReceiptRepository{}
	repo.On("GetBySender", mock.Anything, "jane@x.com").Return(nil, errors.New("index not found"))
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/receipts?email=jane@x.com", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Database error", body["error"])

	// error responses still carry CORS headers
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestListReceiptsPreflight(t *testing.T) {
	repo := &mockReceiptRepository{}
	router := setupRouter(repo)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/receipts", nil)
	router.ServeHTTP(w, req)

	// preflights short-circuit before identity resolution
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "OPTIONS")
	repo.AssertNotCalled(t, "GetBySender", mock.Anything, mock.Anything)
}
