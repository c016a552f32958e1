package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/apperrors"
	"github.com/mamadbah2/agritrack/internal/domain/models"
	repo "github.com/mamadbah2/agritrack/internal/repository/mongodb"
	"github.com/mamadbah2/agritrack/internal/server/middleware"
	"github.com/mamadbah2/agritrack/internal/service/records"
	"github.com/mamadbah2/agritrack/internal/validation"
)

type serviceMock struct {
	mock.Mock
}

func (m *serviceMock) Create(ctx context.Context, ownerID string, raw validation.RawRecord) (*models.FarmRecord, error) {
	args := m.Called(ctx, ownerID, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FarmRecord), args.Error(1)
}

func (m *serviceMock) List(ctx context.Context, ownerID string, filter repo.Filter, page, limit int64) (*records.ListResult, error) {
	args := m.Called(ctx, ownerID, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*records.ListResult), args.Error(1)
}

func (m *serviceMock) HealthSummary(ctx context.Context, ownerID string) (models.HealthSummary, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(models.HealthSummary), args.Error(1)
}

// newTestRouter mounts the handler behind a stub auth layer. A nil identity
// simulates a request that never authenticated.
func newTestRouter(svc RecordService, identity *models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewFarmDataHandler(svc, zap.NewNop())
	auth := func(c *gin.Context) {
		if identity != nil {
			middleware.SetIdentity(c, *identity)
		}
		c.Next()
	}

	r := gin.New()
	group := r.Group("/farm-data", auth)
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/health", handler.HealthSummary)
	return r
}

func doRequest(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestListWithoutIdentityRejected(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, nil)

	w := doRequest(r, http.MethodGet, "/farm-data", "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListReturnsPaginatedEnvelope(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1", Role: "farmer"})

	pageRecords := make([]models.FarmRecord, 10)
	svc.On("List", mock.Anything, "owner-1", repo.Filter{Category: "harvest"}, int64(2), int64(10)).
		Return(&records.ListResult{
			Records: pageRecords,
			Page:    2,
			Limit:   10,
			Total:   25,
			Pages:   3,
		}, nil)

	w := doRequest(r, http.MethodGet, "/farm-data?category=harvest&page=2&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(10), body["results"])

	pagination := body["pagination"].(map[string]any)
	assert.Equal(t, float64(2), pagination["page"])
	assert.Equal(t, float64(10), pagination["limit"])
	assert.Equal(t, float64(25), pagination["total"])
	assert.Equal(t, float64(3), pagination["pages"])
	svc.AssertExpectations(t)
}

func TestListParsesDateRange(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	expected := repo.Filter{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	svc.On("List", mock.Anything, "owner-1", expected, int64(1), int64(50)).
		Return(&records.ListResult{Records: []models.FarmRecord{}, Page: 1, Limit: 50}, nil)

	w := doRequest(r, http.MethodGet, "/farm-data?startDate=2024-01-01&endDate=2024-03-31", "")

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestListRejectsBadDateFilter(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	w := doRequest(r, http.MethodGet, "/farm-data?startDate=bogus", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateReturnsRecordWithHealthExcerpt(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	stored := &models.FarmRecord{
		ID:       primitive.NewObjectID(),
		UserID:   "owner-1",
		DataType: models.DataTypeManual,
		Category: models.CategoryHarvest,
		DataHealth: models.DataHealth{
			Score:  90,
			Issues: []string{"missing_unit"},
		},
	}
	svc.On("Create", mock.Anything, "owner-1", mock.MatchedBy(func(raw validation.RawRecord) bool {
		return raw.DataType == "manual" && raw.Category == "harvest"
	})).Return(stored, nil)

	w := doRequest(r, http.MethodPost, "/farm-data",
		`{"dataType":"manual","category":"harvest","date":"2024-05-20"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "success", body["status"])

	health := body["health"].(map[string]any)
	assert.Equal(t, float64(90), health["score"])
	assert.Equal(t, []any{"missing_unit"}, health["issues"])

	data := body["data"].(map[string]any)
	assert.Contains(t, data, "profit")
}

func TestCreateValidationFailureIsClientFault(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	svc.On("Create", mock.Anything, "owner-1", mock.Anything).
		Return(nil, apperrors.MissingField("date"))

	w := doRequest(r, http.MethodPost, "/farm-data", `{"dataType":"manual","category":"harvest"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "please specify date", body["message"])
}

func TestCreatePersistenceFailureIsServerFault(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	svc.On("Create", mock.Anything, "owner-1", mock.Anything).
		Return(nil, apperrors.Persistence("insert farm record", assert.AnError))

	w := doRequest(r, http.MethodPost, "/farm-data",
		`{"dataType":"manual","category":"harvest","date":"2024-05-20"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "error", body["status"])
}

func TestCreateMalformedBodyRejected(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	w := doRequest(r, http.MethodPost, "/farm-data", `{"dataType":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestHealthSummaryEnvelope(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-1"})

	svc.On("HealthSummary", mock.Anything, "owner-1").
		Return(models.HealthSummary{
			AverageHealthScore: 85,
			TotalRecords:       4,
			VerifiedRecords:    2,
			VerificationRate:   50,
		}, nil)

	w := doRequest(r, http.MethodGet, "/farm-data/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	data := body["data"].(map[string]any)
	assert.Equal(t, float64(85), data["averageHealthScore"])
	assert.Equal(t, float64(4), data["totalRecords"])
	assert.Equal(t, float64(2), data["verifiedRecords"])
	assert.Equal(t, float64(50), data["verificationRate"])
}

func TestHealthSummaryZeroRecords(t *testing.T) {
	svc := new(serviceMock)
	r := newTestRouter(svc, &models.Identity{UserID: "owner-2"})

	svc.On("HealthSummary", mock.Anything, "owner-2").
		Return(models.HealthSummary{}, nil)

	w := doRequest(r, http.MethodGet, "/farm-data/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, float64(0), data["averageHealthScore"])
	assert.Equal(t, float64(0), data["verificationRate"])
}
