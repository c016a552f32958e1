package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/agritrack/internal/apperrors"
	"github.com/mamadbah2/agritrack/internal/domain/models"
	repo "github.com/mamadbah2/agritrack/internal/repository/mongodb"
	"github.com/mamadbah2/agritrack/internal/server/middleware"
	"github.com/mamadbah2/agritrack/internal/service/records"
	"github.com/mamadbah2/agritrack/internal/validation"
)

// RecordService is the surface the farm-data handlers depend on.
type RecordService interface {
	Create(ctx context.Context, ownerID string, raw validation.RawRecord) (*models.FarmRecord, error)
	List(ctx context.Context, ownerID string, filter repo.Filter, page, limit int64) (*records.ListResult, error)
	HealthSummary(ctx context.Context, ownerID string) (models.HealthSummary, error)
}

// FarmDataHandler adapts the record service to the HTTP surface.
type FarmDataHandler struct {
	svc    RecordService
	logger *zap.Logger
}

// NewFarmDataHandler constructs the HTTP handler adapter.
func NewFarmDataHandler(svc RecordService, logger *zap.Logger) *FarmDataHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FarmDataHandler{svc: svc, logger: logger}
}

// List serves GET /farm-data with filtering and pagination.
func (h *FarmDataHandler) List(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	filter := repo.Filter{
		Category: c.Query("category"),
		Crop:     c.Query("crop"),
	}
	if v := c.Query("startDate"); v != "" {
		parsed, err := validation.ParseDate(v)
		if err != nil {
			h.clientFault(c, "startDate must be an RFC 3339 timestamp or YYYY-MM-DD")
			return
		}
		filter.StartDate = parsed
	}
	if v := c.Query("endDate"); v != "" {
		parsed, err := validation.ParseDate(v)
		if err != nil {
			h.clientFault(c, "endDate must be an RFC 3339 timestamp or YYYY-MM-DD")
			return
		}
		filter.EndDate = parsed
	}

	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", repo.DefaultPageSize)

	result, err := h.svc.List(c.Request.Context(), identity.UserID, filter, page, limit)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(result.Records),
		"data":    result.Records,
		"pagination": gin.H{
			"page":  result.Page,
			"limit": result.Limit,
			"total": result.Total,
			"pages": result.Pages,
		},
	})
}

// Create serves POST /farm-data.
func (h *FarmDataHandler) Create(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	var raw validation.RawRecord
	if err := c.ShouldBindJSON(&raw); err != nil {
		h.logger.Warn("malformed farm data payload", zap.Error(err))
		h.clientFault(c, "invalid request body")
		return
	}

	record, err := h.svc.Create(c.Request.Context(), identity.UserID, raw)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status": "success",
		"data":   record,
		"health": gin.H{
			"score":  record.DataHealth.Score,
			"issues": record.DataHealth.Issues,
		},
	})
}

// HealthSummary serves GET /farm-data/health.
func (h *FarmDataHandler) HealthSummary(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		h.unauthenticated(c)
		return
	}

	summary, err := h.svc.HealthSummary(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   summary,
	})
}

func (h *FarmDataHandler) fail(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) && appErr.Kind == apperrors.KindValidation {
		h.clientFault(c, appErr.Message)
		return
	}

	h.logger.Error("farm data request failed",
		zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"status":  "error",
		"message": "internal server error",
	})
}

func (h *FarmDataHandler) clientFault(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": message,
	})
}

func (h *FarmDataHandler) unauthenticated(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"status":  "error",
		"message": "you are not logged in, please log in to get access",
	})
}

func queryInt(c *gin.Context, key string, fallback int64) int64 {
	value := c.Query(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
