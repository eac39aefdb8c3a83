package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dharmasatrya/flightscan/internal/jobs"
	"github.com/dharmasatrya/flightscan/internal/models"
)

type JobRunner interface {
	Submit(ctx context.Context, req *models.SearchRequest) (string, error)
	Status(ctx context.Context, id string, offset, limit int) (*models.JobStatusResponse, error)
}

type SearchHandler struct {
	searcher jobs.Searcher
	jobs     JobRunner
	logger   *zap.Logger
}

func NewSearchHandler(searcher jobs.Searcher, runner JobRunner, logger *zap.Logger) *SearchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchHandler{
		searcher: searcher,
		jobs:     runner,
		logger:   logger,
	}
}

// Search runs the whole search before responding.
func (h *SearchHandler) Search(c echo.Context) error {
	req, errResp := decodeSearchRequest(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	result, err := h.searcher.Run(c.Request().Context(), req, nil)
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "search_error",
			Message: "Failed to search flights: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, result)
}

func (h *SearchHandler) SearchAsync(c echo.Context) error {
	req, errResp := decodeSearchRequest(c)
	if errResp != nil {
		return c.JSON(errResp.Code, errResp)
	}

	id, err := h.jobs.Submit(c.Request().Context(), req)
	if errors.Is(err, jobs.ErrQueueFull) {
		return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "queue_full",
			Message: "Too many searches in progress, try again shortly",
			Code:    http.StatusServiceUnavailable,
		})
	}
	if err != nil {
		h.logger.Error("failed to start search job", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "job_error",
			Message: "Failed to start search: " + err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusAccepted, models.JobAcceptedResponse{
		JobID:  id,
		Status: "accepted",
	})
}

func (h *SearchHandler) Status(c echo.Context) error {
	offset, limit := 0, jobs.DefaultPageSize
	if err := echo.QueryParamsBinder(c).
		Int("offset", &offset).
		Int("limit", &limit).
		BindError(); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "offset and limit must be integers",
			Code:    http.StatusBadRequest,
		})
	}

	resp, err := h.jobs.Status(c.Request().Context(), c.Param("jobId"), offset, limit)
	if errors.Is(err, jobs.ErrJobNotFound) {
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "job_not_found",
			Message: "Job not found",
			Code:    http.StatusNotFound,
		})
	}
	if err != nil {
		h.logger.Error("failed to read job", zap.String("job_id", c.Param("jobId")), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "job_error",
			Message: "Failed to read job status",
			Code:    http.StatusInternalServerError,
		})
	}

	return c.JSON(http.StatusOK, resp)
}

func decodeSearchRequest(c echo.Context) (*models.SearchRequest, *models.ErrorResponse) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, &models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		}
	}

	if err := validateBody(body); err != nil {
		return nil, &models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		}
	}

	var req models.SearchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to parse request body: " + err.Error(),
			Code:    http.StatusBadRequest,
		}
	}

	if err := req.Validate(); err != nil {
		return nil, &models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		}
	}
	return &req, nil
}

func HomeHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "flightscan is running",
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
