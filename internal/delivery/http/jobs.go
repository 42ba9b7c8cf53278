package http

import (
	"fmt"
	"net/http"

	"trading-journal/internal/dto"
	"trading-journal/internal/model"
	"trading-journal/pkg/common"
	"trading-journal/pkg/logger"
	"trading-journal/pkg/middleware"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupJobs(base *echo.Group) {
	v1 := base.Group("/v1/jobs", middleware.NewAdminKeyMiddleware(common.HeaderAdminKey, h.cfg.API.AdminKey))
	{
		v1.GET("", h.ListJobs)
		v1.POST("/run", h.RunJobs)
	}
}

func (h *HttpAPIHandler) ListJobs(c echo.Context) error {
	jobs, err := h.service.SchedulerService.GetJobSchedule(c.Request().Context(), model.GetJobParam{})
	if err != nil {
		h.log.ErrorContext(c.Request().Context(), "Failed to list jobs", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, "failed to list jobs", nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("ok", jobs))
}

// RunJobs runs the due jobs, or the given jobs right away when job_ids is set.
func (h *HttpAPIHandler) RunJobs(c echo.Context) error {
	req := new(dto.RunJobsRequest)
	if c.Request().ContentLength > 0 {
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("Invalid request body"))
		}
	}

	ctx := c.Request().Context()
	response := dto.NewBaseResponse(http.StatusOK, "Start running jobs", nil)
	if len(req.JobIDs) == 0 {
		if err := h.service.SchedulerService.Execute(ctx); err != nil {
			response.Code = http.StatusInternalServerError
			response.Message = err.Error()
		}
		return c.JSON(response.Code, response)
	}

	failed := map[uint]string{}
	for _, id := range req.JobIDs {
		if err := h.service.SchedulerService.RunJobTask(ctx, id); err != nil {
			h.log.WarnContext(ctx, "Failed to run job", logger.ErrorField(err), logger.IntField("job_id", int(id)))
			failed[id] = err.Error()
		}
	}
	if len(failed) > 0 {
		response.Code = http.StatusMultiStatus
		response.Message = fmt.Sprintf("%d of %d jobs failed to start", len(failed), len(req.JobIDs))
		response.Data = failed
	}
	return c.JSON(response.Code, response)
}
