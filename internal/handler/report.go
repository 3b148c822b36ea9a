package handler

import (
	"fmt"
	"net/http"

	"talon/internal/middleware"
	"talon/internal/models"
	"talon/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler interface {
	Daily(c *gin.Context)
	Weekly(c *gin.Context)
}

type reportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService service.ReportService, logger *zap.Logger) ReportHandler {
	return &reportHandler{reportService: reportService, logger: logger}
}

// Daily serves GET /reports/day?date=YYYY-MM-DD; no date means today.
func (h *reportHandler) Daily(c *gin.Context) {
	canteen, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	date, err := dateQuery(c, "date")
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.reportService.Daily(c.Request.Context(), canteen, date)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Weekly serves GET /reports/week?start=YYYY-MM-DD; no start means the seven
// days ending today.
func (h *reportHandler) Weekly(c *gin.Context) {
	canteen, ok := middleware.CurrentUser(c)
	if !ok {
		respondError(c, h.logger, service.ErrInvalidCredentials)
		return
	}

	start, err := dateQuery(c, "start")
	if err != nil {
		badRequest(c, err)
		return
	}

	report, err := h.reportService.Weekly(c.Request.Context(), canteen, start)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func dateQuery(c *gin.Context, name string) (*models.Date, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	d, err := models.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", name, raw)
	}
	return &d, nil
}
