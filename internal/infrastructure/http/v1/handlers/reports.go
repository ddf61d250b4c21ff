package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"restopos/internal/domain/reports"
	"restopos/internal/infrastructure/http/v1/dto"
)

// ReportService builds the admin reports.
type ReportService interface {
	Sales(ctx context.Context, start, end string) (*reports.SalesReport, error)
	Profit(ctx context.Context, start, end string) (*reports.ProfitReport, error)
	Credit(ctx context.Context) (*reports.CreditSummary, error)
}

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service ReportService
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service ReportService) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Sales handles GET /admin/reports/sales
func (h *ReportsHandler) Sales(c *gin.Context) {
	var req dto.ReportRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Sales(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSalesReport(report))
}

// Profit handles GET /admin/reports/profit
func (h *ReportsHandler) Profit(c *gin.Context) {
	var req dto.ReportRangeRequest
	if !h.BindQuery(c, &req) {
		return
	}

	report, err := h.service.Profit(c.Request.Context(), req.StartDate, req.EndDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// Credit handles GET /admin/reports/credit
func (h *ReportsHandler) Credit(c *gin.Context) {
	summary, err := h.service.Credit(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, summary)
}
