package controllers

import (
	"net/http"
	"time"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// ReportController serves Excel exports and their history
type ReportController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewReportController creates a new report controller
func NewReportController(ctx *gin.Context, container *container.ServiceContainer) *ReportController {
	return &ReportController{
		Ctx:       ctx,
		Container: container,
	}
}

// ExportReport generates an Excel report and streams the file (admin)
// @Summary      Export report
// @Description  Builds an .xlsx export of requests, donations or stock
// @Tags         Report
// @Produce      application/octet-stream
// @Param        kind query string true "requests, donations or stock"
// @Param        from query string false "start date (2006-01-02)"
// @Param        to query string false "end date (2006-01-02)"
// @Success      200  {file}  binary
// @Failure      400  {object}  response.Response
// @Router       /reports/export [get]
// @Security     BearerAuth
func (c *ReportController) ExportReport() {
	adminID := middleware.CurrentUserID(c.Ctx)
	kind := c.Ctx.Query("kind")

	var from, to *time.Time
	if raw := c.Ctx.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.ParamError(c.Ctx, "invalid from date, expected 2006-01-02")
			return
		}
		from = &parsed
	}
	if raw := c.Ctx.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.ParamError(c.Ctx, "invalid to date, expected 2006-01-02")
			return
		}
		// Include the whole end day
		end := parsed.Add(24*time.Hour - time.Second)
		to = &end
	}

	reportService := c.Container.GetService("report").(services.InterfaceReportService)
	filePath, _, err := reportService.Export(adminID, kind, from, to)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	c.Ctx.FileAttachment(filePath, kind+"_report.xlsx")
}

// GetExportLogs lists past report exports (admin)
// @Summary      Export history
// @Tags         Report
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Success      200  {object}  map[string]interface{}
// @Router       /reports/exports [get]
// @Security     BearerAuth
func (c *ReportController) GetExportLogs() {
	page, pageSize := pagination(c.Ctx)

	auditService := c.Container.GetService("audit").(services.InterfaceAuditService)
	logs, total, err := auditService.GetExportLogs(page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list exports: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      logs,
	})
}

// HandleReportFunc returns a gin handler dispatching to the report controller
func HandleReportFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewReportController(ctx, container)

		switch method {
		case "exportReport":
			controller.ExportReport()
		case "getExportLogs":
			controller.GetExportLogs()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
