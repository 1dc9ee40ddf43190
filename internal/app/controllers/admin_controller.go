package controllers

import (
	"net/http"
	"strconv"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// AdminController handles admin account management and the dashboard
type AdminController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAdminController creates a new admin controller
func NewAdminController(ctx *gin.Context, container *container.ServiceContainer) *AdminController {
	return &AdminController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetAdmins lists admin accounts
// @Summary      List admins
// @Tags         Admin
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Success      200  {object}  map[string]interface{}
// @Router       /admins [get]
// @Security     BearerAuth
func (c *AdminController) GetAdmins() {
	page, pageSize := pagination(c.Ctx)

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	admins, total, err := adminService.GetAllAdmins(page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list admins: "+err.Error(), nil)
		return
	}

	var adminResponses []gin.H
	for _, admin := range admins {
		adminResponses = append(adminResponses, gin.H{
			"id":         admin.ID,
			"username":   admin.Username,
			"email":      admin.Email,
			"phone":      admin.Phone,
			"created_at": admin.CreatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      adminResponses,
	})
}

// CreateAdminRequest is the admin creation payload
type CreateAdminRequest struct {
	Username string `json:"username" binding:"required" example:"ops"`
	Password string `json:"password" binding:"required,min=8" example:"Secret@123"`
	Email    string `json:"email" example:"ops@example.com"`
	Phone    string `json:"phone" example:"+15550003333"`
}

// CreateAdmin creates an admin account
// @Summary      Create admin
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body CreateAdminRequest true "Admin details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /admins [post]
// @Security     BearerAuth
func (c *AdminController) CreateAdmin() {
	var req CreateAdminRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	admin := &models.Admin{
		Username: req.Username,
		Password: req.Password,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	if err := adminService.CreateAdmin(admin); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrAccountAlreadyExist, err.Error(), nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
	})
}

// UpdateAdmin applies partial updates to an admin account
// @Summary      Update admin
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id path int true "Admin ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /admins/{id} [put]
// @Security     BearerAuth
func (c *AdminController) UpdateAdmin() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	var updates map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&updates); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	admin, err := adminService.UpdateAdmin(id, updates)
	if err != nil {
		if err.Error() == "admin not found" {
			response.NotFound(c.Ctx, "admin not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to update admin: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":       admin.ID,
		"username": admin.Username,
		"email":    admin.Email,
		"phone":    admin.Phone,
	})
}

// DeleteAdmin removes an admin account
// @Summary      Delete admin
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Admin ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /admins/{id} [delete]
// @Security     BearerAuth
func (c *AdminController) DeleteAdmin() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	if err := adminService.DeleteAdmin(id); err != nil {
		if err.Error() == "admin not found" {
			response.NotFound(c.Ctx, "admin not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetDashboard returns the admin dashboard counters
// @Summary      Admin dashboard
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /admins/dashboard [get]
// @Security     BearerAuth
func (c *AdminController) GetDashboard() {
	adminService := c.Container.GetService("admin").(services.InterfaceAdminService)
	stats, err := adminService.GetDashboardStats()
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to build dashboard: "+err.Error(), nil)
		return
	}
	response.Success(c.Ctx, stats)
}

// GetAuditLogs lists admin action audit entries
// @Summary      List audit logs
// @Tags         Admin
// @Produce      json
// @Param        action query string false "filter by action"
// @Success      200  {object}  map[string]interface{}
// @Router       /admins/audit-logs [get]
// @Security     BearerAuth
func (c *AdminController) GetAuditLogs() {
	page, pageSize := pagination(c.Ctx)
	action := c.Ctx.Query("action")

	auditService := c.Container.GetService("audit").(services.InterfaceAuditService)
	logs, total, err := auditService.GetAuditLogs(page, pageSize, action, nil, nil)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list audit logs: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      logs,
	})
}

// HandleAdminFunc returns a gin handler dispatching to the admin controller
func HandleAdminFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAdminController(ctx, container)

		switch method {
		case "getAdmins":
			controller.GetAdmins()
		case "createAdmin":
			controller.CreateAdmin()
		case "updateAdmin":
			controller.UpdateAdmin()
		case "deleteAdmin":
			controller.DeleteAdmin()
		case "getDashboard":
			controller.GetDashboard()
		case "getAuditLogs":
			controller.GetAuditLogs()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}

// pagination reads the page and page_size query parameters with bounds
func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}

// pathID parses the :id path parameter
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	return uint(id), err
}
