package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"
	"bloodbridge-http-service/pkg/logger"

	"github.com/gin-gonic/gin"
)

// RequestController handles blood request submission and review
type RequestController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewRequestController creates a new blood request controller
func NewRequestController(ctx *gin.Context, container *container.ServiceContainer) *RequestController {
	return &RequestController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetRequests lists blood requests (admin)
// @Summary      List blood requests
// @Tags         BloodRequest
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        status query string false "filter by status" example:"Pending"
// @Param        blood_group query string false "filter by blood group"
// @Success      200  {object}  map[string]interface{}
// @Router       /requests [get]
// @Security     BearerAuth
func (c *RequestController) GetRequests() {
	page, pageSize := pagination(c.Ctx)
	status := c.Ctx.Query("status")
	bloodGroup := c.Ctx.Query("blood_group")

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	requests, total, err := requestService.GetAllRequests(page, pageSize, status, bloodGroup)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list requests: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      requests,
	})
}

// GetRequest fetches one blood request
// @Summary      Get blood request
// @Tags         BloodRequest
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /requests/{id} [get]
// @Security     BearerAuth
func (c *RequestController) GetRequest() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.GetRequestByID(id)
	if err != nil {
		if err.Error() == "request not found" {
			response.NotFound(c.Ctx, "request not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to fetch request: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, request)
}

// CreateRequestBody is the account-backed request payload
type CreateRequestBody struct {
	PatientName string `json:"patient_name" binding:"required" example:"John Doe"`
	PatientAge  int    `json:"patient_age" binding:"required" example:"34"`
	Reason      string `json:"reason" binding:"required" example:"surgery scheduled next week"`
	BloodGroup  string `json:"blood_group" binding:"required" example:"AB+"`
	Unit        uint   `json:"unit" binding:"required" example:"350"`
}

// CreateRequest creates a request for the authenticated donor or patient
// @Summary      Create blood request
// @Tags         BloodRequest
// @Accept       json
// @Produce      json
// @Param        request body CreateRequestBody true "Request details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /requests [post]
// @Security     BearerAuth
func (c *RequestController) CreateRequest() {
	userID := middleware.CurrentUserID(c.Ctx)
	role, _ := c.Ctx.Get("role")

	var body CreateRequestBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	request := &models.BloodRequest{
		PatientName: body.PatientName,
		PatientAge:  body.PatientAge,
		Reason:      body.Reason,
		BloodGroup:  body.BloodGroup,
		Unit:        body.Unit,
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)

	var err error
	switch role {
	case services.RoleDonor:
		err = requestService.CreateDonorRequest(userID, request)
	case services.RolePatient:
		err = requestService.CreatePatientRequest(userID, request)
	default:
		response.FailWithMessage(c.Ctx, code.ErrPermissionDenied, "only donors and patients can file requests", nil)
		return
	}
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Created(c.Ctx, request)
}

// CreateQuickRequest creates an anonymous request from the public form
// @Summary      Quick blood request
// @Description  Files a request without an account, rate limited per IP
// @Tags         BloodRequest
// @Accept       json
// @Produce      json
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /requests/quick [post]
func (c *RequestController) CreateQuickRequest() {
	var input services.QuickRequestInput
	if err := c.Ctx.ShouldBindJSON(&input); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.CreateQuickRequest(&input)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Created(c.Ctx, gin.H{
		"id":          request.ID,
		"status":      request.Status,
		"blood_group": request.BloodGroup,
		"unit":        request.Unit,
	})
}

// ApproveRequest approves a pending request (admin)
// @Summary      Approve blood request
// @Description  Deducts stock and alerts matching donors. Auto-rejects when stock is short.
// @Tags         BloodRequest
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /requests/{id}/approve [post]
// @Security     BearerAuth
func (c *RequestController) ApproveRequest() {
	adminID := middleware.CurrentUserID(c.Ctx)
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	result, err := requestService.ApproveRequest(adminID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestAlreadyProcessed):
			response.FailWithMessage(c.Ctx, code.ErrRequestAlreadyProcessed, err.Error(), nil)
		case err.Error() == "request not found":
			response.NotFound(c.Ctx, "request not found")
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to approve request: "+err.Error(), nil)
		}
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, result)
}

// RejectRequestBody carries the optional rejection reason
type RejectRequestBody struct {
	Reason string `json:"reason" example:"duplicate request"`
}

// RejectRequest rejects a pending request (admin)
// @Summary      Reject blood request
// @Tags         BloodRequest
// @Accept       json
// @Produce      json
// @Param        id path int true "Request ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /requests/{id}/reject [post]
// @Security     BearerAuth
func (c *RequestController) RejectRequest() {
	adminID := middleware.CurrentUserID(c.Ctx)
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	var body RejectRequestBody
	_ = c.Ctx.ShouldBindJSON(&body)

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	request, err := requestService.RejectRequest(adminID, id, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestAlreadyProcessed):
			response.FailWithMessage(c.Ctx, code.ErrRequestAlreadyProcessed, err.Error(), nil)
		case err.Error() == "request not found":
			response.NotFound(c.Ctx, "request not found")
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to reject request: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, request)
}

// GetMyRequests lists the authenticated donor's own requests
// @Summary      My blood requests
// @Tags         BloodRequest
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/me/requests [get]
// @Security     BearerAuth
func (c *RequestController) GetMyRequests() {
	donorID := middleware.CurrentUserID(c.Ctx)

	requestService := c.Container.GetService("request").(services.InterfaceRequestService)
	requests, err := requestService.GetRequestsForDonor(donorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list requests: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, requests)
}

// GetRecommendations returns ranked donors for a request (admin). Only
// eligible donors are returned unless include_ineligible is set. Default
// results are cached briefly per request.
// @Summary      Recommend donors
// @Tags         BloodRequest
// @Produce      json
// @Param        id path int true "Request ID"
// @Param        limit query int false "max results, default 10"
// @Param        include_ineligible query bool false "also return donors with eligibility blockers"
// @Success      200  {object}  map[string]interface{}
// @Router       /requests/{id}/recommendations [get]
// @Security     BearerAuth
func (c *RequestController) GetRecommendations() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}
	limit, _ := strconv.Atoi(c.Ctx.DefaultQuery("limit", "10"))
	eligibleOnly := c.Ctx.Query("include_ineligible") != "true"

	// Only the default query shape is cached
	cacheable := limit == 10 && eligibleOnly

	redisService := c.Container.GetService("redis").(services.InterfaceRedisService)
	var cached []services.DonorRecommendation
	if cacheable {
		if err := redisService.GetRecommendations(id, &cached); err == nil && len(cached) > 0 {
			response.Success(c.Ctx, cached)
			return
		}
	}

	recommenderService := c.Container.GetService("recommender").(services.InterfaceRecommenderService)
	recommendations, err := recommenderService.RecommendForRequest(id, limit, eligibleOnly)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to rank donors: "+err.Error(), nil)
		return
	}

	if cacheable {
		if err := redisService.CacheRecommendations(id, recommendations, 60*time.Second); err != nil {
			logger.Warning("failed to cache recommendations for request %d: %v", id, err)
		}
	}

	response.Success(c.Ctx, recommendations)
}

// HandleRequestFunc returns a gin handler dispatching to the request
// controller
func HandleRequestFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewRequestController(ctx, container)

		switch method {
		case "getRequests":
			controller.GetRequests()
		case "getRequest":
			controller.GetRequest()
		case "createRequest":
			controller.CreateRequest()
		case "createQuickRequest":
			controller.CreateQuickRequest()
		case "approveRequest":
			controller.ApproveRequest()
		case "rejectRequest":
			controller.RejectRequest()
		case "getMyRequests":
			controller.GetMyRequests()
		case "getRecommendations":
			controller.GetRecommendations()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
