package controllers

import (
	"net/http"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// EmergencyController handles urgent donor broadcasts
type EmergencyController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewEmergencyController creates a new emergency broadcast controller
func NewEmergencyController(ctx *gin.Context, container *container.ServiceContainer) *EmergencyController {
	return &EmergencyController{
		Ctx:       ctx,
		Container: container,
	}
}

// SendBroadcastBody is the emergency broadcast payload
type SendBroadcastBody struct {
	BloodGroup    string `json:"blood_group" binding:"required" example:"O-"`
	Message       string `json:"message" binding:"required" example:"Mass casualty event at City Hospital, O- urgently needed"`
	Zipcode       string `json:"zipcode" example:"560001"`
	MaxRecipients int    `json:"max_recipients" example:"25"`
}

// SendBroadcast queues an urgent SMS broadcast to matching donors (admin)
// @Summary      Send emergency broadcast
// @Description  Selects eligible donors by blood group and queues SMS deliveries
// @Tags         Emergency
// @Accept       json
// @Produce      json
// @Param        request body SendBroadcastBody true "Broadcast"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /emergency/broadcasts [post]
// @Security     BearerAuth
func (c *EmergencyController) SendBroadcast() {
	adminID := middleware.CurrentUserID(c.Ctx)

	var body SendBroadcastBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	broadcastService := c.Container.GetService("broadcast").(services.InterfaceBroadcastService)
	broadcast, err := broadcastService.SendBroadcast(adminID, body.BloodGroup, body.Message, body.Zipcode, body.MaxRecipients)
	if err != nil {
		switch err.Error() {
		case "invalid blood group":
			response.FailWithMessage(c.Ctx, code.ErrInvalidBloodGroup, err.Error(), nil)
		case "no eligible donors for broadcast":
			response.FailWithMessage(c.Ctx, code.ErrBroadcastNoDonors, err.Error(), nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		}
		return
	}

	response.Created(c.Ctx, broadcast)
}

// GetBroadcasts lists past broadcasts (admin)
// @Summary      List broadcasts
// @Tags         Emergency
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Success      200  {object}  map[string]interface{}
// @Router       /emergency/broadcasts [get]
// @Security     BearerAuth
func (c *EmergencyController) GetBroadcasts() {
	page, pageSize := pagination(c.Ctx)

	broadcastService := c.Container.GetService("broadcast").(services.InterfaceBroadcastService)
	broadcasts, total, err := broadcastService.GetBroadcasts(page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list broadcasts: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      broadcasts,
	})
}

// GetBroadcast fetches one broadcast with its deliveries (admin)
// @Summary      Get broadcast
// @Tags         Emergency
// @Produce      json
// @Param        id path int true "Broadcast ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /emergency/broadcasts/{id} [get]
// @Security     BearerAuth
func (c *EmergencyController) GetBroadcast() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	broadcastService := c.Container.GetService("broadcast").(services.InterfaceBroadcastService)
	broadcast, err := broadcastService.GetBroadcastByID(id)
	if err != nil {
		if err.Error() == "broadcast not found" {
			response.NotFound(c.Ctx, "broadcast not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to fetch broadcast: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, broadcast)
}

// HandleEmergencyFunc returns a gin handler dispatching to the emergency
// controller
func HandleEmergencyFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewEmergencyController(ctx, container)

		switch method {
		case "sendBroadcast":
			controller.SendBroadcast()
		case "getBroadcasts":
			controller.GetBroadcasts()
		case "getBroadcast":
			controller.GetBroadcast()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
