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

// FeedbackController handles ratings and comments
type FeedbackController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewFeedbackController creates a new feedback controller
func NewFeedbackController(ctx *gin.Context, container *container.ServiceContainer) *FeedbackController {
	return &FeedbackController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateFeedbackBody is the feedback payload
type CreateFeedbackBody struct {
	Rating  int    `json:"rating" binding:"required" example:"5"`
	Comment string `json:"comment" example:"smooth donation process"`
}

// CreateFeedback stores feedback from the authenticated donor or patient
// @Summary      Submit feedback
// @Tags         Feedback
// @Accept       json
// @Produce      json
// @Param        request body CreateFeedbackBody true "Feedback"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /feedback [post]
// @Security     BearerAuth
func (c *FeedbackController) CreateFeedback() {
	userID := middleware.CurrentUserID(c.Ctx)
	role, _ := c.Ctx.Get("role")

	var body CreateFeedbackBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)

	switch role {
	case services.RoleDonor:
		feedback, err := feedbackService.CreateDonorFeedback(userID, body.Rating, body.Comment)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
			return
		}
		response.Created(c.Ctx, feedback)
	case services.RolePatient:
		feedback, err := feedbackService.CreatePatientFeedback(userID, body.Rating, body.Comment)
		if err != nil {
			response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
			return
		}
		response.Created(c.Ctx, feedback)
	default:
		response.FailWithMessage(c.Ctx, code.ErrPermissionDenied, "only donors and patients can leave feedback", nil)
	}
}

// GetFeedback lists feedback entries (admin)
// @Summary      List feedback
// @Tags         Feedback
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        author_type query string false "donor or patient"
// @Success      200  {object}  map[string]interface{}
// @Router       /feedback [get]
// @Security     BearerAuth
func (c *FeedbackController) GetFeedback() {
	page, pageSize := pagination(c.Ctx)
	authorType := c.Ctx.Query("author_type")

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	feedback, total, err := feedbackService.GetAllFeedback(page, pageSize, authorType)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list feedback: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      feedback,
	})
}

// DeleteFeedback removes one feedback entry (admin)
// @Summary      Delete feedback
// @Tags         Feedback
// @Produce      json
// @Param        id path int true "Feedback ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /feedback/{id} [delete]
// @Security     BearerAuth
func (c *FeedbackController) DeleteFeedback() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	feedbackService := c.Container.GetService("feedback").(services.InterfaceFeedbackService)
	if err := feedbackService.DeleteFeedback(id); err != nil {
		if err.Error() == "feedback not found" {
			response.NotFound(c.Ctx, "feedback not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to delete feedback: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// HandleFeedbackFunc returns a gin handler dispatching to the feedback
// controller
func HandleFeedbackFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewFeedbackController(ctx, container)

		switch method {
		case "createFeedback":
			controller.CreateFeedback()
		case "getFeedback":
			controller.GetFeedback()
		case "deleteFeedback":
			controller.DeleteFeedback()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
