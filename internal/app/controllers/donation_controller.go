package controllers

import (
	"errors"
	"net/http"

	"bloodbridge-http-service/internal/app/middleware"
	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// DonationController handles donation offers and their review
type DonationController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDonationController creates a new donation controller
func NewDonationController(ctx *gin.Context, container *container.ServiceContainer) *DonationController {
	return &DonationController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetDonations lists donations (admin)
// @Summary      List donations
// @Tags         Donation
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        status query string false "filter by status" example:"Pending"
// @Param        blood_group query string false "filter by blood group"
// @Success      200  {object}  map[string]interface{}
// @Router       /donations [get]
// @Security     BearerAuth
func (c *DonationController) GetDonations() {
	page, pageSize := pagination(c.Ctx)
	status := c.Ctx.Query("status")
	bloodGroup := c.Ctx.Query("blood_group")

	donationService := c.Container.GetService("donation").(services.InterfaceDonationService)
	donations, total, err := donationService.GetAllDonations(page, pageSize, status, bloodGroup)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list donations: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      donations,
	})
}

// CreateDonationBody is the donation offer payload
type CreateDonationBody struct {
	Disease    string `json:"disease" example:"none"`
	Age        int    `json:"age" binding:"required" example:"29"`
	BloodGroup string `json:"blood_group" binding:"required" example:"O-"`
	Unit       uint   `json:"unit" binding:"required" example:"450"`
}

// CreateDonation files a donation offer for the authenticated donor
// @Summary      Offer donation
// @Tags         Donation
// @Accept       json
// @Produce      json
// @Param        request body CreateDonationBody true "Donation details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /donations [post]
// @Security     BearerAuth
func (c *DonationController) CreateDonation() {
	donorID := middleware.CurrentUserID(c.Ctx)

	var body CreateDonationBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	donation := &models.BloodDonate{
		Disease:    body.Disease,
		Age:        body.Age,
		BloodGroup: body.BloodGroup,
		Unit:       body.Unit,
	}

	donationService := c.Container.GetService("donation").(services.InterfaceDonationService)
	if err := donationService.CreateDonation(donorID, donation); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDonorNotEligible, err.Error(), nil)
		return
	}

	response.Created(c.Ctx, donation)
}

// ApproveDonation approves a pending donation (admin)
// @Summary      Approve donation
// @Description  Adds the donated units to stock and stamps the donor's last donation date
// @Tags         Donation
// @Produce      json
// @Param        id path int true "Donation ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /donations/{id}/approve [post]
// @Security     BearerAuth
func (c *DonationController) ApproveDonation() {
	adminID := middleware.CurrentUserID(c.Ctx)
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	donationService := c.Container.GetService("donation").(services.InterfaceDonationService)
	donation, err := donationService.ApproveDonation(adminID, id)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDonationAlreadyProcessed):
			response.FailWithMessage(c.Ctx, code.ErrDonationAlreadyProcessed, err.Error(), nil)
		case err.Error() == "donation not found":
			response.NotFound(c.Ctx, "donation not found")
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to approve donation: "+err.Error(), nil)
		}
		return
	}

	middleware.PurgeCache()
	response.Success(c.Ctx, donation)
}

// RejectDonation rejects a pending donation (admin)
// @Summary      Reject donation
// @Tags         Donation
// @Accept       json
// @Produce      json
// @Param        id path int true "Donation ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /donations/{id}/reject [post]
// @Security     BearerAuth
func (c *DonationController) RejectDonation() {
	adminID := middleware.CurrentUserID(c.Ctx)
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	var body RejectRequestBody
	_ = c.Ctx.ShouldBindJSON(&body)

	donationService := c.Container.GetService("donation").(services.InterfaceDonationService)
	donation, err := donationService.RejectDonation(adminID, id, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDonationAlreadyProcessed):
			response.FailWithMessage(c.Ctx, code.ErrDonationAlreadyProcessed, err.Error(), nil)
		case err.Error() == "donation not found":
			response.NotFound(c.Ctx, "donation not found")
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to reject donation: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, donation)
}

// HandleDonationFunc returns a gin handler dispatching to the donation
// controller
func HandleDonationFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDonationController(ctx, container)

		switch method {
		case "getDonations":
			controller.GetDonations()
		case "createDonation":
			controller.CreateDonation()
		case "approveDonation":
			controller.ApproveDonation()
		case "rejectDonation":
			controller.RejectDonation()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
