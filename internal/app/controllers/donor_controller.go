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

// DonorController handles donor profile and availability requests
type DonorController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewDonorController creates a new donor controller
func NewDonorController(ctx *gin.Context, container *container.ServiceContainer) *DonorController {
	return &DonorController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetDonors lists donors (admin)
// @Summary      List donors
// @Tags         Donor
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        search query string false "search by name, username or mobile"
// @Param        blood_group query string false "filter by blood group"
// @Success      200  {object}  map[string]interface{}
// @Router       /donors [get]
// @Security     BearerAuth
func (c *DonorController) GetDonors() {
	page, pageSize := pagination(c.Ctx)
	search := c.Ctx.Query("search")
	bloodGroup := c.Ctx.Query("blood_group")

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donors, total, err := donorService.GetAllDonors(page, pageSize, search, bloodGroup)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list donors: "+err.Error(), nil)
		return
	}

	var donorResponses []gin.H
	for _, donor := range donors {
		donorResponses = append(donorResponses, gin.H{
			"id":                donor.ID,
			"username":          donor.Username,
			"name":              donor.GetName(),
			"blood_group":       donor.BloodGroup,
			"mobile":            donor.Mobile,
			"zipcode":           donor.Zipcode,
			"is_available":      donor.IsAvailable,
			"location_verified": donor.LocationVerified,
			"last_donated_at":   donor.LastDonatedAt,
			"created_at":        donor.CreatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      donorResponses,
	})
}

// GetDonor fetches one donor's full profile
// @Summary      Get donor
// @Tags         Donor
// @Produce      json
// @Param        id path int true "Donor ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /donors/{id} [get]
// @Security     BearerAuth
func (c *DonorController) GetDonor() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donor, err := donorService.GetDonorByID(id)
	if err != nil {
		if err.Error() == "donor not found" {
			response.NotFound(c.Ctx, "donor not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to fetch donor: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, donor)
}

// UpdateDonor applies partial updates to a donor profile
// @Summary      Update donor
// @Tags         Donor
// @Accept       json
// @Produce      json
// @Param        id path int true "Donor ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/{id} [put]
// @Security     BearerAuth
func (c *DonorController) UpdateDonor() {
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

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donor, err := donorService.UpdateDonor(id, updates)
	if err != nil {
		if err.Error() == "donor not found" {
			response.NotFound(c.Ctx, "donor not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, donor)
}

// DeleteDonor removes a donor account (admin)
// @Summary      Delete donor
// @Tags         Donor
// @Produce      json
// @Param        id path int true "Donor ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/{id} [delete]
// @Security     BearerAuth
func (c *DonorController) DeleteDonor() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	if err := donorService.DeleteDonor(id); err != nil {
		if err.Error() == "donor not found" {
			response.NotFound(c.Ctx, "donor not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to delete donor: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// AvailabilityRequest toggles the caller's availability
type AvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// SetAvailability flips the authenticated donor's availability flag
// @Summary      Set availability
// @Tags         Donor
// @Accept       json
// @Produce      json
// @Param        request body AvailabilityRequest true "Availability"
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/me/availability [put]
// @Security     BearerAuth
func (c *DonorController) SetAvailability() {
	donorID := middleware.CurrentUserID(c.Ctx)

	var req AvailabilityRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donor, err := donorService.SetAvailability(donorID, *req.IsAvailable)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDonorNotFound, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"id":                      donor.ID,
		"is_available":            donor.IsAvailable,
		"availability_updated_at": donor.AvailabilityUpdatedAt,
	})
}

// UpdateMedicalProfile updates the authenticated donor's medical fields
// @Summary      Update medical profile
// @Tags         Donor
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/me/medical [put]
// @Security     BearerAuth
func (c *DonorController) UpdateMedicalProfile() {
	donorID := middleware.CurrentUserID(c.Ctx)

	var updates map[string]interface{}
	if err := c.Ctx.ShouldBindJSON(&updates); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donor, err := donorService.UpdateMedicalProfile(donorID, updates)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, donor)
}

// GetMyDonations lists the authenticated donor's donation history
// @Summary      My donation history
// @Tags         Donor
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/me/donations [get]
// @Security     BearerAuth
func (c *DonorController) GetMyDonations() {
	donorID := middleware.CurrentUserID(c.Ctx)

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	donations, err := donorService.GetDonorDonations(donorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list donations: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, donations)
}

// GetMyBadges lists the authenticated donor's badges
// @Summary      My badges
// @Tags         Donor
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /donors/me/badges [get]
// @Security     BearerAuth
func (c *DonorController) GetMyBadges() {
	donorID := middleware.CurrentUserID(c.Ctx)

	badgeService := c.Container.GetService("badge").(services.InterfaceBadgeService)
	badges, err := badgeService.GetDonorBadges(donorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list badges: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, badges)
}

// HandleDonorFunc returns a gin handler dispatching to the donor controller
func HandleDonorFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewDonorController(ctx, container)

		switch method {
		case "getDonors":
			controller.GetDonors()
		case "getDonor":
			controller.GetDonor()
		case "updateDonor":
			controller.UpdateDonor()
		case "deleteDonor":
			controller.DeleteDonor()
		case "setAvailability":
			controller.SetAvailability()
		case "updateMedicalProfile":
			controller.UpdateMedicalProfile()
		case "getMyDonations":
			controller.GetMyDonations()
		case "getMyBadges":
			controller.GetMyBadges()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
