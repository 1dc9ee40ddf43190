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

// AppointmentController handles donation slots and bookings
type AppointmentController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewAppointmentController creates a new appointment controller
func NewAppointmentController(ctx *gin.Context, container *container.ServiceContainer) *AppointmentController {
	return &AppointmentController{
		Ctx:       ctx,
		Container: container,
	}
}

// CreateSlotBody is the donation slot payload
type CreateSlotBody struct {
	StartsAt time.Time `json:"starts_at" binding:"required" example:"2026-09-01T09:00:00Z"`
	EndsAt   time.Time `json:"ends_at" binding:"required" example:"2026-09-01T12:00:00Z"`
	Capacity int       `json:"capacity" binding:"required" example:"12"`
	Location string    `json:"location" example:"Central Blood Bank, Hall B"`
}

// CreateSlot opens a donation slot (admin)
// @Summary      Create donation slot
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        request body CreateSlotBody true "Slot details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /appointments/slots [post]
// @Security     BearerAuth
func (c *AppointmentController) CreateSlot() {
	var body CreateSlotBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	slot, err := appointmentService.CreateSlot(body.StartsAt, body.EndsAt, body.Capacity, body.Location)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Created(c.Ctx, slot)
}

// GetSlots lists upcoming donation slots
// @Summary      Upcoming slots
// @Tags         Appointment
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Success      200  {object}  map[string]interface{}
// @Router       /appointments/slots [get]
// @Security     BearerAuth
func (c *AppointmentController) GetSlots() {
	page, pageSize := pagination(c.Ctx)

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	slots, total, err := appointmentService.GetUpcomingSlots(page, pageSize)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list slots: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      slots,
	})
}

// DeleteSlot removes a slot without active bookings (admin)
// @Summary      Delete slot
// @Tags         Appointment
// @Produce      json
// @Param        id path int true "Slot ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /appointments/slots/{id} [delete]
// @Security     BearerAuth
func (c *AppointmentController) DeleteSlot() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	if err := appointmentService.DeleteSlot(id); err != nil {
		switch err.Error() {
		case "slot not found":
			response.NotFound(c.Ctx, "slot not found")
		case "slot still has active bookings":
			response.FailWithMessage(c.Ctx, code.ErrAppointmentInvalidTransition, err.Error(), nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to delete slot: "+err.Error(), nil)
		}
		return
	}

	response.Success(c.Ctx, nil)
}

// BookAppointmentBody carries the chosen slot
type BookAppointmentBody struct {
	SlotID uint `json:"slot_id" binding:"required" example:"3"`
}

// BookAppointment books the authenticated donor into a slot
// @Summary      Book appointment
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Param        request body BookAppointmentBody true "Slot choice"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /appointments [post]
// @Security     BearerAuth
func (c *AppointmentController) BookAppointment() {
	donorID := middleware.CurrentUserID(c.Ctx)

	var body BookAppointmentBody
	if err := c.Ctx.ShouldBindJSON(&body); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointment, err := appointmentService.BookAppointment(donorID, body.SlotID)
	if err != nil {
		switch err.Error() {
		case "slot not found":
			response.NotFound(c.Ctx, "slot not found")
		case "slot is full":
			response.FailWithMessage(c.Ctx, code.ErrSlotFull, err.Error(), nil)
		default:
			response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		}
		return
	}

	response.Created(c.Ctx, appointment)
}

// CancelAppointment cancels one of the donor's active bookings
// @Summary      Cancel appointment
// @Tags         Appointment
// @Produce      json
// @Param        id path int true "Appointment ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /appointments/{id} [delete]
// @Security     BearerAuth
func (c *AppointmentController) CancelAppointment() {
	donorID := middleware.CurrentUserID(c.Ctx)
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	if err := appointmentService.CancelAppointment(donorID, id); err != nil {
		if err.Error() == "active appointment not found" {
			response.FailWithMessage(c.Ctx, code.ErrAppointmentNotFound, err.Error(), nil)
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to cancel appointment: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetMyAppointments lists the authenticated donor's bookings
// @Summary      My appointments
// @Tags         Appointment
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /appointments [get]
// @Security     BearerAuth
func (c *AppointmentController) GetMyAppointments() {
	donorID := middleware.CurrentUserID(c.Ctx)

	appointmentService := c.Container.GetService("appointment").(services.InterfaceAppointmentService)
	appointments, err := appointmentService.GetDonorAppointments(donorID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list appointments: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, appointments)
}

// HandleAppointmentFunc returns a gin handler dispatching to the
// appointment controller
func HandleAppointmentFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewAppointmentController(ctx, container)

		switch method {
		case "createSlot":
			controller.CreateSlot()
		case "getSlots":
			controller.GetSlots()
		case "deleteSlot":
			controller.DeleteSlot()
		case "bookAppointment":
			controller.BookAppointment()
		case "cancelAppointment":
			controller.CancelAppointment()
		case "getMyAppointments":
			controller.GetMyAppointments()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
