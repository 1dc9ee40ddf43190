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

// PatientController handles patient profile requests
type PatientController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewPatientController creates a new patient controller
func NewPatientController(ctx *gin.Context, container *container.ServiceContainer) *PatientController {
	return &PatientController{
		Ctx:       ctx,
		Container: container,
	}
}

// GetPatients lists patients (admin)
// @Summary      List patients
// @Tags         Patient
// @Produce      json
// @Param        page query int false "page number, default 1"
// @Param        page_size query int false "page size, default 10"
// @Param        search query string false "search by name, username or disease"
// @Success      200  {object}  map[string]interface{}
// @Router       /patients [get]
// @Security     BearerAuth
func (c *PatientController) GetPatients() {
	page, pageSize := pagination(c.Ctx)
	search := c.Ctx.Query("search")

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	patients, total, err := patientService.GetAllPatients(page, pageSize, search)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list patients: "+err.Error(), nil)
		return
	}

	var patientResponses []gin.H
	for _, patient := range patients {
		patientResponses = append(patientResponses, gin.H{
			"id":          patient.ID,
			"username":    patient.Username,
			"name":        patient.GetName(),
			"age":         patient.Age,
			"blood_group": patient.BloodGroup,
			"disease":     patient.Disease,
			"mobile":      patient.Mobile,
			"created_at":  patient.CreatedAt,
		})
	}

	response.Success(c.Ctx, gin.H{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"data":      patientResponses,
	})
}

// GetPatient fetches one patient
// @Summary      Get patient
// @Tags         Patient
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  response.Response
// @Router       /patients/{id} [get]
// @Security     BearerAuth
func (c *PatientController) GetPatient() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	patient, err := patientService.GetPatientByID(id)
	if err != nil {
		if err.Error() == "patient not found" {
			response.NotFound(c.Ctx, "patient not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to fetch patient: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, patient)
}

// UpdatePatient applies partial updates to a patient profile
// @Summary      Update patient
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /patients/{id} [put]
// @Security     BearerAuth
func (c *PatientController) UpdatePatient() {
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

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	patient, err := patientService.UpdatePatient(id, updates)
	if err != nil {
		if err.Error() == "patient not found" {
			response.NotFound(c.Ctx, "patient not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrValidation, err.Error(), nil)
		return
	}

	response.Success(c.Ctx, patient)
}

// DeletePatient removes a patient account (admin)
// @Summary      Delete patient
// @Tags         Patient
// @Produce      json
// @Param        id path int true "Patient ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /patients/{id} [delete]
// @Security     BearerAuth
func (c *PatientController) DeletePatient() {
	id, err := pathID(c.Ctx)
	if err != nil {
		response.ParamError(c.Ctx, "invalid id parameter")
		return
	}

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	if err := patientService.DeletePatient(id); err != nil {
		if err.Error() == "patient not found" {
			response.NotFound(c.Ctx, "patient not found")
			return
		}
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to delete patient: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, nil)
}

// GetMyRequests lists the authenticated patient's blood requests
// @Summary      My blood requests
// @Tags         Patient
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /patients/me/requests [get]
// @Security     BearerAuth
func (c *PatientController) GetMyRequests() {
	patientID := middleware.CurrentUserID(c.Ctx)

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	requests, err := patientService.GetPatientRequests(patientID)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrDatabase, "failed to list requests: "+err.Error(), nil)
		return
	}

	response.Success(c.Ctx, requests)
}

// HandlePatientFunc returns a gin handler dispatching to the patient
// controller
func HandlePatientFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewPatientController(ctx, container)

		switch method {
		case "getPatients":
			controller.GetPatients()
		case "getPatient":
			controller.GetPatient()
		case "updatePatient":
			controller.UpdatePatient()
		case "deletePatient":
			controller.DeletePatient()
		case "getMyRequests":
			controller.GetMyRequests()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
