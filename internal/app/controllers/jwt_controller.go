package controllers

import (
	"net/http"
	"time"

	"bloodbridge-http-service/internal/domain/models"
	"bloodbridge-http-service/internal/domain/services"
	"bloodbridge-http-service/internal/domain/services/container"
	"bloodbridge-http-service/internal/error/code"
	"bloodbridge-http-service/internal/error/response"

	"github.com/gin-gonic/gin"
)

// JWTController handles login and account registration
type JWTController struct {
	Ctx       *gin.Context
	Container *container.ServiceContainer
}

// NewJWTController creates a new JWT controller
func NewJWTController(ctx *gin.Context, container *container.ServiceContainer) *JWTController {
	return &JWTController{
		Ctx:       ctx,
		Container: container,
	}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"admin"`
	Password string `json:"password" binding:"required" example:"Secret@123"`
}

// Login authenticates a user of any role
// @Summary      Log in
// @Description  Authenticates an admin, donor or patient and returns a JWT
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  response.Response
// @Router       /auth/login [post]
func (c *JWTController) Login() {
	var req LoginRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	jwtService := c.Container.GetService("jwt").(services.InterfaceJWTService)
	result, err := jwtService.Login(req.Username, req.Password)
	if err != nil {
		response.FailWithMessage(c.Ctx, code.ErrPasswordIncorrect, "invalid username or password", nil)
		return
	}

	response.Success(c.Ctx, result)
}

// RegisterDonorRequest is the donor registration payload
type RegisterDonorRequest struct {
	Username    string  `json:"username" binding:"required" example:"jdoe"`
	Password    string  `json:"password" binding:"required,min=8" example:"Secret@123"`
	FirstName   string  `json:"first_name" binding:"required" example:"Jane"`
	LastName    string  `json:"last_name" example:"Doe"`
	BloodGroup  string  `json:"blood_group" binding:"required" example:"O+"`
	Mobile      string  `json:"mobile" binding:"required" example:"+15550001111"`
	Address     string  `json:"address" example:"12 Main Street"`
	Zipcode     string  `json:"zipcode" example:"10001"`
	Sex         string  `json:"sex" example:"F"`
	DateOfBirth *string `json:"date_of_birth" example:"1990-04-12"`
}

// RegisterDonor creates a donor account
// @Summary      Register donor
// @Description  Creates a new donor account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterDonorRequest true "Donor details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /auth/register/donor [post]
func (c *JWTController) RegisterDonor() {
	var req RegisterDonorRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	donor := &models.Donor{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		BloodGroup: req.BloodGroup,
		Mobile:     req.Mobile,
		Address:    req.Address,
		Zipcode:    req.Zipcode,
		Sex:        req.Sex,
	}
	if donor.Sex == "" {
		donor.Sex = models.SexUnknown
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			response.ParamError(c.Ctx, "date_of_birth must be YYYY-MM-DD")
			return
		}
		donor.DateOfBirth = &dob
	}

	donorService := c.Container.GetService("donor").(services.InterfaceDonorService)
	if err := donorService.RegisterDonor(donor); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "donor registered",
		"data": gin.H{
			"id":          donor.ID,
			"username":    donor.Username,
			"blood_group": donor.BloodGroup,
			"created_at":  donor.CreatedAt,
		},
	})
}

// RegisterPatientRequest is the patient registration payload
type RegisterPatientRequest struct {
	Username   string `json:"username" binding:"required" example:"psmith"`
	Password   string `json:"password" binding:"required,min=8" example:"Secret@123"`
	FirstName  string `json:"first_name" binding:"required" example:"Paul"`
	LastName   string `json:"last_name" example:"Smith"`
	Age        int    `json:"age" binding:"required" example:"42"`
	BloodGroup string `json:"blood_group" binding:"required" example:"B-"`
	Disease    string `json:"disease" example:"anemia"`
	Mobile     string `json:"mobile" binding:"required" example:"+15550002222"`
	Address    string `json:"address" example:"48 Oak Avenue"`
	Zipcode    string `json:"zipcode" example:"10002"`
}

// RegisterPatient creates a patient account
// @Summary      Register patient
// @Description  Creates a new patient account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterPatientRequest true "Patient details"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  response.Response
// @Router       /auth/register/patient [post]
func (c *JWTController) RegisterPatient() {
	var req RegisterPatientRequest
	if err := c.Ctx.ShouldBindJSON(&req); err != nil {
		response.ParamError(c.Ctx, "invalid request parameters: "+err.Error())
		return
	}

	patient := &models.Patient{
		Username:   req.Username,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Age:        req.Age,
		BloodGroup: req.BloodGroup,
		Disease:    req.Disease,
		Mobile:     req.Mobile,
		Address:    req.Address,
		Zipcode:    req.Zipcode,
	}

	patientService := c.Container.GetService("patient").(services.InterfacePatientService)
	if err := patientService.RegisterPatient(patient); err != nil {
		response.FailWithMessage(c.Ctx, code.ErrBind, err.Error(), nil)
		return
	}

	c.Ctx.JSON(http.StatusCreated, gin.H{
		"code":    0,
		"message": "patient registered",
		"data": gin.H{
			"id":          patient.ID,
			"username":    patient.Username,
			"blood_group": patient.BloodGroup,
			"created_at":  patient.CreatedAt,
		},
	})
}

// HandleJWTFunc returns a gin handler dispatching to the JWT controller
func HandleJWTFunc(container *container.ServiceContainer, method string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		controller := NewJWTController(ctx, container)

		switch method {
		case "login":
			controller.Login()
		case "registerDonor":
			controller.RegisterDonor()
		case "registerPatient":
			controller.RegisterPatient()
		default:
			ctx.JSON(http.StatusBadRequest, gin.H{
				"code":    400,
				"message": "invalid method",
				"data":    nil,
			})
		}
	}
}
