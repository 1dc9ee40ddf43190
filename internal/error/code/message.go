package code

// Error code to message mapping.
var codeMessageMap = map[int]string{
	// Common
	ErrSuccess:          "success",
	ErrUnknown:          "unknown error",
	ErrBind:             "invalid request body",
	ErrValidation:       "request validation failed",
	ErrTokenInvalid:     "invalid authentication token",
	ErrTooManyRequests:  "request rate too high",
	ErrPermissionDenied: "insufficient permissions",

	// Account
	ErrAccountNotFound:     "account not found",
	ErrAccountAlreadyExist: "account already exists",
	ErrPasswordIncorrect:   "incorrect username or password",

	// Donor
	ErrDonorNotFound:     "donor not found",
	ErrDonorAlreadyExist: "donor already exists",
	ErrDonorNotEligible:  "donor is not eligible",

	// Patient
	ErrPatientNotFound:     "patient not found",
	ErrPatientAlreadyExist: "patient already exists",

	// Blood request
	ErrRequestNotFound:         "blood request not found",
	ErrRequestAlreadyProcessed: "blood request has already been processed",
	ErrRequestInvalidChannel:   "a request cannot belong to both a patient and a donor",

	// Donation
	ErrDonationNotFound:         "donation not found",
	ErrDonationAlreadyProcessed: "donation has already been processed",

	// Stock
	ErrStockNotFound:     "blood group not tracked in stock",
	ErrStockInsufficient: "insufficient stock",
	ErrInvalidBloodGroup: "invalid blood group",

	// Broadcast / notification
	ErrBroadcastNotFound:    "broadcast not found",
	ErrBroadcastNoDonors:    "no eligible donors to notify",
	ErrNotificationNotFound: "notification not found",
	ErrSMSDisabled:          "SMS sending is disabled",

	// Appointment
	ErrSlotNotFound:                 "appointment slot not found",
	ErrSlotFull:                     "appointment slot is full",
	ErrAppointmentNotFound:          "appointment not found",
	ErrAppointmentInvalidTransition: "appointment status transition not allowed",

	// Database
	ErrDatabase:       "database error",
	ErrRecordNotFound: "record not found",
}

// Error code to HTTP status mapping.
var codeStatusMap = map[int]int{
	// Common
	ErrSuccess:          StatusOK,
	ErrUnknown:          StatusInternalServerError,
	ErrBind:             StatusBadRequest,
	ErrValidation:       StatusBadRequest,
	ErrTokenInvalid:     StatusUnauthorized,
	ErrTooManyRequests:  StatusTooManyRequests,
	ErrPermissionDenied: StatusForbidden,

	// Account
	ErrAccountNotFound:     StatusNotFound,
	ErrAccountAlreadyExist: StatusBadRequest,
	ErrPasswordIncorrect:   StatusUnauthorized,

	// Donor
	ErrDonorNotFound:     StatusNotFound,
	ErrDonorAlreadyExist: StatusBadRequest,
	ErrDonorNotEligible:  StatusBadRequest,

	// Patient
	ErrPatientNotFound:     StatusNotFound,
	ErrPatientAlreadyExist: StatusBadRequest,

	// Blood request
	ErrRequestNotFound:         StatusNotFound,
	ErrRequestAlreadyProcessed: StatusBadRequest,
	ErrRequestInvalidChannel:   StatusBadRequest,

	// Donation
	ErrDonationNotFound:         StatusNotFound,
	ErrDonationAlreadyProcessed: StatusBadRequest,

	// Stock
	ErrStockNotFound:     StatusNotFound,
	ErrStockInsufficient: StatusBadRequest,
	ErrInvalidBloodGroup: StatusBadRequest,

	// Broadcast / notification
	ErrBroadcastNotFound:    StatusNotFound,
	ErrBroadcastNoDonors:    StatusBadRequest,
	ErrNotificationNotFound: StatusNotFound,
	ErrSMSDisabled:          StatusBadRequest,

	// Appointment
	ErrSlotNotFound:                 StatusNotFound,
	ErrSlotFull:                     StatusBadRequest,
	ErrAppointmentNotFound:          StatusNotFound,
	ErrAppointmentInvalidTransition: StatusBadRequest,

	// Database
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,
}

// GetMessage returns the message for an error code.
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "unknown error"
}

// GetStatus returns the HTTP status for an error code.
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
