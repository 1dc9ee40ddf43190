package code

// HTTP status codes.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: bad request parameters.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: authentication required.
	StatusUnauthorized = 401
	// StatusForbidden - 403: access denied.
	StatusForbidden = 403
	// StatusNotFound - 404: resource does not exist.
	StatusNotFound = 404
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: internal server error.
	StatusInternalServerError = 500
)

// Common error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request body binding failed.
	ErrBind
	// ErrValidation - 400: request validation failed.
	ErrValidation
	// ErrTokenInvalid - 401: token invalid.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
	// ErrPermissionDenied - 403: insufficient role.
	ErrPermissionDenied
)

// Account error codes (101xxx).
const (
	// ErrAccountNotFound - 404: account does not exist.
	ErrAccountNotFound int = iota + 101000
	// ErrAccountAlreadyExist - 400: account already exists.
	ErrAccountAlreadyExist
	// ErrPasswordIncorrect - 401: password incorrect.
	ErrPasswordIncorrect
)

// Donor error codes (102xxx).
const (
	// ErrDonorNotFound - 404: donor does not exist.
	ErrDonorNotFound int = iota + 102000
	// ErrDonorAlreadyExist - 400: donor already exists.
	ErrDonorAlreadyExist
	// ErrDonorNotEligible - 400: donor fails an eligibility rule.
	ErrDonorNotEligible
)

// Patient error codes (103xxx).
const (
	// ErrPatientNotFound - 404: patient does not exist.
	ErrPatientNotFound int = iota + 103000
	// ErrPatientAlreadyExist - 400: patient already exists.
	ErrPatientAlreadyExist
)

// Blood request error codes (104xxx).
const (
	// ErrRequestNotFound - 404: blood request does not exist.
	ErrRequestNotFound int = iota + 104000
	// ErrRequestAlreadyProcessed - 400: request already approved or rejected.
	ErrRequestAlreadyProcessed
	// ErrRequestInvalidChannel - 400: request tied to both a patient and a donor.
	ErrRequestInvalidChannel
)

// Donation error codes (105xxx).
const (
	// ErrDonationNotFound - 404: donation does not exist.
	ErrDonationNotFound int = iota + 105000
	// ErrDonationAlreadyProcessed - 400: donation already approved or rejected.
	ErrDonationAlreadyProcessed
)

// Stock error codes (106xxx).
const (
	// ErrStockNotFound - 404: blood group not tracked in stock.
	ErrStockNotFound int = iota + 106000
	// ErrStockInsufficient - 400: not enough units in stock.
	ErrStockInsufficient
	// ErrInvalidBloodGroup - 400: unrecognized blood group.
	ErrInvalidBloodGroup
)

// Broadcast / notification error codes (107xxx).
const (
	// ErrBroadcastNotFound - 404: broadcast does not exist.
	ErrBroadcastNotFound int = iota + 107000
	// ErrBroadcastNoDonors - 400: no eligible donors for the broadcast.
	ErrBroadcastNoDonors
	// ErrNotificationNotFound - 404: notification does not exist.
	ErrNotificationNotFound
	// ErrSMSDisabled - 400: SMS sending disabled by configuration.
	ErrSMSDisabled
)

// Appointment error codes (108xxx).
const (
	// ErrSlotNotFound - 404: appointment slot does not exist.
	ErrSlotNotFound int = iota + 108000
	// ErrSlotFull - 400: appointment slot is at capacity.
	ErrSlotFull
	// ErrAppointmentNotFound - 404: appointment does not exist.
	ErrAppointmentNotFound
	// ErrAppointmentInvalidTransition - 400: appointment status transition not allowed.
	ErrAppointmentInvalidTransition
)

// Database error codes (109xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 109000
	// ErrRecordNotFound - 404: record does not exist.
	ErrRecordNotFound
)
