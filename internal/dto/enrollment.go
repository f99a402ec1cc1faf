package dto

import "github.com/noah-isme/course-registration-api/internal/models"

// Response messages of POST /enroll. Existing clients match on these strings.
const (
	MessageEnrolled          = "Enrollment successful"
	MessageWaitlisted        = "Section full. Added to waitlist."
	MessageAlreadyWaitlisted = "You are already on the waitlist for this section."
	MessageAlreadyRegistered = "You are already enrolled in this section."
	MessageTimeClash         = "This section conflicts with your existing schedule."
)

// EnrollmentCreated is returned with 201 when a seat was taken.
type EnrollmentCreated struct {
	Message    string               `json:"message"`
	Enrollment *models.Registration `json:"enrollment"`
}

// WaitlistPlacement is returned with 200 for new or existing waitlist entries.
type WaitlistPlacement struct {
	Message          string                `json:"message"`
	WaitlistPosition int                   `json:"waitlistPosition"`
	WaitlistEntry    *models.WaitlistEntry `json:"waitlistEntry"`
}

// EnrollmentRejected describes a business rejection or malformed request.
type EnrollmentRejected struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Message string               `json:"message"`
	Clashes []models.ClashReport `json:"clashes,omitempty"`
}

// EnrollmentFailure is the body for not found, busy and server errors.
type EnrollmentFailure struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
