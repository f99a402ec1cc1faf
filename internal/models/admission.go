package models

// AdmissionStatus is the outcome kind of an enrollment request.
type AdmissionStatus string

const (
	AdmissionAdmitted          AdmissionStatus = "ADMITTED"
	AdmissionWaitlisted        AdmissionStatus = "WAITLISTED"
	AdmissionAlreadyWaitlisted AdmissionStatus = "ALREADY_WAITLISTED"
	AdmissionAlreadyRegistered AdmissionStatus = "ALREADY_REGISTERED"
	AdmissionTimeClash         AdmissionStatus = "TIME_CLASH"
	AdmissionNotFound          AdmissionStatus = "NOT_FOUND"
	AdmissionInvalid           AdmissionStatus = "INVALID"
	AdmissionBusy              AdmissionStatus = "BUSY"
	AdmissionFailure           AdmissionStatus = "FAILURE"
)

// Wrote reports whether the outcome persisted a new row.
func (s AdmissionStatus) Wrote() bool {
	return s == AdmissionAdmitted || s == AdmissionWaitlisted
}

// EnrollRequest is the payload of POST /enroll.
type EnrollRequest struct {
	StudentID string `json:"studentId" validate:"required"`
	SectionID int64  `json:"sectionId" validate:"required,gt=0"`
}
