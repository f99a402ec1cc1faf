package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/dto"
	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/service"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/logger"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, cmd service.EnrollCommand) *service.AdmissionResult
}

// EnrollmentHandler exposes the enrollment endpoint.
type EnrollmentHandler struct {
	enrollments enrollmentService
	logger      *zap.Logger
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService, logger *zap.Logger) *EnrollmentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentHandler{enrollments: enrollments, logger: logger}
}

// Enroll godoc
// @Summary Enroll a student into a section
// @Description Admits the student, places them on the waitlist when the section is full, or rejects the request.
// @Tags Enrollment
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} dto.EnrollmentCreated
// @Success 200 {object} dto.WaitlistPlacement
// @Failure 400 {object} dto.EnrollmentRejected
// @Failure 403 {object} dto.EnrollmentRejected
// @Failure 404 {object} dto.EnrollmentFailure
// @Failure 409 {object} dto.EnrollmentRejected
// @Failure 503 {object} dto.EnrollmentFailure
// @Router /enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Raw(c, http.StatusBadRequest, dto.EnrollmentRejected{
			Error:   "Invalid request",
			Message: "Body must be JSON with a string studentId and an integer sectionId.",
		})
		return
	}

	cmd := service.EnrollCommand{EnrollRequest: req, IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		if claims.Role != models.RoleAdmin && claims.UserID != req.StudentID {
			response.Raw(c, http.StatusForbidden, dto.EnrollmentRejected{
				Error:   "Forbidden",
				Message: "You can only enroll yourself.",
			})
			return
		}
		cmd.ActorID = claims.UserID
	}

	result := h.enrollments.Enroll(c.Request.Context(), cmd)
	h.write(c, result)
}

func (h *EnrollmentHandler) write(c *gin.Context, result *service.AdmissionResult) {
	switch result.Status {
	case models.AdmissionAdmitted:
		response.Raw(c, http.StatusCreated, dto.EnrollmentCreated{Message: dto.MessageEnrolled, Enrollment: result.Registration})
	case models.AdmissionWaitlisted:
		response.Raw(c, http.StatusOK, dto.WaitlistPlacement{
			Message:          dto.MessageWaitlisted,
			WaitlistPosition: result.WaitlistPosition,
			WaitlistEntry:    result.WaitlistEntry,
		})
	case models.AdmissionAlreadyWaitlisted:
		response.Raw(c, http.StatusOK, dto.WaitlistPlacement{
			Message:          dto.MessageAlreadyWaitlisted,
			WaitlistPosition: result.WaitlistPosition,
			WaitlistEntry:    result.WaitlistEntry,
		})
	case models.AdmissionAlreadyRegistered:
		response.Raw(c, http.StatusBadRequest, dto.EnrollmentRejected{Error: "Already registered", Message: dto.MessageAlreadyRegistered})
	case models.AdmissionTimeClash:
		response.Raw(c, http.StatusConflict, dto.EnrollmentRejected{
			Error:   "Time clash detected",
			Message: dto.MessageTimeClash,
			Clashes: result.Clashes,
		})
	case models.AdmissionNotFound:
		response.Raw(c, http.StatusNotFound, dto.EnrollmentFailure{Error: "Section not found"})
	case models.AdmissionInvalid:
		response.Raw(c, http.StatusBadRequest, dto.EnrollmentRejected{Error: "Invalid request", Message: result.Message})
	case models.AdmissionBusy:
		c.Header("Retry-After", "1")
		message := result.Message
		if message == "" {
			message = appErrors.ErrServiceBusy.Message
		}
		response.Raw(c, appErrors.ErrServiceBusy.Status, dto.EnrollmentFailure{Error: "Server busy", Message: message})
	default:
		if result.Err != nil {
			_ = c.Error(result.Err)
		}
		logger.FromContext(c, h.logger).Error("enrollment request failed", zap.String("status", string(result.Status)), zap.Error(result.Err))
		response.Raw(c, http.StatusInternalServerError, dto.EnrollmentFailure{Error: "Server error"})
	}
}
