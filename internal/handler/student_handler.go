package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

type studentService interface {
	Registrations(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error)
	Waitlists(ctx context.Context, studentID string) ([]models.RankedWaitlistEntry, error)
}

// StudentHandler serves a student's own registrations and waitlists.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// Registrations godoc
// @Summary Registrations of a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param termId query int false "Limit to a term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/registrations [get]
func (h *StudentHandler) Registrations(c *gin.Context) {
	var termID int64
	if raw := c.Query("termId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termId must be a positive integer"))
			return
		}
		termID = parsed
	}

	registrations, err := h.students.Registrations(c.Request.Context(), c.Param("id"), termID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registrations, nil)
}

// Waitlists godoc
// @Summary Waitlist entries of a student with positions
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/waitlists [get]
func (h *StudentHandler) Waitlists(c *gin.Context) {
	entries, err := h.students.Waitlists(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
