package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/service"
	"github.com/noah-isme/course-registration-api/pkg/response"
)

type sectionService interface {
	Get(ctx context.Context, sectionID int64) (*models.Section, error)
	Waitlist(ctx context.Context, sectionID int64) ([]models.RankedWaitlistEntry, error)
}

type availabilityService interface {
	Get(ctx context.Context, sectionID int64) (*models.SectionAvailability, error)
}

type rosterService interface {
	Export(ctx context.Context, sectionID int64, format string) (*service.RosterFile, error)
}

// SectionHandler serves read endpoints of a section.
type SectionHandler struct {
	sections     sectionService
	availability availabilityService
	roster       rosterService
}

// NewSectionHandler constructs SectionHandler.
func NewSectionHandler(sections sectionService, availability availabilityService, roster rosterService) *SectionHandler {
	return &SectionHandler{sections: sections, availability: availability, roster: roster}
}

// Get godoc
// @Summary Section detail
// @Tags Sections
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id} [get]
func (h *SectionHandler) Get(c *gin.Context) {
	id, err := sectionIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	section, err := h.sections.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Availability godoc
// @Summary Seat availability
// @Tags Sections
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/availability [get]
func (h *SectionHandler) Availability(c *gin.Context) {
	id, err := sectionIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	availability, err := h.availability.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, availability, nil)
}

// Waitlist godoc
// @Summary Ordered waitlist of a section
// @Tags Sections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/waitlist [get]
func (h *SectionHandler) Waitlist(c *gin.Context) {
	id, err := sectionIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entries, err := h.sections.Waitlist(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"total": len(entries)})
}

// Roster godoc
// @Summary Export section roster
// @Tags Sections
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Section ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sections/{id}/roster [get]
func (h *SectionHandler) Roster(c *gin.Context) {
	id, err := sectionIDParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.roster.Export(c.Request.Context(), id, c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Payload)
}
