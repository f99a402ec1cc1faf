package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/models"
)

type studentServiceMock struct {
	registrations []models.RegistrationDetail
	waitlists     []models.RankedWaitlistEntry
	studentID     string
	termID        int64
}

func (m *studentServiceMock) Registrations(ctx context.Context, studentID string, termID int64) ([]models.RegistrationDetail, error) {
	m.studentID = studentID
	m.termID = termID
	return m.registrations, nil
}

func (m *studentServiceMock) Waitlists(ctx context.Context, studentID string) ([]models.RankedWaitlistEntry, error) {
	m.studentID = studentID
	return m.waitlists, nil
}

func TestStudentHandlerRegistrationsTermFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &studentServiceMock{registrations: []models.RegistrationDetail{}}
	handler := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students/s1/registrations?termId=12", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Registrations(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", svc.studentID)
	assert.EqualValues(t, 12, svc.termID)
}

func TestStudentHandlerRegistrationsRejectsBadTerm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &studentServiceMock{}
	handler := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students/s1/registrations?termId=fall", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Registrations(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.studentID)
}

func TestStudentHandlerWaitlists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &studentServiceMock{waitlists: []models.RankedWaitlistEntry{
		{WaitlistEntry: models.WaitlistEntry{ID: 5, StudentID: "s1", SectionID: 3, Sequence: 4}, Position: 2},
	}}
	handler := NewStudentHandler(svc)

	c, w := newGinContext(http.MethodGet, "/students/s1/waitlists", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Waitlists(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].([]interface{})
	require.Len(t, data, 1)
	assert.EqualValues(t, 2, data[0].(map[string]interface{})["position"])
}
