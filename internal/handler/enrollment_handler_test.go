package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-registration-api/internal/middleware"
	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/internal/service"
)

type enrollmentServiceMock struct {
	result *service.AdmissionResult
	got    *service.EnrollCommand
}

func (m *enrollmentServiceMock) Enroll(ctx context.Context, cmd service.EnrollCommand) *service.AdmissionResult {
	m.got = &cmd
	return m.result
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func enrollPayload(studentID string, sectionID int64) []byte {
	payload, _ := json.Marshal(models.EnrollRequest{StudentID: studentID, SectionID: sectionID})
	return payload
}

func TestEnrollmentHandlerStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	created := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		result  *service.AdmissionResult
		code    int
		error   string
		message string
	}{
		{
			name:    "admitted",
			result:  &service.AdmissionResult{Status: models.AdmissionAdmitted, Registration: &models.Registration{ID: 7, StudentID: "s1", SectionID: 1, CreatedAt: created}},
			code:    http.StatusCreated,
			message: "Enrollment successful",
		},
		{
			name:    "waitlisted",
			result:  &service.AdmissionResult{Status: models.AdmissionWaitlisted, WaitlistPosition: 1, WaitlistEntry: &models.WaitlistEntry{ID: 3, StudentID: "s1", SectionID: 1, Sequence: 1}},
			code:    http.StatusOK,
			message: "Section full. Added to waitlist.",
		},
		{
			name:    "already waitlisted",
			result:  &service.AdmissionResult{Status: models.AdmissionAlreadyWaitlisted, WaitlistPosition: 3, WaitlistEntry: &models.WaitlistEntry{ID: 3}},
			code:    http.StatusOK,
			message: "You are already on the waitlist for this section.",
		},
		{
			name:    "already registered",
			result:  &service.AdmissionResult{Status: models.AdmissionAlreadyRegistered},
			code:    http.StatusBadRequest,
			error:   "Already registered",
			message: "You are already enrolled in this section.",
		},
		{
			name:   "not found",
			result: &service.AdmissionResult{Status: models.AdmissionNotFound},
			code:   http.StatusNotFound,
			error:  "Section not found",
		},
		{
			name:    "invalid",
			result:  &service.AdmissionResult{Status: models.AdmissionInvalid, Message: "studentId is required"},
			code:    http.StatusBadRequest,
			error:   "Invalid request",
			message: "studentId is required",
		},
		{
			name:   "failure",
			result: &service.AdmissionResult{Status: models.AdmissionFailure, Err: errors.New("connection reset")},
			code:   http.StatusInternalServerError,
			error:  "Server error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewEnrollmentHandler(&enrollmentServiceMock{result: tc.result}, nil)
			c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s1", 1))

			handler.Enroll(c)

			require.Equal(t, tc.code, w.Code)
			body := decodeBody(t, w)
			if tc.error != "" {
				assert.Equal(t, tc.error, body["error"])
			}
			if tc.message != "" {
				assert.Equal(t, tc.message, body["message"])
			}
			assert.NotContains(t, body, "data")
		})
	}
}

func TestEnrollmentHandlerWaitlistBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &enrollmentServiceMock{result: &service.AdmissionResult{
		Status:           models.AdmissionAlreadyWaitlisted,
		WaitlistPosition: 3,
		WaitlistEntry:    &models.WaitlistEntry{ID: 11, StudentID: "s3", SectionID: 1, Sequence: 3},
	}}
	handler := NewEnrollmentHandler(mock, nil)
	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s3", 1))

	handler.Enroll(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 3, body["waitlistPosition"])
	entry, ok := body["waitlistEntry"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3, entry["sequence"])
}

func TestEnrollmentHandlerTimeClashBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &enrollmentServiceMock{result: &service.AdmissionResult{
		Status: models.AdmissionTimeClash,
		Clashes: []models.ClashReport{{
			CourseCode:  "CS101",
			CourseTitle: "Intro",
			Day:         "Monday",
			Time:        "10:00 AM - 11:00 AM",
		}},
	}}
	handler := NewEnrollmentHandler(mock, nil)
	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s1", 2))

	handler.Enroll(c)

	require.Equal(t, http.StatusConflict, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Time clash detected", body["error"])
	clashes, ok := body["clashes"].([]interface{})
	require.True(t, ok)
	require.Len(t, clashes, 1)
	clash := clashes[0].(map[string]interface{})
	assert.Equal(t, "Monday", clash["day"])
	assert.Equal(t, "10:00 AM - 11:00 AM", clash["time"])
}

func TestEnrollmentHandlerBusySetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&enrollmentServiceMock{result: &service.AdmissionResult{Status: models.AdmissionBusy, Message: "try again"}}, nil)
	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s1", 1))

	handler.Enroll(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, "Server busy", decodeBody(t, w)["error"])
}

func TestEnrollmentHandlerBusyFallsBackToDefaultMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewEnrollmentHandler(&enrollmentServiceMock{result: &service.AdmissionResult{Status: models.AdmissionBusy}}, nil)
	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s1", 1))

	handler.Enroll(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service busy, retry later", decodeBody(t, w)["message"])
}

func TestEnrollmentHandlerRejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &enrollmentServiceMock{}
	handler := NewEnrollmentHandler(mock, nil)
	c, w := newGinContext(http.MethodPost, "/enroll", []byte(`{"studentId":"s1","sectionId":"abc"}`))

	handler.Enroll(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request", decodeBody(t, w)["error"])
	assert.Nil(t, mock.got)
}

func TestEnrollmentHandlerSelfOnlyForStudents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &enrollmentServiceMock{result: &service.AdmissionResult{Status: models.AdmissionAdmitted}}
	handler := NewEnrollmentHandler(mock, nil)

	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("someone-else", 1))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	handler.Enroll(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, mock.got)

	c, w = newGinContext(http.MethodPost, "/enroll", enrollPayload("s1", 1))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, mock.got)
	assert.Equal(t, "s1", mock.got.ActorID)
}

func TestEnrollmentHandlerAdminEnrollsAnyone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &enrollmentServiceMock{result: &service.AdmissionResult{Status: models.AdmissionAdmitted}}
	handler := NewEnrollmentHandler(mock, nil)

	c, w := newGinContext(http.MethodPost, "/enroll", enrollPayload("s9", 1))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	handler.Enroll(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "admin-1", mock.got.ActorID)
	assert.Equal(t, "s9", mock.got.StudentID)
}
