package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	"github.com/noah-isme/course-registration-api/pkg/jobs"
)

const enrollmentAuditJob = "enrollment_audit"

type auditLogWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// EnrollmentEvent is the audit payload describing one enrollment decision.
type EnrollmentEvent struct {
	Status         models.AdmissionStatus `json:"status"`
	StudentID      string                 `json:"studentId"`
	SectionID      int64                  `json:"sectionId"`
	ActorID        string                 `json:"actorId,omitempty"`
	RegistrationID int64                  `json:"registrationId,omitempty"`
	WaitlistSeq    int64                  `json:"waitlistSequence,omitempty"`
	Position       int                    `json:"waitlistPosition,omitempty"`
	ClashCount     int                    `json:"clashCount,omitempty"`
	Attempts       int                    `json:"attempts"`
	IP             string                 `json:"-"`
	UserAgent      string                 `json:"-"`
	OccurredAt     time.Time              `json:"occurredAt"`
}

// AuditRecorder persists enrollment events off the request path using a job queue.
type AuditRecorder struct {
	repo   auditLogWriter
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewAuditRecorder builds the recorder and its worker queue. Call Start before Publish.
func NewAuditRecorder(repo auditLogWriter, cfg jobs.QueueConfig) *AuditRecorder {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	r := &AuditRecorder{repo: repo, logger: cfg.Logger}
	r.queue = jobs.NewQueue(enrollmentAuditJob, r.handle, cfg)
	return r
}

// Start launches the workers.
func (r *AuditRecorder) Start(ctx context.Context) {
	if r == nil {
		return
	}
	r.queue.Start(ctx)
}

// Stop flushes buffered events and waits for the workers.
func (r *AuditRecorder) Stop() {
	if r == nil {
		return
	}
	r.queue.Stop()
}

// Publish queues an event without blocking. Events are dropped when the buffer is full.
func (r *AuditRecorder) Publish(event EnrollmentEvent) {
	if r == nil {
		return
	}
	if err := r.queue.TryEnqueue(jobs.Job{Type: enrollmentAuditJob, Payload: event}); err != nil {
		r.logger.Warn("dropping enrollment audit event",
			zap.String("student_id", event.StudentID),
			zap.Int64("section_id", event.SectionID),
			zap.Error(err))
	}
}

func (r *AuditRecorder) handle(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(EnrollmentEvent)
	if !ok {
		r.logger.Error("unexpected audit payload", zap.String("job_id", job.ID))
		return nil
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal enrollment event: %w", err)
	}

	var actor *string
	if event.ActorID != "" {
		actor = &event.ActorID
	}
	resourceID := strconv.FormatInt(event.SectionID, 10)

	return r.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     actor,
		Action:     auditAction(event.Status),
		Resource:   "section",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  event.IP,
		UserAgent:  event.UserAgent,
		CreatedAt:  event.OccurredAt,
	})
}

func auditAction(status models.AdmissionStatus) string {
	switch status {
	case models.AdmissionAdmitted:
		return models.AuditActionEnrollAdmitted
	case models.AdmissionWaitlisted:
		return models.AuditActionEnrollWaitlisted
	default:
		return models.AuditActionEnrollRejected
	}
}
