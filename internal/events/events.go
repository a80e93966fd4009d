package events

import (
	"context"
	"time"

	"github.com/calasanz-edu/report-service/internal/models"
)

// ReportEventsTopic carries every report lifecycle event.
const ReportEventsTopic = "report-lifecycle-events"

type EventType string

const (
	ReportCreated       EventType = "report.created"
	ReportStatusChanged EventType = "report.status_changed"
	ReportClosed        EventType = "report.closed"
)

// ReportEvent is the audit record published on every lifecycle change.
type ReportEvent struct {
	ID         string              `json:"id"`
	Type       EventType           `json:"type"`
	ReportID   uint                `json:"report_id"`
	StudentID  uint                `json:"student_id"`
	Purpose    models.EduPurpose   `json:"purpose"`
	Status     models.ReportStatus `json:"status"`
	ActorID    uint                `json:"actor_id"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Publisher emits report lifecycle events. Publishing is best effort from
// the caller's point of view: lifecycle writes never roll back because the
// event could not be delivered.
type Publisher interface {
	PublishReportEvent(ctx context.Context, event *ReportEvent) error
	Close() error
}
