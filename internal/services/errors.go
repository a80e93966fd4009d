package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/calasanz-edu/report-service/internal/models"
)

var (
	ErrReportNotFound  = errors.New("report not found")
	ErrStudentNotFound = errors.New("student not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrCourseNotFound  = errors.New("course not found")

	ErrSectionExists      = errors.New("section already exists")
	ErrReportAlreadyClosed = errors.New("report is already closed")

	// ErrUnauthenticated means no principal reached the service layer;
	// the HTTP middleware should have rejected the request earlier.
	ErrUnauthenticated = errors.New("not authenticated")
)

// DuplicateActiveReportError is returned when report creation would violate
// the one-active-report-per-(student, purpose) invariant. It carries enough
// detail for the caller to route the user to the existing case instead.
type DuplicateActiveReportError struct {
	ReportID      uint
	Purpose       models.EduPurpose
	CreatedByName string
	CreatedAt     time.Time
}

func (e *DuplicateActiveReportError) Error() string {
	return fmt.Sprintf("student already has an active report for %s (report %d, opened by %s)",
		e.Purpose, e.ReportID, e.CreatedByName)
}

// PermissionError is returned when the principal's role or section scope
// does not allow the requested operation.
type PermissionError struct {
	UserID   uint
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}
