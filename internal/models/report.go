package models

import (
	"time"
)

type EduPurpose string

const (
	PurposeConvivencia   EduPurpose = "Convivencia"
	PurposeAcademico     EduPurpose = "Académico"
	PurposeEspiritual    EduPurpose = "Espiritual"
	PurposePsicoafectivo EduPurpose = "Psicoafectivo"
)

func EduPurposes() []EduPurpose {
	return []EduPurpose{PurposeConvivencia, PurposeAcademico, PurposeEspiritual, PurposePsicoafectivo}
}

type ReportStatus string

const (
	StatusProgramado  ReportStatus = "PROGRAMADO"
	StatusSeguimiento ReportStatus = "SEGUIMIENTO"
	StatusAtendido    ReportStatus = "ATENDIDO"
)

func ReportStatuses() []ReportStatus {
	return []ReportStatus{StatusProgramado, StatusSeguimiento, StatusAtendido}
}

// Active reports the statuses counted against the one-active-report-per
// (student, purpose) constraint.
func (s ReportStatus) Active() bool {
	return s == StatusProgramado || s == StatusSeguimiento
}

// NextStatusOnObservation is the lifecycle rule applied when an observation
// is appended: a scheduled report moves to follow-up, everything else keeps
// its status. Pure function of the current status.
func NextStatusOnObservation(s ReportStatus) ReportStatus {
	if s == StatusProgramado {
		return StatusSeguimiento
	}
	return s
}

// Report is a support case opened for one student under one educational
// purpose. At most one report per (student, purpose) may be active at a time;
// the partial unique index ix_unique_active_report (created in the migration,
// scoped to active statuses) enforces that at the storage layer so concurrent
// creates cannot slip past the application pre-check.
type Report struct {
	ID uint `json:"id" gorm:"primaryKey"`

	StudentID uint    `json:"student_id" gorm:"not null;index:ix_reports_student_purpose,priority:1"`
	Student   Student `json:"student" gorm:"foreignKey:StudentID"`

	CreatedByID uint `json:"created_by_id" gorm:"not null;index"`
	CreatedBy   User `json:"created_by" gorm:"foreignKey:CreatedByID"`

	AssignedToID *uint `json:"assigned_to_id" gorm:"index"`
	AssignedTo   *User `json:"assigned_to" gorm:"foreignKey:AssignedToID"`

	Purpose EduPurpose   `json:"purpose" gorm:"not null;size:30;index:ix_reports_student_purpose,priority:2"`
	Status  ReportStatus `json:"status" gorm:"not null;default:PROGRAMADO;index;size:20"`

	Objective      string `json:"objective" gorm:"type:text"`
	AcademicPeriod string `json:"academic_period" gorm:"size:50"`

	CreatedAt time.Time  `json:"created_at" gorm:"index"`
	ClosedAt  *time.Time `json:"closed_at"`

	Observations    []Observation    `json:"observations,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
	Recommendations []Recommendation `json:"recommendations,omitempty" gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE"`
}

func (Report) TableName() string {
	return "reports"
}

// Observation is a titled case-log entry. Appending one to a scheduled
// report moves the report to follow-up.
type Observation struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ReportID uint `json:"report_id" gorm:"not null;index"`

	CreatedByID uint `json:"created_by_id" gorm:"not null"`
	CreatedBy   User `json:"created_by" gorm:"foreignKey:CreatedByID"`

	Title   string `json:"title" gorm:"size:200"`
	Content string `json:"content" gorm:"type:text"`

	DateLog time.Time `json:"date_log" gorm:"not null"`
}

func (Observation) TableName() string {
	return "observations"
}

// Recommendation is an untitled case-log entry. It never changes report
// status; the asymmetry with Observation is intentional.
type Recommendation struct {
	ID uint `json:"id" gorm:"primaryKey"`

	ReportID uint `json:"report_id" gorm:"not null;index"`

	CreatedByID uint `json:"created_by_id" gorm:"not null"`
	CreatedBy   User `json:"created_by" gorm:"foreignKey:CreatedByID"`

	Content string `json:"content" gorm:"type:text"`

	DateLog time.Time `json:"date_log" gorm:"not null"`
}

func (Recommendation) TableName() string {
	return "recommendations"
}
