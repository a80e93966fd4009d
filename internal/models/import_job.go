package models

import (
	"time"

	"gorm.io/datatypes"
)

type ImportKind string

const (
	ImportStudents ImportKind = "students"
	ImportUsers    ImportKind = "users"
)

// ImportJob records the outcome of one roster import so admins can audit
// past uploads. Errors holds a bounded sample of per-row failures as JSON.
type ImportJob struct {
	ID uint `json:"id" gorm:"primaryKey"`

	Kind     ImportKind `json:"kind" gorm:"not null;index;size:20"`
	Filename string     `json:"filename" gorm:"size:255"`

	Processed int `json:"processed" gorm:"not null"`
	Succeeded int `json:"succeeded" gorm:"not null"`

	Errors datatypes.JSON `json:"errors"`

	CreatedByID uint `json:"created_by_id" gorm:"not null;index"`
	CreatedBy   User `json:"created_by" gorm:"foreignKey:CreatedByID"`

	CreatedAt time.Time `json:"created_at"`
}

func (ImportJob) TableName() string {
	return "import_jobs"
}
