package models

import (
	"time"
)

// Section and Course form the admin-configurable navigation directory.
// This hierarchy is free-form and unrelated to the fixed SectionBand enum
// used for access scoping; the two must not be conflated.
type Section struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"uniqueIndex;not null;size:100"`

	Courses []Course `json:"courses" gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Section) TableName() string {
	return "sections"
}

type Course struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:100"` // e.g. "10A"

	SectionID uint `json:"section_id" gorm:"not null;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Course) TableName() string {
	return "courses"
}
