package models

import (
	"time"
)

// Student is a directory record referenced by reports. Students are created
// by roster imports or admin CRUD and are not deleted in normal operation.
type Student struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Code     string  `json:"code" gorm:"uniqueIndex;not null;size:50"` // unique school code
	FullName string  `json:"full_name" gorm:"not null;index;size:200"`
	Email    *string `json:"email" gorm:"size:255"`

	Section SectionBand `json:"section" gorm:"not null;index;size:30"`
	Course  string      `json:"course" gorm:"index;size:30"` // free-text group label, e.g. "401"

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reports []Report `json:"-" gorm:"foreignKey:StudentID"`
}

func (Student) TableName() string {
	return "students"
}
