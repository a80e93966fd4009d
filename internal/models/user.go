package models

import (
	"time"
)

type Role string

const (
	RoleDocente     Role = "Docente"
	RoleCoordinador Role = "Coordinador"
	RoleAdminGlobal Role = "Admin Global"
)

// SectionBand is the fixed three-band grade grouping used for access scoping.
// It is distinct from the admin-managed Section directory used for navigation.
type SectionBand string

const (
	BandPreescolarPrimaria SectionBand = "Jardín a Tercero"
	BandMediaBasica        SectionBand = "Cuarto a Séptimo"
	BandBachillerato       SectionBand = "Octavo a Undécimo"
)

func SectionBands() []SectionBand {
	return []SectionBand{BandPreescolarPrimaria, BandMediaBasica, BandBachillerato}
}

// User is a staff member (teacher, coordinator or global admin).
// Students are never users; they live in their own table.
type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	OIDSub   *string `json:"-" gorm:"uniqueIndex;size:255"` // subject id from the identity provider
	Email    string  `json:"email" gorm:"uniqueIndex;not null;size:255"`
	FullName string  `json:"full_name" gorm:"not null;size:200"`

	Role Role `json:"role" gorm:"not null;default:Docente;index;size:30"`

	// Access scope. Coordinators and teachers are restricted to one band;
	// a nil band means no section filter is applied (see services.Principal).
	AssignedSection *SectionBand `json:"assigned_section" gorm:"size:30"`
	AssignedPurpose *EduPurpose  `json:"assigned_purpose" gorm:"size:30"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdminGlobal
}
