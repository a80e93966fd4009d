package services

import (
	"github.com/calasanz-edu/report-service/internal/models"
)

// Principal is the authenticated staff identity resolved per request by the
// identity middleware. The core trusts it verbatim and performs no identity
// verification of its own.
type Principal struct {
	ID              uint
	Email           string
	Role            models.Role
	AssignedSection *models.SectionBand
	AssignedPurpose *models.EduPurpose
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdminGlobal
}

// ReportScope returns the section filter applied to every report (and
// student) query for this principal. Global admins are unrestricted. A
// teacher or coordinator without an assigned section also gets nil, i.e.
// unrestricted — that matches the observed behavior and is a known policy
// gap; assignment hygiene is an operational concern.
func (p Principal) ReportScope() *models.SectionBand {
	if p.IsAdmin() {
		return nil
	}
	return p.AssignedSection
}

// CanSeeSection reports whether a record in the given band is visible to
// this principal.
func (p Principal) CanSeeSection(section models.SectionBand) bool {
	scope := p.ReportScope()
	return scope == nil || *scope == section
}

// CanImportRosters gates bulk student/staff imports.
func (p Principal) CanImportRosters() bool {
	return p.Role == models.RoleCoordinador || p.Role == models.RoleAdminGlobal
}

// CanCreateSection / CanDeleteSection: the navigation directory's top level
// is admin-only.
func (p Principal) CanCreateSection() bool {
	return p.Role == models.RoleAdminGlobal
}

func (p Principal) CanDeleteSection() bool {
	return p.Role == models.RoleAdminGlobal
}

// CanManageCourses allows coordinators and admins to maintain course entries.
func (p Principal) CanManageCourses() bool {
	return p.Role == models.RoleCoordinador || p.Role == models.RoleAdminGlobal
}
