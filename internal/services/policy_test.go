package services

import (
	"testing"

	"github.com/calasanz-edu/report-service/internal/models"
)

func TestPrincipal_ReportScope(t *testing.T) {
	band := models.BandMediaBasica

	tests := []struct {
		name      string
		principal Principal
		want      *models.SectionBand
	}{
		{
			name:      "admin is unscoped",
			principal: Principal{Role: models.RoleAdminGlobal, AssignedSection: &band},
			want:      nil,
		},
		{
			name:      "teacher scoped to assigned section",
			principal: Principal{Role: models.RoleDocente, AssignedSection: &band},
			want:      &band,
		},
		{
			name:      "coordinator scoped to assigned section",
			principal: Principal{Role: models.RoleCoordinador, AssignedSection: &band},
			want:      &band,
		},
		{
			name:      "teacher without assignment is unscoped",
			principal: Principal{Role: models.RoleDocente},
			want:      nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.principal.ReportScope()
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("Expected nil scope, got %v", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("Expected scope %v, got %v", *tt.want, got)
			}
		})
	}
}

func TestPrincipal_CanSeeSection(t *testing.T) {
	band := models.BandPreescolarPrimaria

	tests := []struct {
		name      string
		principal Principal
		section   models.SectionBand
		want      bool
	}{
		{
			name:      "admin sees every section",
			principal: Principal{Role: models.RoleAdminGlobal},
			section:   models.BandBachillerato,
			want:      true,
		},
		{
			name:      "teacher sees own section",
			principal: Principal{Role: models.RoleDocente, AssignedSection: &band},
			section:   band,
			want:      true,
		},
		{
			name:      "teacher blocked from other section",
			principal: Principal{Role: models.RoleDocente, AssignedSection: &band},
			section:   models.BandBachillerato,
			want:      false,
		},
		{
			name:      "unassigned teacher sees everything",
			principal: Principal{Role: models.RoleDocente},
			section:   models.BandMediaBasica,
			want:      true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.principal.CanSeeSection(tt.section); got != tt.want {
				t.Errorf("CanSeeSection(%s) = %v, want %v", tt.section, got, tt.want)
			}
		})
	}
}

func TestPrincipal_RoleGates(t *testing.T) {
	admin := Principal{Role: models.RoleAdminGlobal}
	coordinator := Principal{Role: models.RoleCoordinador}
	teacher := Principal{Role: models.RoleDocente}

	if !admin.CanImportRosters() || !coordinator.CanImportRosters() {
		t.Error("Admins and coordinators must be able to import rosters")
	}
	if teacher.CanImportRosters() {
		t.Error("Teachers must not import rosters")
	}

	if !admin.CanCreateSection() || coordinator.CanCreateSection() || teacher.CanCreateSection() {
		t.Error("Only global admins manage sections")
	}

	if !admin.CanManageCourses() || !coordinator.CanManageCourses() || teacher.CanManageCourses() {
		t.Error("Admins and coordinators manage courses, teachers do not")
	}
}
