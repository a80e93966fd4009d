package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/calasanz-edu/report-service/internal/models"
)

func coordinatorPrincipal() Principal {
	return Principal{ID: 3, Email: "coord@school.edu", Role: models.RoleCoordinador}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SECCIÓN", "SECCION"},
		{"  código ", "CODIGO"},
		{"Nombre Estudiante", "NOMBRE ESTUDIANTE"},
		{"FIN EDUCATIVO", "FIN EDUCATIVO"},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchSectionBand(t *testing.T) {
	tests := []struct {
		in      string
		want    models.SectionBand
		matched bool
	}{
		{"Sección Jardín a Tercero", models.BandPreescolarPrimaria, true},
		{"PREESCOLAR", models.BandPreescolarPrimaria, true},
		{"media básica", models.BandMediaBasica, true},
		{"Cuarto a Séptimo", models.BandMediaBasica, true},
		{"BACHILLERATO", models.BandBachillerato, true},
		{"Octavo a Undécimo", models.BandBachillerato, true},
		{"desconocida", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, matched := MatchSectionBand(tt.in)
		if matched != tt.matched || got != tt.want {
			t.Errorf("MatchSectionBand(%q) = (%q, %v), want (%q, %v)", tt.in, got, matched, tt.want, tt.matched)
		}
	}
}

func TestMatchRole(t *testing.T) {
	tests := []struct {
		in   string
		want models.Role
	}{
		{"Admin Global", models.RoleAdminGlobal},
		{"Coordinador de Sección", models.RoleCoordinador},
		{"Docente", models.RoleDocente},
		{"cualquier otra cosa", models.RoleDocente},
		{"", models.RoleDocente},
	}
	for _, tt := range tests {
		if got := MatchRole(tt.in); got != tt.want {
			t.Errorf("MatchRole(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchPurpose(t *testing.T) {
	tests := []struct {
		in      string
		want    models.EduPurpose
		matched bool
	}{
		{"Académico", models.PurposeAcademico, true},
		{"espiritual", models.PurposeEspiritual, true},
		{"PSICOAFECTIVO", models.PurposePsicoafectivo, true},
		{"Convivencia", models.PurposeConvivencia, true},
		{"otro", "", false},
	}
	for _, tt := range tests {
		got, matched := MatchPurpose(tt.in)
		if matched != tt.matched || got != tt.want {
			t.Errorf("MatchPurpose(%q) = (%q, %v), want (%q, %v)", tt.in, got, matched, tt.want, tt.matched)
		}
	}
}

func TestRosterService_ImportStudents(t *testing.T) {
	ctx := context.Background()

	t.Run("imports csv roster with partial failures", func(t *testing.T) {
		csvData := strings.Join([]string{
			"SECCIÓN,NOMBRE ESTUDIANTE,CODIGO,CURSO",
			"Bachillerato,Ana Gómez,S-1,1001",
			"Media Básica,,S-2,501", // missing name
			"Jardín,Pedro Díaz,S-3,101",
		}, "\n")

		var upserted []*models.Student
		jobs := &mockImportJobRepo{}
		repo := &mockRepository{
			student: &mockStudentRepo{
				upsertByCode: func(student *models.Student) error {
					upserted = append(upserted, student)
					return nil
				},
			},
			importJob: jobs,
		}
		svc := NewRosterService(repo, testLogger())

		result, err := svc.ImportStudents(ctx, "roster.csv", strings.NewReader(csvData), coordinatorPrincipal())
		if err != nil {
			t.Fatalf("ImportStudents failed: %v", err)
		}
		if result.Processed != 3 || result.Succeeded != 2 {
			t.Errorf("Expected 3 processed / 2 succeeded, got %d / %d", result.Processed, result.Succeeded)
		}
		if len(result.Errors) != 1 {
			t.Fatalf("Expected 1 row error, got %v", result.Errors)
		}

		if len(upserted) != 2 {
			t.Fatalf("Expected 2 upserts, got %d", len(upserted))
		}
		if upserted[0].Section != models.BandBachillerato {
			t.Errorf("Expected bachillerato band, got %s", upserted[0].Section)
		}
		if upserted[1].Section != models.BandPreescolarPrimaria {
			t.Errorf("Expected preescolar band for Jardín, got %s", upserted[1].Section)
		}

		if len(jobs.created) != 1 {
			t.Fatalf("Expected one import job record, got %d", len(jobs.created))
		}
		if jobs.created[0].Kind != models.ImportStudents || jobs.created[0].Filename != "roster.csv" {
			t.Errorf("Import job not recorded correctly: %+v", jobs.created[0])
		}
	})

	t.Run("unmatched section defaults to bachillerato", func(t *testing.T) {
		csvData := "SECCIÓN,NOMBRE ESTUDIANTE,CODIGO,CURSO\nDesconocida,Laura Peña,S-9,901\n"

		var got *models.Student
		repo := &mockRepository{
			student: &mockStudentRepo{
				upsertByCode: func(student *models.Student) error {
					got = student
					return nil
				},
			},
			importJob: &mockImportJobRepo{},
		}
		svc := NewRosterService(repo, testLogger())

		if _, err := svc.ImportStudents(ctx, "roster.csv", strings.NewReader(csvData), coordinatorPrincipal()); err != nil {
			t.Fatalf("ImportStudents failed: %v", err)
		}
		if got == nil || got.Section != models.BandBachillerato {
			t.Fatalf("Expected default band %s, got %+v", models.BandBachillerato, got)
		}
	})

	t.Run("caps the error sample", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("SECCIÓN,NOMBRE ESTUDIANTE,CODIGO,CURSO\n")
		for i := 0; i < 25; i++ {
			sb.WriteString(fmt.Sprintf("Bachillerato,,S-%d,1001\n", i)) // all missing names
		}

		repo := &mockRepository{
			student:   &mockStudentRepo{upsertByCode: func(student *models.Student) error { return nil }},
			importJob: &mockImportJobRepo{},
		}
		svc := NewRosterService(repo, testLogger())

		result, err := svc.ImportStudents(ctx, "roster.csv", strings.NewReader(sb.String()), coordinatorPrincipal())
		if err != nil {
			t.Fatalf("ImportStudents failed: %v", err)
		}
		if result.Processed != 25 || result.Succeeded != 0 {
			t.Errorf("Expected 25 processed / 0 succeeded, got %d / %d", result.Processed, result.Succeeded)
		}
		if len(result.Errors) != errorSampleSize {
			t.Errorf("Expected error sample capped at %d, got %d", errorSampleSize, len(result.Errors))
		}
	})

	t.Run("rejects missing columns", func(t *testing.T) {
		csvData := "NOMBRE,CODIGO\nAna,S-1\n"
		svc := NewRosterService(&mockRepository{importJob: &mockImportJobRepo{}}, testLogger())

		_, err := svc.ImportStudents(ctx, "roster.csv", strings.NewReader(csvData), coordinatorPrincipal())
		if err == nil || !strings.Contains(err.Error(), "missing columns") {
			t.Fatalf("Expected missing columns error, got %v", err)
		}
	})

	t.Run("teachers cannot import", func(t *testing.T) {
		svc := NewRosterService(&mockRepository{}, testLogger())

		_, err := svc.ImportStudents(ctx, "roster.csv", strings.NewReader(""), teacherPrincipal(models.BandBachillerato))
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
	})
}

func TestRosterService_ImportUsers(t *testing.T) {
	ctx := context.Background()

	csvData := strings.Join([]string{
		"EMAIL,NOMBRE,ROL,SECCIÓN,FIN EDUCATIVO",
		"Maria.Lopez@school.edu,María López,Coordinador de Sección,Media Básica,Académico",
		"pedro@school.edu,Pedro Díaz,Docente,,",
	}, "\n")

	var upserted []*models.User
	repo := &mockRepository{
		user: &mockUserRepo{
			upsertByEmail: func(user *models.User) error {
				upserted = append(upserted, user)
				return nil
			},
		},
		importJob: &mockImportJobRepo{},
	}
	svc := NewRosterService(repo, testLogger())

	result, err := svc.ImportUsers(ctx, "staff.csv", strings.NewReader(csvData), coordinatorPrincipal())
	if err != nil {
		t.Fatalf("ImportUsers failed: %v", err)
	}
	if result.Processed != 2 || result.Succeeded != 2 {
		t.Fatalf("Expected 2/2, got %d/%d", result.Processed, result.Succeeded)
	}

	first := upserted[0]
	if first.Email != "maria.lopez@school.edu" {
		t.Errorf("Expected lowercased email, got %s", first.Email)
	}
	if first.Role != models.RoleCoordinador {
		t.Errorf("Expected coordinator role, got %s", first.Role)
	}
	if first.AssignedSection == nil || *first.AssignedSection != models.BandMediaBasica {
		t.Errorf("Expected assigned section %s, got %v", models.BandMediaBasica, first.AssignedSection)
	}
	if first.AssignedPurpose == nil || *first.AssignedPurpose != models.PurposeAcademico {
		t.Errorf("Expected assigned purpose %s, got %v", models.PurposeAcademico, first.AssignedPurpose)
	}

	second := upserted[1]
	if second.Role != models.RoleDocente || second.AssignedSection != nil || second.AssignedPurpose != nil {
		t.Errorf("Expected plain teacher without assignments, got %+v", second)
	}
}
