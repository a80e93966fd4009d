package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/validator"
)

func TestDirectoryService_ListStudents(t *testing.T) {
	ctx := context.Background()
	band := models.BandMediaBasica
	other := models.BandBachillerato

	students := []*models.Student{
		{ID: 1, Code: "S-1", FullName: "Ana Gómez", Section: band},
		{ID: 2, Code: "S-2", FullName: "Pedro Díaz", Section: band},
	}

	var gotFilters repositories.StudentFilters
	repo := &mockRepository{
		student: &mockStudentRepo{
			list: func(filters repositories.StudentFilters) ([]*models.Student, int64, error) {
				gotFilters = filters
				return students, 2, nil
			},
			activeReportCounts: func(studentIDs []uint) (map[uint]int64, error) {
				return map[uint]int64{1: 3}, nil
			},
		},
	}
	svc := NewDirectoryService(repo, testLogger(), validator.New())

	// A teacher's scope overrides whatever section filter they request.
	resp, err := svc.ListStudents(ctx, &ListStudentsRequest{Section: &other}, teacherPrincipal(band))
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if gotFilters.Section == nil || *gotFilters.Section != band {
		t.Errorf("Expected scope %s to override requested filter, got %v", band, gotFilters.Section)
	}

	if resp.Students[0].ActiveReports != 3 {
		t.Errorf("Expected 3 active reports for student 1, got %d", resp.Students[0].ActiveReports)
	}
	if resp.Students[1].ActiveReports != 0 {
		t.Errorf("Expected 0 active reports for student 2, got %d", resp.Students[1].ActiveReports)
	}
}

func TestDirectoryService_CreateSection(t *testing.T) {
	ctx := context.Background()

	t.Run("admin creates new section", func(t *testing.T) {
		repo := &mockRepository{
			directory: &mockDirectoryRepo{
				getSectionByName: func(name string) (*models.Section, error) {
					return nil, gorm.ErrRecordNotFound
				},
				createSection: func(section *models.Section) error {
					section.ID = 1
					return nil
				},
			},
		}
		svc := NewDirectoryService(repo, testLogger(), validator.New())

		section, err := svc.CreateSection(ctx, &CreateSectionRequest{Name: "Primaria"}, adminPrincipal())
		if err != nil {
			t.Fatalf("CreateSection failed: %v", err)
		}
		if section.ID != 1 || section.Name != "Primaria" {
			t.Errorf("Unexpected section: %+v", section)
		}
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		repo := &mockRepository{
			directory: &mockDirectoryRepo{
				getSectionByName: func(name string) (*models.Section, error) {
					return &models.Section{ID: 1, Name: name}, nil
				},
			},
		}
		svc := NewDirectoryService(repo, testLogger(), validator.New())

		_, err := svc.CreateSection(ctx, &CreateSectionRequest{Name: "Primaria"}, adminPrincipal())
		if !errors.Is(err, ErrSectionExists) {
			t.Fatalf("Expected ErrSectionExists, got %v", err)
		}
	})

	t.Run("coordinators cannot create sections", func(t *testing.T) {
		svc := NewDirectoryService(&mockRepository{}, testLogger(), validator.New())

		_, err := svc.CreateSection(ctx, &CreateSectionRequest{Name: "Primaria"}, coordinatorPrincipal())
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
	})
}

func TestDirectoryService_CreateCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("requires an existing section", func(t *testing.T) {
		repo := &mockRepository{
			directory: &mockDirectoryRepo{
				getSectionByID: func(id uint) (*models.Section, error) {
					return nil, gorm.ErrRecordNotFound
				},
			},
		}
		svc := NewDirectoryService(repo, testLogger(), validator.New())

		_, err := svc.CreateCourse(ctx, &CreateCourseRequest{Name: "10A", SectionID: 9}, coordinatorPrincipal())
		if !errors.Is(err, ErrSectionNotFound) {
			t.Fatalf("Expected ErrSectionNotFound, got %v", err)
		}
	})

	t.Run("teachers cannot manage courses", func(t *testing.T) {
		svc := NewDirectoryService(&mockRepository{}, testLogger(), validator.New())

		_, err := svc.CreateCourse(ctx, &CreateCourseRequest{Name: "10A", SectionID: 1}, teacherPrincipal(models.BandBachillerato))
		var permErr *PermissionError
		if !errors.As(err, &permErr) {
			t.Fatalf("Expected PermissionError, got %v", err)
		}
	})
}
