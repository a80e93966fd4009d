package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
	"github.com/calasanz-edu/report-service/internal/validator"
)

type directoryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewDirectoryService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) DirectoryService {
	return &directoryService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ListStudents applies the principal's section scope on top of the caller's
// filters, and resolves active-report counts with one store-level aggregate.
func (s *directoryService) ListStudents(ctx context.Context, req *ListStudentsRequest, principal Principal) (*StudentListResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}

	section := req.Section
	if scope := principal.ReportScope(); scope != nil {
		section = scope
	}

	filters := repositories.StudentFilters{
		Section: section,
		Course:  req.Course,
		Query:   req.Query,
		Limit:   limit,
		Offset:  req.Skip,
	}

	students, total, err := s.repo.Student().List(ctx, nil, filters)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, len(students))
	for i, student := range students {
		ids[i] = student.ID
	}
	counts, err := s.repo.Student().ActiveReportCounts(ctx, nil, ids)
	if err != nil {
		return nil, err
	}

	withReports := make([]*StudentWithReports, len(students))
	for i, student := range students {
		withReports[i] = &StudentWithReports{
			Student:       student,
			ActiveReports: counts[student.ID],
		}
	}

	return &StudentListResponse{
		Students: withReports,
		Total:    total,
		Skip:     req.Skip,
		Limit:    limit,
	}, nil
}

func (s *directoryService) ListCourseLabels(ctx context.Context, section *models.SectionBand, principal Principal) ([]string, error) {
	if scope := principal.ReportScope(); scope != nil {
		section = scope
	}
	return s.repo.Student().DistinctCourses(ctx, nil, section)
}

// ListStaff returns the users who can accompany a case (report assignees).
func (s *directoryService) ListStaff(ctx context.Context, principal Principal) ([]*models.User, error) {
	users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{})
	return users, err
}

func (s *directoryService) ListSections(ctx context.Context, principal Principal) ([]*models.Section, error) {
	return s.repo.Directory().ListSections(ctx, nil)
}

func (s *directoryService) CreateSection(ctx context.Context, req *CreateSectionRequest, principal Principal) (*models.Section, error) {
	if !principal.CanCreateSection() {
		return nil, NewPermissionError(principal.ID, "section", "create", "only global admins can create sections")
	}
	if errs := s.validator.Struct(req); errs != nil {
		return nil, errs
	}

	if _, err := s.repo.Directory().GetSectionByName(ctx, nil, req.Name); err == nil {
		return nil, ErrSectionExists
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check section name: %w", err)
	}

	section := &models.Section{Name: req.Name}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Directory().CreateSection(ctx, tx, section)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Section created", "section_id", section.ID, "name", section.Name, "created_by", principal.ID)
	return section, nil
}

func (s *directoryService) DeleteSection(ctx context.Context, id uint, principal Principal) error {
	if !principal.CanDeleteSection() {
		return NewPermissionError(principal.ID, "section", "delete", "only global admins can delete sections")
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Directory().DeleteSection(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSectionNotFound
		}
		return err
	}

	s.logger.Info("Section deleted", "section_id", id, "deleted_by", principal.ID)
	return nil
}

func (s *directoryService) CreateCourse(ctx context.Context, req *CreateCourseRequest, principal Principal) (*models.Course, error) {
	if !principal.CanManageCourses() {
		return nil, NewPermissionError(principal.ID, "course", "create", "requires coordinator or admin role")
	}
	if errs := s.validator.Struct(req); errs != nil {
		return nil, errs
	}

	if _, err := s.repo.Directory().GetSectionByID(ctx, nil, req.SectionID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSectionNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}

	course := &models.Course{Name: req.Name, SectionID: req.SectionID}
	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Directory().CreateCourse(ctx, tx, course)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Course created", "course_id", course.ID, "section_id", course.SectionID, "created_by", principal.ID)
	return course, nil
}

func (s *directoryService) DeleteCourse(ctx context.Context, id uint, principal Principal) error {
	if !principal.CanManageCourses() {
		return NewPermissionError(principal.ID, "course", "delete", "requires coordinator or admin role")
	}

	err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.repo.Directory().DeleteCourse(ctx, tx, id)
	})
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCourseNotFound
		}
		return err
	}

	s.logger.Info("Course deleted", "course_id", id, "deleted_by", principal.ID)
	return nil
}
