package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/calasanz-edu/report-service/internal/models"
	"github.com/calasanz-edu/report-service/internal/repositories"
)

// errorSampleSize bounds how many per-row errors a response carries.
const errorSampleSize = 10

type rosterService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewRosterService(repo repositories.Repository, logger *slog.Logger) RosterService {
	return &rosterService{
		repo:   repo,
		logger: logger,
	}
}

// ImportStudents ingests a student roster. Expected columns:
// SECCIÓN | NOMBRE ESTUDIANTE | CODIGO | CURSO (GRADO is ignored).
// Rows fail individually; a bad row never aborts the batch.
func (s *rosterService) ImportStudents(ctx context.Context, filename string, r io.Reader, principal Principal) (*ImportResult, error) {
	if !principal.CanImportRosters() {
		return nil, NewPermissionError(principal.ID, "students", "import", "requires coordinator or admin role")
	}

	rows, err := parseSpreadsheet(filename, r)
	if err != nil {
		return nil, err
	}

	header, err := requireColumns(rows, "SECCION", "NOMBRE ESTUDIANTE", "CODIGO", "CURSO")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var allErrors []string

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		for i, row := range rows[1:] {
			result.Processed++

			code := strings.TrimSpace(cell(row, header["CODIGO"]))
			name := strings.TrimSpace(cell(row, header["NOMBRE ESTUDIANTE"]))
			course := strings.TrimSpace(cell(row, header["CURSO"]))
			sectionRaw := cell(row, header["SECCION"])

			if code == "" || name == "" {
				allErrors = append(allErrors, fmt.Sprintf("row %d: missing student code or name", i+1))
				continue
			}

			section, ok := MatchSectionBand(sectionRaw)
			if !ok {
				// Unrecognized band labels default to bachillerato, matching
				// the historical import behavior rather than dropping the row.
				section = models.BandBachillerato
			}

			student := &models.Student{
				Code:     code,
				FullName: name,
				Course:   course,
				Section:  section,
			}
			if err := s.repo.Student().UpsertByCode(ctx, tx, student); err != nil {
				allErrors = append(allErrors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			result.Succeeded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Processed %d rows.", result.Processed)
	result.Errors = sampleErrors(allErrors)

	s.recordJob(ctx, models.ImportStudents, filename, result, principal)
	return result, nil
}

// ImportUsers ingests a staff roster. Expected columns:
// EMAIL | NOMBRE | ROL, with optional SECCION and FIN EDUCATIVO.
func (s *rosterService) ImportUsers(ctx context.Context, filename string, r io.Reader, principal Principal) (*ImportResult, error) {
	if !principal.CanImportRosters() {
		return nil, NewPermissionError(principal.ID, "users", "import", "requires coordinator or admin role")
	}

	rows, err := parseSpreadsheet(filename, r)
	if err != nil {
		return nil, err
	}

	header, err := requireColumns(rows, "EMAIL", "NOMBRE", "ROL")
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	var allErrors []string

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		for i, row := range rows[1:] {
			result.Processed++

			email := strings.TrimSpace(strings.ToLower(cell(row, header["EMAIL"])))
			name := strings.TrimSpace(cell(row, header["NOMBRE"]))
			if email == "" || name == "" {
				allErrors = append(allErrors, fmt.Sprintf("row %d: missing email or name", i+1))
				continue
			}

			user := &models.User{
				Email:    email,
				FullName: name,
				Role:     MatchRole(cell(row, header["ROL"])),
			}
			if idx, ok := header["SECCION"]; ok {
				if section, matched := MatchSectionBand(cell(row, idx)); matched {
					user.AssignedSection = &section
				}
			}
			if idx, ok := header["FIN EDUCATIVO"]; ok {
				if purpose, matched := MatchPurpose(cell(row, idx)); matched {
					user.AssignedPurpose = &purpose
				}
			}

			if err := s.repo.User().UpsertByEmail(ctx, tx, user); err != nil {
				allErrors = append(allErrors, fmt.Sprintf("row %d: %v", i+1, err))
				continue
			}
			result.Succeeded++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("Processed %d rows.", result.Processed)
	result.Errors = sampleErrors(allErrors)

	s.recordJob(ctx, models.ImportUsers, filename, result, principal)
	return result, nil
}

func (s *rosterService) ListImportJobs(ctx context.Context, filters repositories.ImportJobFilters, principal Principal) ([]*models.ImportJob, int64, error) {
	if !principal.CanImportRosters() {
		return nil, 0, NewPermissionError(principal.ID, "import jobs", "list", "requires coordinator or admin role")
	}
	return s.repo.ImportJob().List(ctx, nil, filters)
}

// recordJob persists the import summary for later auditing. A failure here
// never fails the import itself.
func (s *rosterService) recordJob(ctx context.Context, kind models.ImportKind, filename string, result *ImportResult, principal Principal) {
	errorsJSON, err := json.Marshal(result.Errors)
	if err != nil {
		errorsJSON = []byte("[]")
	}

	job := &models.ImportJob{
		Kind:        kind,
		Filename:    filename,
		Processed:   result.Processed,
		Succeeded:   result.Succeeded,
		Errors:      errorsJSON,
		CreatedByID: principal.ID,
	}
	if err := s.repo.ImportJob().Create(ctx, nil, job); err != nil {
		s.logger.Error("Failed to record import job", "error", err, "kind", kind, "filename", filename)
	}
}

// ===== ROW PARSING HELPERS =====

// parseSpreadsheet reads the first sheet of an xlsx file, or a CSV file,
// into raw string rows including the header row.
func parseSpreadsheet(filename string, r io.Reader) ([][]string, error) {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("invalid csv file: %w", err)
		}
		return rows, nil
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid spreadsheet file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

// requireColumns normalizes the header row and verifies the required
// columns are present, returning a column-name → index map.
func requireColumns(rows [][]string, required ...string) (map[string]int, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file has no header row")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[NormalizeHeader(name)] = i
	}

	var missing []string
	for _, name := range required {
		if _, ok := header[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}
	return header, nil
}

// NormalizeHeader uppercases, trims and strips the accents that appear in
// the school's spreadsheet headers (SECCIÓN, CÓDIGO, ...).
func NormalizeHeader(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	replacer := strings.NewReplacer("Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U")
	return replacer.Replace(upper)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func sampleErrors(errs []string) []string {
	if len(errs) > errorSampleSize {
		return errs[:errorSampleSize]
	}
	return errs
}

// MatchSectionBand fuzzy-matches the free-form section labels found in
// rosters ("Sección Jardín Tercero", "MEDIA BÁSICA", ...) onto the fixed
// three-band enum.
func MatchSectionBand(raw string) (models.SectionBand, bool) {
	normalized := NormalizeHeader(raw)
	switch {
	case strings.Contains(normalized, "JARDIN"),
		strings.Contains(normalized, "PREESCOLAR"),
		strings.Contains(normalized, "PRIMARIA"),
		strings.Contains(normalized, "TERCERO"):
		return models.BandPreescolarPrimaria, true
	case strings.Contains(normalized, "CUARTO"),
		strings.Contains(normalized, "MEDIA"),
		strings.Contains(normalized, "BASICA"),
		strings.Contains(normalized, "SEPTIMO"):
		return models.BandMediaBasica, true
	case strings.Contains(normalized, "BACHILLERATO"),
		strings.Contains(normalized, "OCTAVO"),
		strings.Contains(normalized, "UNDECIMO"):
		return models.BandBachillerato, true
	}
	return "", false
}

// MatchRole maps roster role labels onto staff roles; anything not
// recognized as an admin or section role imports as a teacher.
func MatchRole(raw string) models.Role {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(normalized, "global"):
		return models.RoleAdminGlobal
	case strings.Contains(normalized, "secci"), strings.Contains(normalized, "coordinador"):
		return models.RoleCoordinador
	default:
		return models.RoleDocente
	}
}

// MatchPurpose maps roster purpose labels onto the educational purposes.
func MatchPurpose(raw string) (models.EduPurpose, bool) {
	normalized := NormalizeHeader(raw)
	switch {
	case strings.Contains(normalized, "ESPIRITUAL"):
		return models.PurposeEspiritual, true
	case strings.Contains(normalized, "PSICOAFECTIVO"):
		return models.PurposePsicoafectivo, true
	case strings.Contains(normalized, "CONVIVENCIA"):
		return models.PurposeConvivencia, true
	case strings.Contains(normalized, "ACADEMICO"):
		return models.PurposeAcademico, true
	}
	return "", false
}
