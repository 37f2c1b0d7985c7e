// Package seed loads an excavation workbook and a directory of shared files into an empty or partially filled archive.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/ARQAP/archive-backend/src/utils"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm/clause"
)

// Result counts imported rows per sheet and collects per-row problems.
type Result struct {
	Imported map[string]int
	Errors   []string
}

func (r *Result) fail(sheet string, row int, format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf("%s row %d: %s", sheet, row, fmt.Sprintf(format, args...)))
}

type Seeder struct {
	gw    *db.GormGateway
	files *services.FileService
	log   zerolog.Logger
}

func NewSeeder(gw *db.GormGateway, files *services.FileService) *Seeder {
	return &Seeder{
		gw:    gw,
		files: files,
		log:   logging.With().Str("component", "seed").Logger(),
	}
}

// sheet is one worksheet with its header row turned into a column index.
type sheet struct {
	name    string
	columns map[string]int
	rows    [][]string
}

func readSheet(f *excelize.File, name string) (*sheet, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %s: %w", name, err)
	}
	s := &sheet{name: name, columns: map[string]int{}}
	if len(rows) == 0 {
		return s, nil
	}
	for i, h := range rows[0] {
		s.columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	s.rows = rows[1:]
	return s, nil
}

func (s *sheet) str(row []string, column string) string {
	i, ok := s.columns[column]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func (s *sheet) optStr(row []string, column string) *string {
	v := s.str(row, column)
	if v == "" {
		return nil
	}
	return &v
}

func (s *sheet) number(row []string, column string) (int, error) {
	v := s.str(row, column)
	if v == "" {
		return 0, fmt.Errorf("%s is empty", column)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", column, v)
	}
	return n, nil
}

func (s *sheet) optNumber(row []string, column string) (*int, error) {
	if s.str(row, column) == "" {
		return nil, nil
	}
	n, err := s.number(row, column)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ImportWorkbook reads the years, buildings, features and finds sheets in
// that order. Rows already present are skipped, so a workbook can be
// imported more than once.
func (s *Seeder) ImportWorkbook(ctx context.Context, r io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	result := &Result{Imported: map[string]int{}}

	steps := []struct {
		name string
		fn   func(context.Context, *sheet, *Result) error
	}{
		{"years", s.importYears},
		{"buildings", s.importBuildings},
		{"features", s.importFeatures},
		{"finds", s.importFinds},
	}
	for _, step := range steps {
		if idx, _ := f.GetSheetIndex(step.name); idx < 0 {
			s.log.Warn().Str("sheet", step.name).Msg("sheet missing from workbook, skipping")
			continue
		}
		sh, err := readSheet(f, step.name)
		if err != nil {
			return result, err
		}
		if err := step.fn(ctx, sh, result); err != nil {
			return result, err
		}
		s.log.Info().Str("sheet", step.name).Int("imported", result.Imported[step.name]).Msg("sheet imported")
	}
	return result, nil
}

// insert adds row unless its primary key is taken and reports whether it was added.
func (s *Seeder) insert(ctx context.Context, row any) (bool, error) {
	res := s.gw.DB().WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Seeder) importYears(ctx context.Context, sh *sheet, result *Result) error {
	for i, row := range sh.rows {
		year, err := sh.number(row, "year")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		added, err := s.insert(ctx, &models.YearModel{
			Year:        year,
			Description: sh.optStr(row, "description"),
			Image:       sh.optStr(row, "image"),
		})
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		if added {
			result.Imported[sh.name]++
		}
	}
	return nil
}

func (s *Seeder) importBuildings(ctx context.Context, sh *sheet, result *Result) error {
	maxID := 0
	for i, row := range sh.rows {
		id, err := sh.number(row, "id")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		start, err := sh.number(row, "start")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		end, err := sh.number(row, "end")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}

		added, err := s.insert(ctx, &models.BuildingModel{
			ID:          id,
			Phase:       sh.str(row, "phase"),
			Start:       utils.PreviousDecade(start),
			End:         utils.NextDecade(end),
			Path:        sh.optStr(row, "path"),
			Description: sh.optStr(row, "description"),
			English:     sh.optStr(row, "en"),
			Icelandic:   sh.optStr(row, "is"),
			Image:       sh.optStr(row, "image"),
		})
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		if added {
			result.Imported[sh.name]++
		}
		maxID = max(maxID, id)
	}

	// New buildings must not reuse imported ids.
	return s.gw.AdvanceSequence(ctx, models.CounterBuildings, maxID)
}

func (s *Seeder) importFeatures(ctx context.Context, sh *sheet, result *Result) error {
	for i, row := range sh.rows {
		building, err := sh.number(row, "building")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		feature := models.FeatureModel{
			Building:    building,
			Type:        sh.optStr(row, "type"),
			Description: sh.optStr(row, "description"),
		}
		if err := s.gw.Insert(ctx, &feature); err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		result.Imported[sh.name]++
	}
	return nil
}

func (s *Seeder) importFinds(ctx context.Context, sh *sheet, result *Result) error {
	for i, row := range sh.rows {
		building, err := sh.number(row, "building")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		fragments, err := sh.optNumber(row, "fragments")
		if err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		find := models.FindModel{
			Building:     building,
			ObjType:      sh.optStr(row, "obj_type"),
			MaterialType: sh.optStr(row, "material_type"),
			FileGroup:    sh.optStr(row, "f_group"),
			Fragments:    fragments,
		}
		if err := s.gw.Insert(ctx, &find); err != nil {
			result.fail(sh.name, i+2, "%v", err)
			continue
		}
		result.Imported[sh.name]++
	}
	return nil
}

// ImportFiles registers every file under dir/csv, dir/pdf and dir/images
// as a shared file of that kind. Files already registered are skipped.
func (s *Seeder) ImportFiles(ctx context.Context, dir string) (*Result, error) {
	result := &Result{Imported: map[string]int{}}

	for _, kind := range []services.FileKind{services.KindCSV, services.KindPDF, services.KindImage} {
		kindDir := filepath.Join(dir, kind.Name)
		entries, err := os.ReadDir(kindDir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return result, err
		}

		for i, entry := range entries {
			if entry.IsDir() {
				continue
			}
			data, err := os.ReadFile(filepath.Join(kindDir, entry.Name()))
			if err != nil {
				result.fail(kind.Name, i+1, "%v", err)
				continue
			}
			_, err = s.files.Register(ctx, kind, entry.Name(), data, nil, nil)
			if errors.Is(err, apperrors.ErrConflict) {
				s.log.Debug().Str("file", entry.Name()).Msg("file already registered")
				continue
			}
			if err != nil {
				result.fail(kind.Name, i+1, "%s: %v", entry.Name(), err)
				continue
			}
			result.Imported[kind.Name]++
		}
	}
	return result, nil
}
