package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
)

// FirstYear is the earliest year the archive's timeline covers.
const FirstYear = 1670

type YearService struct {
	gw     db.Gateway
	images *ImageService
}

// NewYearService creates a new instance of YearService
func NewYearService(gw db.Gateway, images *ImageService) *YearService {
	return &YearService{gw: gw, images: images}
}

// ListYears retrieves the browsable years. The highest year only closes
// building ranges and is left out.
func (s *YearService) ListYears(ctx context.Context) ([]models.YearModel, error) {
	years := []models.YearModel{}
	err := s.gw.Query(ctx, &years,
		`SELECT * FROM years
		WHERE year < (SELECT MAX(year) FROM years)
		AND year >= ?
		ORDER BY year ASC`, FirstYear)
	if err != nil {
		return nil, err
	}
	if years == nil {
		years = []models.YearModel{}
	}
	return years, nil
}

// Resolve looks a plain year up as a row first; "<year>.svg" and unknown
// years fall back to the stored year drawing.
func (s *YearService) Resolve(ctx context.Context, ident string) (*Resolution, error) {
	if year, err := strconv.Atoi(ident); err == nil {
		var row models.YearModel
		found, err := s.gw.QueryOne(ctx, &row, "SELECT * FROM years WHERE year = ?", year)
		if err != nil {
			return nil, err
		}
		if found {
			return &Resolution{Data: row}, nil
		}
	}

	stem, ext, ok := strings.Cut(ident, ".")
	if !ok || ext != "svg" {
		return nil, apperrors.ErrNotFound
	}
	if _, err := strconv.Atoi(stem); err != nil {
		return nil, apperrors.ErrNotFound
	}

	body, info, err := s.images.OpenAsset(ctx, CategoryYear, ident)
	if err != nil {
		return nil, err
	}
	return &Resolution{Asset: body, AssetInfo: info}, nil
}

// CreateYear stores a new year. Its drawing is staged before the row is
// written and published only once the row exists.
func (s *YearService) CreateYear(ctx context.Context, cmd dtos.CreateYearCommand) (*models.YearModel, error) {
	var existing models.YearModel
	found, err := s.gw.QueryOne(ctx, &existing, "SELECT * FROM years WHERE year = ?", cmd.Year)
	if err != nil {
		return nil, err
	}
	if found {
		return nil, fmt.Errorf("%w: year %d already exists", apperrors.ErrConflict, cmd.Year)
	}

	year := models.YearModel{Year: cmd.Year, Description: cmd.Description}

	var img *StagedImage
	if cmd.ImagePath != "" {
		img, err = s.images.Stage(ctx, cmd.ImagePath, cmd.Year, CategoryYear, cmd.Year)
		if err != nil {
			return nil, err
		}
		defer s.images.Discard(ctx, img)
		year.Image = &img.Path
	}

	if err := s.gw.Insert(ctx, &year); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: year %d already exists", apperrors.ErrConflict, cmd.Year)
		}
		logging.Error().Err(err).Int("year", cmd.Year).Msg("error inserting year")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}

	if img != nil {
		if err := s.images.Commit(ctx, img); err != nil {
			s.rollback(ctx, cmd.Year)
			return nil, err
		}
	}
	return &year, nil
}

// rollback removes a year inserted by a create whose drawing could not be published.
func (s *YearService) rollback(ctx context.Context, year int) {
	if _, err := s.gw.Execute(context.WithoutCancel(ctx), "DELETE FROM years WHERE year = ?", year); err != nil {
		logging.Error().Err(err).Int("year", year).Msg("failed to remove year without drawing")
	}
}

// UpdateYear applies patch to the year row. An uploaded drawing replaces
// the published one only after the row update succeeded.
func (s *YearService) UpdateYear(ctx context.Context, year int, patch dtos.YearPatch) (*models.YearModel, error) {
	if patch.Image != nil && patch.ImagePath != "" {
		return nil, apperrors.NewValidationError("image", "either upload an image or reference one, not both")
	}

	var img *StagedImage
	if patch.ImagePath != "" {
		var err error
		img, err = s.images.Stage(ctx, patch.ImagePath, year, CategoryYear, year)
		if err != nil {
			return nil, err
		}
		defer s.images.Discard(ctx, img)
		patch.Image = &img.Path
	}

	var row models.YearModel
	n, err := s.gw.ConditionalUpdate(ctx, &row, "years", "year", year, patch.Fields())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}

	if img != nil {
		if err := s.images.Commit(ctx, img); err != nil {
			return nil, err
		}
	}
	return &row, nil
}

// DeleteYear removes a year. Buildings starting or ending on it are removed with it.
func (s *YearService) DeleteYear(ctx context.Context, year int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM years WHERE year = ?", year)
	if err != nil {
		logging.Error().Err(err).Int("year", year).Msg("unable to delete year")
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
