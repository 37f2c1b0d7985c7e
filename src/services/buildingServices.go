package services

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/ARQAP/archive-backend/src/utils"
	"golang.org/x/sync/errgroup"
)

// Resolution is what a year or building identifier resolved to: either a
// JSON value or a stored SVG asset. Asset must be closed by the caller.
type Resolution struct {
	Data      any
	Asset     io.ReadCloser
	AssetInfo storage.Info
}

type BuildingService struct {
	gw         db.Gateway
	images     *ImageService
	aggregates *AggregateService
}

// NewBuildingService creates a new instance of BuildingService
func NewBuildingService(gw db.Gateway, images *ImageService, aggregates *AggregateService) *BuildingService {
	return &BuildingService{gw: gw, images: images, aggregates: aggregates}
}

// ListActive retrieves the buildings active in year.
func (s *BuildingService) ListActive(ctx context.Context, year int) ([]models.BuildingModel, error) {
	var buildings []models.BuildingModel
	err := s.gw.Query(ctx, &buildings,
		`SELECT * FROM buildings
		WHERE ? >= start_year AND ? < end_year
		ORDER BY id ASC`, year, year)
	if err != nil {
		return nil, err
	}
	if len(buildings) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return buildings, nil
}

// GetActive retrieves one building, provided it is active in year.
func (s *BuildingService) GetActive(ctx context.Context, id, year int) (*models.BuildingModel, bool, error) {
	var building models.BuildingModel
	found, err := s.gw.QueryOne(ctx, &building,
		`SELECT * FROM buildings
		WHERE id = ?
		AND ? >= start_year AND ? < end_year`, id, year, year)
	if err != nil || !found {
		return nil, false, err
	}
	return &building, true, nil
}

// Detail merges a building with its aggregates, which are fetched concurrently.
func (s *BuildingService) Detail(ctx context.Context, building models.BuildingModel) *dtos.BuildingDetail {
	detail := &dtos.BuildingDetail{BuildingModel: building}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail.Features = s.aggregates.SummarizeFeatures(gctx, building.ID)
		return nil
	})
	g.Go(func() error {
		detail.Finds = s.aggregates.SummarizeFinds(gctx, building.ID)
		return nil
	})
	g.Go(func() error {
		detail.Files.Features = s.aggregates.FilesByGroup(gctx, building.ID, "features")
		return nil
	})
	g.Go(func() error {
		detail.Files.Finds = s.aggregates.FilesByBuilding(gctx, building.ID)
		return nil
	})
	// Aggregates soft-fail, so Wait has nothing to report.
	_ = g.Wait()

	return detail
}

// Resolve turns a building identifier into either the composite building
// (numeric ids active in year) or a stored SVG of that name.
func (s *BuildingService) Resolve(ctx context.Context, year int, ident string) (*Resolution, error) {
	if id, err := strconv.Atoi(ident); err == nil && id > 0 {
		building, found, err := s.GetActive(ctx, id, year)
		if err != nil {
			return nil, err
		}
		if found {
			return &Resolution{Data: s.Detail(ctx, *building)}, nil
		}
	}

	body, info, err := s.images.OpenAsset(ctx, CategoryBuilding, ident)
	if err != nil {
		return nil, err
	}
	return &Resolution{Asset: body, AssetInfo: info}, nil
}

// CreateBuilding stores a new building. The id is reserved first so the
// image can be named after it. The image is staged before the row and
// published after it.
func (s *BuildingService) CreateBuilding(ctx context.Context, cmd dtos.CreateBuildingCommand) (*models.BuildingModel, error) {
	building := models.BuildingModel{
		Phase:       cmd.Phase,
		Start:       utils.PreviousDecade(cmd.Start),
		End:         utils.NextDecade(cmd.End),
		Path:        cmd.Path,
		Description: cmd.Description,
		English:     cmd.En,
		Icelandic:   cmd.Is,
	}

	id, err := s.gw.NextSequence(ctx, models.CounterBuildings)
	if err != nil {
		return nil, fmt.Errorf("%w: reserving building id: %w", apperrors.ErrInsertFailure, err)
	}
	building.ID = id

	var img *StagedImage
	if cmd.ImagePath != "" {
		img, err = s.images.Stage(ctx, cmd.ImagePath, id, CategoryBuilding, building.Start)
		if err != nil {
			return nil, err
		}
		defer s.images.Discard(ctx, img)
		building.Image = &img.Path
	}

	if err := s.gw.Insert(ctx, &building); err != nil {
		logging.Error().Err(err).Int("building", id).Str("phase", building.Phase).Msg("error inserting building")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}

	if img != nil {
		if err := s.images.Commit(ctx, img); err != nil {
			if _, delErr := s.gw.Execute(context.WithoutCancel(ctx), "DELETE FROM buildings WHERE id = ?", id); delErr != nil {
				logging.Error().Err(delErr).Int("building", id).Msg("failed to remove building without drawing")
			}
			return nil, err
		}
	}
	return &building, nil
}

// UpdateBuilding applies patch to the building. Rounded start and end
// are checked against the stored row. An uploaded image is staged first
// and published once the row update succeeded.
func (s *BuildingService) UpdateBuilding(ctx context.Context, id, routeYear int, patch dtos.BuildingPatch) (*models.BuildingModel, error) {
	if patch.Image != nil && patch.ImagePath != "" {
		return nil, apperrors.NewValidationError("image", "either upload an image or reference one, not both")
	}
	if patch.Start != nil {
		start := utils.PreviousDecade(*patch.Start)
		patch.Start = &start
	}
	if patch.End != nil {
		end := utils.NextDecade(*patch.End)
		patch.End = &end
	}

	if err := s.checkRange(ctx, id, patch.Start, patch.End); err != nil {
		return nil, err
	}

	var img *StagedImage
	if patch.ImagePath != "" {
		var err error
		img, err = s.images.Stage(ctx, patch.ImagePath, id, CategoryBuilding, routeYear)
		if err != nil {
			return nil, err
		}
		defer s.images.Discard(ctx, img)
		patch.Image = &img.Path
	}

	var building models.BuildingModel
	n, err := s.gw.ConditionalUpdate(ctx, &building, "buildings", "id", id, patch.Fields())
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
	return &building, nil
}

// checkRange rejects a start or end that would leave the building ending
// before it starts. Missing bounds are taken from the stored row.
func (s *BuildingService) checkRange(ctx context.Context, id int, start, end *int) error {
	if start == nil && end == nil {
		return nil
	}
	if start == nil || end == nil {
		var stored models.BuildingModel
		found, err := s.gw.QueryOne(ctx, &stored, "SELECT * FROM buildings WHERE id = ?", id)
		if err != nil {
			return err
		}
		if !found {
			return apperrors.ErrNotFound
		}
		if start == nil {
			start = &stored.Start
		}
		if end == nil {
			end = &stored.End
		}
	}
	if *start > *end {
		return apperrors.NewValidationError("end", fmt.Sprintf("end (%d) must not be before start (%d)", *end, *start))
	}
	return nil
}

// DeleteBuilding removes a building; its features and finds go with it.
func (s *BuildingService) DeleteBuilding(ctx context.Context, id int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM buildings WHERE id = ?", id)
	if err != nil {
		logging.Error().Err(err).Int("building", id).Msg("unable to delete building")
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Exists reports whether a building row with id exists.
func (s *BuildingService) Exists(ctx context.Context, id int) (bool, error) {
	var building models.BuildingModel
	return s.gw.QueryOne(ctx, &building, "SELECT * FROM buildings WHERE id = ?", id)
}
