package services

import (
	"context"
	"fmt"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
)

type FindService struct {
	gw        db.Gateway
	buildings *BuildingService
}

// NewFindService creates a new instance of FindService
func NewFindService(gw db.Gateway, buildings *BuildingService) *FindService {
	return &FindService{gw: gw, buildings: buildings}
}

// ListFinds retrieves the finds of a building
func (s *FindService) ListFinds(ctx context.Context, buildingID int) ([]models.FindModel, error) {
	var finds []models.FindModel
	if err := s.gw.Query(ctx, &finds, "SELECT * FROM finds WHERE building = ? ORDER BY id ASC", buildingID); err != nil {
		return nil, err
	}
	if len(finds) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return finds, nil
}

// CreateFind adds a find to an existing building
func (s *FindService) CreateFind(ctx context.Context, buildingID int, cmd dtos.CreateFindCommand) (*models.FindModel, error) {
	exists, err := s.buildings.Exists(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	find := models.FindModel{
		Building:     buildingID,
		ObjType:      cmd.ObjType,
		MaterialType: cmd.MaterialType,
		FileGroup:    cmd.FileGroup,
		Fragments:    cmd.Fragments,
	}
	if err := s.gw.Insert(ctx, &find); err != nil {
		logging.Error().Err(err).Int("building", buildingID).Msg("error inserting find")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}
	return &find, nil
}

// UpdateFind applies patch to a find
func (s *FindService) UpdateFind(ctx context.Context, id int, patch dtos.FindPatch) (*models.FindModel, error) {
	var find models.FindModel
	n, err := s.gw.ConditionalUpdate(ctx, &find, "finds", "id", id, patch.Fields())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &find, nil
}

// DeleteFind removes a find
func (s *FindService) DeleteFind(ctx context.Context, id int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM finds WHERE id = ?", id)
	if err != nil {
		logging.Error().Err(err).Int("find", id).Msg("unable to delete find")
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
