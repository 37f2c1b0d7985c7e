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

type FeatureService struct {
	gw        db.Gateway
	buildings *BuildingService
}

// NewFeatureService creates a new instance of FeatureService
func NewFeatureService(gw db.Gateway, buildings *BuildingService) *FeatureService {
	return &FeatureService{gw: gw, buildings: buildings}
}

// ListFeatures retrieves the features of a building
func (s *FeatureService) ListFeatures(ctx context.Context, buildingID int) ([]models.FeatureModel, error) {
	var features []models.FeatureModel
	if err := s.gw.Query(ctx, &features, "SELECT * FROM features WHERE building = ? ORDER BY id ASC", buildingID); err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return features, nil
}

// CreateFeature adds a feature to an existing building
func (s *FeatureService) CreateFeature(ctx context.Context, buildingID int, cmd dtos.CreateFeatureCommand) (*models.FeatureModel, error) {
	exists, err := s.buildings.Exists(ctx, buildingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.ErrNotFound
	}

	feature := models.FeatureModel{Building: buildingID, Type: cmd.Type, Description: cmd.Description}
	if err := s.gw.Insert(ctx, &feature); err != nil {
		logging.Error().Err(err).Int("building", buildingID).Msg("error inserting feature")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}
	return &feature, nil
}

// UpdateFeature applies patch to a feature
func (s *FeatureService) UpdateFeature(ctx context.Context, id int, patch dtos.FeaturePatch) (*models.FeatureModel, error) {
	var feature models.FeatureModel
	n, err := s.gw.ConditionalUpdate(ctx, &feature, "features", "id", id, patch.Fields())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &feature, nil
}

// DeleteFeature removes a feature
func (s *FeatureService) DeleteFeature(ctx context.Context, id int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM features WHERE id = ?", id)
	if err != nil {
		logging.Error().Err(err).Int("feature", id).Msg("unable to delete feature")
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
