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

type ReferenceService struct {
	gw db.Gateway
}

// NewReferenceService creates a new instance of ReferenceService
func NewReferenceService(gw db.Gateway) *ReferenceService {
	return &ReferenceService{gw: gw}
}

// ListReferences retrieves every reference ordered by citation
func (s *ReferenceService) ListReferences(ctx context.Context) ([]models.ReferenceModel, error) {
	refs := []models.ReferenceModel{}
	if err := s.gw.Query(ctx, &refs, "SELECT * FROM refs ORDER BY reference ASC"); err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []models.ReferenceModel{}
	}
	return refs, nil
}

// CreateReference stores a new reference
func (s *ReferenceService) CreateReference(ctx context.Context, cmd dtos.CreateReferenceCommand) (*models.ReferenceModel, error) {
	ref := models.ReferenceModel{Reference: cmd.Reference, Description: cmd.Description, DOI: cmd.DOI}
	if err := s.gw.Insert(ctx, &ref); err != nil {
		logging.Error().Err(err).Msg("error inserting reference")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}
	return &ref, nil
}

// UpdateReference applies patch to a reference
func (s *ReferenceService) UpdateReference(ctx context.Context, id int, patch dtos.ReferencePatch) (*models.ReferenceModel, error) {
	var ref models.ReferenceModel
	n, err := s.gw.ConditionalUpdate(ctx, &ref, "refs", "id", id, patch.Fields())
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &ref, nil
}

// DeleteReference removes a reference
func (s *ReferenceService) DeleteReference(ctx context.Context, id int) error {
	n, err := s.gw.Execute(ctx, "DELETE FROM refs WHERE id = ?", id)
	if err != nil {
		logging.Error().Err(err).Int("reference", id).Msg("unable to delete reference")
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
