package services

import (
	"context"

	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/metrics"
	"github.com/ARQAP/archive-backend/src/models"
)

// AggregateService answers the read-side summaries shown on a building.
// A failed query degrades to an empty list: it is logged and counted, never returned.
type AggregateService struct {
	gw db.Gateway
}

// NewAggregateService creates a new instance of AggregateService
func NewAggregateService(gw db.Gateway) *AggregateService {
	return &AggregateService{gw: gw}
}

func softFail(aggregate string, buildingID int, err error) {
	metrics.AggregateFailuresTotal.WithLabelValues(aggregate).Inc()
	logging.Warn().Err(err).
		Str("aggregate", aggregate).
		Int("building", buildingID).
		Msg("aggregate query failed, serving empty result")
}

// SummarizeFeatures counts a building's features per type, ordered by type.
func (s *AggregateService) SummarizeFeatures(ctx context.Context, buildingID int) []dtos.FeatureSummary {
	var rows []dtos.FeatureSummary
	err := s.gw.Query(ctx, &rows,
		`SELECT type, COUNT(id) AS count
		FROM features
		WHERE building = ?
		GROUP BY type
		ORDER BY type ASC`, buildingID)
	if err != nil {
		softFail("features", buildingID, err)
		return []dtos.FeatureSummary{}
	}
	if rows == nil {
		rows = []dtos.FeatureSummary{}
	}
	return rows
}

// SummarizeFinds sums a building's find fragments per file group, ordered by group.
func (s *AggregateService) SummarizeFinds(ctx context.Context, buildingID int) []dtos.FindSummary {
	var rows []dtos.FindSummary
	err := s.gw.Query(ctx, &rows,
		`SELECT f_group, COALESCE(SUM(fragments), 0) AS total_fragments
		FROM finds
		WHERE building = ?
		GROUP BY f_group
		ORDER BY f_group ASC`, buildingID)
	if err != nil {
		softFail("finds", buildingID, err)
		return []dtos.FindSummary{}
	}
	if rows == nil {
		rows = []dtos.FindSummary{}
	}
	return rows
}

// FilesByGroup lists shared files filed under group.
func (s *AggregateService) FilesByGroup(ctx context.Context, buildingID int, group string) []models.SharedFileModel {
	var rows []models.SharedFileModel
	err := s.gw.Query(ctx, &rows,
		`SELECT * FROM files
		WHERE f_group = ?
		ORDER BY major_group ASC, id ASC`, group)
	if err != nil {
		softFail("files_by_group", buildingID, err)
		return []models.SharedFileModel{}
	}
	if rows == nil {
		rows = []models.SharedFileModel{}
	}
	return rows
}

// FilesByBuilding lists the shared files whose group appears among the building's finds.
func (s *AggregateService) FilesByBuilding(ctx context.Context, buildingID int) []models.SharedFileModel {
	var rows []models.SharedFileModel
	err := s.gw.Query(ctx, &rows,
		`SELECT * FROM files
		WHERE f_group IN (
			SELECT DISTINCT f_group FROM finds WHERE building = ? AND f_group IS NOT NULL
		)
		ORDER BY major_group ASC, id ASC`, buildingID)
	if err != nil {
		softFail("files_by_building", buildingID, err)
		return []models.SharedFileModel{}
	}
	if rows == nil {
		rows = []models.SharedFileModel{}
	}
	return rows
}
