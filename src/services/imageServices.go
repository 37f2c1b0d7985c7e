package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/metrics"
	"github.com/ARQAP/archive-backend/src/storage"
	"github.com/ARQAP/archive-backend/src/svg"
)

// ImageCategory selects where an ingested SVG is stored and how its public route is built.
type ImageCategory string

const (
	CategoryYear     ImageCategory = "years"
	CategoryBuilding ImageCategory = "buildings"
)

var assetNamePattern = regexp.MustCompile(`^[0-9A-Za-z_-]+(\.[0-9A-Za-z]+)?$`)

type ImageService struct {
	store     storage.Store
	optimizer svg.Optimizer
}

// NewImageService creates a new instance of ImageService
func NewImageService(store storage.Store, optimizer svg.Optimizer) *ImageService {
	return &ImageService{store: store, optimizer: optimizer}
}

func assetKey(category ImageCategory, name string) string {
	return "svg/" + string(category) + "/" + name
}

// PublicPath is the route an ingested image is served from. Building
// images are nested under the year they were uploaded through.
func PublicPath(category ImageCategory, id, routeYear int) string {
	if category == CategoryBuilding {
		return fmt.Sprintf("/years/%d/buildings/%d.svg", routeYear, id)
	}
	return fmt.Sprintf("/years/%d.svg", id)
}

// StagedImage is an optimized drawing waiting for its row write. Path is
// the public route the row should store.
type StagedImage struct {
	Path     string
	id       int
	category ImageCategory
	staged   *storage.Staged
}

// Ingest optimizes the raw SVG at rawPath and stores it under a name derived
// from id. Ingesting the same id again replaces the stored file.
func (s *ImageService) Ingest(ctx context.Context, rawPath string, id int, category ImageCategory, routeYear int) (string, error) {
	img, err := s.Stage(ctx, rawPath, id, category, routeYear)
	if err != nil {
		return "", err
	}
	defer s.Discard(ctx, img)
	if err := s.Commit(ctx, img); err != nil {
		return "", err
	}
	return img.Path, nil
}

// Stage optimizes the raw SVG at rawPath and writes it under a temporary
// key. The drawing at the id's public path is left alone until Commit.
func (s *ImageService) Stage(ctx context.Context, rawPath string, id int, category ImageCategory, routeYear int) (*StagedImage, error) {
	staged, err := s.stage(ctx, rawPath, id, category)
	if err != nil {
		return nil, s.failed(err, id, category)
	}
	return &StagedImage{Path: PublicPath(category, id, routeYear), id: id, category: category, staged: staged}, nil
}

func (s *ImageService) stage(ctx context.Context, rawPath string, id int, category ImageCategory) (*storage.Staged, error) {
	raw, err := os.ReadFile(rawPath)
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}

	optimized, err := s.optimizer.Optimize(raw)
	if err != nil {
		return nil, err
	}

	return storage.Stage(ctx, s.store, assetKey(category, strconv.Itoa(id)+".svg"), optimized)
}

// Commit moves a staged drawing to its public path, replacing any drawing there.
func (s *ImageService) Commit(ctx context.Context, img *StagedImage) error {
	if err := img.staged.Commit(ctx); err != nil {
		return s.failed(err, img.id, img.category)
	}
	metrics.ImageIngestsTotal.WithLabelValues(string(img.category), "success").Inc()
	return nil
}

func (s *ImageService) failed(err error, id int, category ImageCategory) error {
	metrics.ImageIngestsTotal.WithLabelValues(string(category), "failure").Inc()
	logging.Error().Err(err).
		Str("category", string(category)).
		Int("id", id).
		Msg("image ingestion failed")
	return fmt.Errorf("%w: %v", apperrors.ErrIngestFailure, err)
}

// Discard removes the temporary copy of a staged drawing. It never touches
// the public path. Failures are logged only; nil is ignored.
func (s *ImageService) Discard(ctx context.Context, img *StagedImage) {
	if img == nil {
		return
	}
	if err := img.staged.Discard(context.WithoutCancel(ctx)); err != nil {
		metrics.OrphanCleanupFailuresTotal.Inc()
		logging.Error().Err(err).Str("key", img.staged.TempKey()).Msg("failed to remove staged image")
	}
}

// OpenAsset streams a stored SVG by file name. Names that are not plain
// file names, or that have no stored object, are reported as not found.
func (s *ImageService) OpenAsset(ctx context.Context, category ImageCategory, name string) (io.ReadCloser, storage.Info, error) {
	if !assetNamePattern.MatchString(name) {
		return nil, storage.Info{}, apperrors.ErrNotFound
	}
	body, info, err := s.store.Open(ctx, assetKey(category, name))
	if errors.Is(err, storage.ErrNotExist) {
		return nil, storage.Info{}, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, storage.Info{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	return body, info, nil
}
