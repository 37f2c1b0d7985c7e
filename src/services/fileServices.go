package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/db"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/models"
	"github.com/ARQAP/archive-backend/src/storage"
)

// MaxFileSize caps every upload, shared files and SVG drawings alike.
const MaxFileSize = 20 << 20

// FileKind describes one family of shared files.
type FileKind struct {
	Name         string
	ContentTypes []string
	// ServeAs is the content type downloads are sent with; empty means the stored type is sniffed.
	ServeAs string
}

var (
	KindCSV   = FileKind{Name: models.FileKindCSV, ContentTypes: []string{"text/csv"}, ServeAs: "text/csv"}
	KindPDF   = FileKind{Name: models.FileKindPDF, ContentTypes: []string{"application/pdf"}, ServeAs: "application/pdf"}
	KindImage = FileKind{Name: models.FileKindImage, ContentTypes: []string{"image/jpeg", "image/png", "image/tiff"}}
)

// Accepts reports whether contentType is allowed for this kind.
func (k FileKind) Accepts(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	for _, allowed := range k.ContentTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// majorFileGroups are the groups a file can claim from its own name.
var majorFileGroups = []string{"buildings", "features"}

// MajorGroupFor files a shared file under "buildings" or "features" when
// its name says so and under "finds" otherwise.
func MajorGroupFor(tag string) string {
	stem := strings.ToLower(strings.TrimSuffix(tag, path.Ext(tag)))
	for _, g := range majorFileGroups {
		if stem == g {
			return g
		}
	}
	return "finds"
}

type FileService struct {
	gw    db.Gateway
	store storage.Store
}

// NewFileService creates a new instance of FileService
func NewFileService(gw db.Gateway, store storage.Store) *FileService {
	return &FileService{gw: gw, store: store}
}

func fileKey(kind, tag string) string {
	return "files/" + kind + "/" + tag
}

func validTag(tag string) bool {
	return tag != "" && tag != "." && !strings.ContainsAny(tag, `/\`) && !strings.Contains(tag, "..")
}

// ListFiles retrieves every shared file of a kind
func (s *FileService) ListFiles(ctx context.Context, kind FileKind) ([]models.SharedFileModel, error) {
	files := []models.SharedFileModel{}
	err := s.gw.Query(ctx, &files,
		"SELECT * FROM files WHERE kind = ? ORDER BY major_group ASC, id ASC", kind.Name)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.SharedFileModel{}
	}
	return files, nil
}

// Register stores bytes under tag and records the file with the next stable href.
func (s *FileService) Register(ctx context.Context, kind FileKind, tag string, data []byte, majorGroup, fileGroup *string) (*models.SharedFileModel, error) {
	if !validTag(tag) {
		return nil, apperrors.NewValidationError("tag", "tag must be a plain file name")
	}

	key := fileKey(kind.Name, tag)
	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: a file with that name already exists", apperrors.ErrConflict)
	}

	n, err := s.gw.NextSequence(ctx, models.CounterFiles)
	if err != nil {
		return nil, fmt.Errorf("%w: reserving file href: %w", apperrors.ErrInsertFailure, err)
	}

	file := models.SharedFileModel{
		Kind:       kind.Name,
		Tag:        tag,
		FileGroup:  fileGroup,
		MajorGroup: MajorGroupFor(tag),
		Href:       fmt.Sprintf("/%s/%d", kind.Name, n),
	}
	if majorGroup != nil && *majorGroup != "" {
		file.MajorGroup = *majorGroup
	}
	if file.FileGroup == nil {
		stem := strings.TrimSuffix(tag, path.Ext(tag))
		file.FileGroup = &stem
	}

	// Bytes stay under a key private to this call until the row exists, so a
	// losing concurrent upload of the same tag cannot touch the winner's file.
	staged, err := storage.Stage(ctx, s.store, key, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInsertFailure, err)
	}
	defer func() {
		if err := staged.Discard(context.WithoutCancel(ctx)); err != nil {
			logging.Error().Err(err).Str("key", staged.TempKey()).Msg("failed to remove staged file")
		}
	}()

	if err := s.gw.Insert(ctx, &file); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, fmt.Errorf("%w: a file with that name already exists", apperrors.ErrConflict)
		}
		logging.Error().Err(err).Str("tag", tag).Msg("error inserting file")
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInsertFailure, err)
	}

	if err := staged.Commit(ctx); err != nil {
		logging.Error().Err(err).Str("tag", tag).Msg("error publishing file")
		if _, delErr := s.gw.Execute(context.WithoutCancel(ctx), "DELETE FROM files WHERE id = ?", file.ID); delErr != nil {
			logging.Error().Err(delErr).Int("file", file.ID).Msg("failed to remove file row without bytes")
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInsertFailure, err)
	}
	return &file, nil
}

// Upload registers a file that was saved to a temporary path by the HTTP layer.
func (s *FileService) Upload(ctx context.Context, kind FileKind, cmd dtos.UploadFileCommand) (*models.SharedFileModel, error) {
	if cmd.Size >= MaxFileSize {
		return nil, apperrors.NewValidationError("file", "file is larger than 20 Mb")
	}
	if !kind.Accepts(cmd.ContentType) {
		return nil, apperrors.NewValidationError("file",
			fmt.Sprintf("Mimetype %s is not allowed. Only %s files are accepted", cmd.ContentType, strings.Join(kind.ContentTypes, ",")))
	}

	data, err := os.ReadFile(cmd.TempPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading upload: %v", apperrors.ErrInsertFailure, err)
	}
	return s.Register(ctx, kind, cmd.Tag, data, cmd.MajorGroup, cmd.FileGroup)
}

func (s *FileService) byHref(ctx context.Context, kind FileKind, n int) (*models.SharedFileModel, error) {
	var file models.SharedFileModel
	found, err := s.gw.QueryOne(ctx, &file,
		"SELECT * FROM files WHERE href = ? AND kind = ?", fmt.Sprintf("/%s/%d", kind.Name, n), kind.Name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.ErrNotFound
	}
	return &file, nil
}

// OpenFile streams the file published at /<kind>/<n>. The caller closes the reader.
func (s *FileService) OpenFile(ctx context.Context, kind FileKind, n int) (*models.SharedFileModel, io.ReadCloser, storage.Info, error) {
	file, err := s.byHref(ctx, kind, n)
	if err != nil {
		return nil, nil, storage.Info{}, err
	}
	body, info, err := s.store.Open(ctx, fileKey(kind.Name, file.Tag))
	if errors.Is(err, storage.ErrNotExist) {
		return nil, nil, storage.Info{}, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, nil, storage.Info{}, fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	return file, body, info, nil
}

// DeleteFile removes the stored bytes and then the row of the file published at /<kind>/<n>.
func (s *FileService) DeleteFile(ctx context.Context, kind FileKind, n int) error {
	file, err := s.byHref(ctx, kind, n)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, fileKey(kind.Name, file.Tag)); err != nil && !errors.Is(err, storage.ErrNotExist) {
		logging.Error().Err(err).Str("tag", file.Tag).Msg("unable to delete stored file")
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	deleted, err := s.gw.Execute(ctx, "DELETE FROM files WHERE id = ?", file.ID)
	if err != nil {
		logging.Error().Err(err).Int("file", file.ID).Msg("unable to delete file")
		return err
	}
	if deleted == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
