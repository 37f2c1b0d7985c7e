package controllers

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/dtos"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// FileController serves one kind of shared file: csv, pdf or images.
type FileController struct {
	service *services.FileService
	kind    services.FileKind
	tempDir string
}

func NewFileController(service *services.FileService, kind services.FileKind, tempDir string) *FileController {
	return &FileController{service: service, kind: kind, tempDir: tempDir}
}

func (c *FileController) GetFiles(ctx *gin.Context) {
	files, err := c.service.ListFiles(ctx.Request.Context(), c.kind)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, files)
}

// GetFile streams the file published at /<kind>/:fileId
func (c *FileController) GetFile(ctx *gin.Context) {
	n, ok := paramID(ctx, "fileId")
	if !ok {
		return
	}
	file, body, info, err := c.service.OpenFile(ctx.Request.Context(), c.kind, n)
	if err != nil {
		respondError(ctx, err)
		return
	}
	defer body.Close()

	contentType := c.kind.ServeAs
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(file.Tag))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	headers := map[string]string{
		"Content-Disposition": mime.FormatMediaType("inline", map[string]string{"filename": file.Tag}),
	}
	ctx.DataFromReader(http.StatusOK, info.Size, contentType, body, headers)
}

func (c *FileController) UploadFile(ctx *gin.Context) {
	var cmd dtos.UploadFileCommand
	if err := ctx.ShouldBind(&cmd); err != nil {
		respondError(ctx, bindError(err))
		return
	}

	header, err := ctx.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		respondError(ctx, apperrors.NewValidationError("file", "is required"))
		return
	}
	if err != nil {
		respondError(ctx, apperrors.NewValidationError("file", err.Error()))
		return
	}

	if err := os.MkdirAll(c.tempDir, 0o755); err != nil {
		respondError(ctx, err)
		return
	}
	dst := filepath.Join(c.tempDir, uuid.NewString()+filepath.Ext(header.Filename))
	if err := ctx.SaveUploadedFile(header, dst); err != nil {
		respondError(ctx, fmt.Errorf("%w: saving upload: %v", apperrors.ErrInsertFailure, err))
		return
	}
	defer removeUpload(dst)

	cmd.Kind = c.kind.Name
	if cmd.Tag == "" {
		cmd.Tag = filepath.Base(header.Filename)
	}
	cmd.TempPath = dst
	cmd.ContentType = header.Header.Get("Content-Type")
	cmd.Size = header.Size

	file, err := c.service.Upload(ctx.Request.Context(), c.kind, cmd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, file)
}

func (c *FileController) DeleteFile(ctx *gin.Context) {
	n, ok := paramID(ctx, "fileId")
	if !ok {
		return
	}
	if err := c.service.DeleteFile(ctx.Request.Context(), c.kind, n); err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{})
}
