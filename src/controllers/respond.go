package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/ARQAP/archive-backend/src/apperrors"
	"github.com/ARQAP/archive-backend/src/logging"
	"github.com/ARQAP/archive-backend/src/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

func init() {
	// Report request field names rather than Go field names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "gtefield":
		return fmt.Sprintf("must not be before %s", strings.ToLower(fe.Param()))
	default:
		return fmt.Sprintf("failed the %s check", fe.Tag())
	}
}

// bindError turns a binding failure into the archive's validation error.
func bindError(err error) error {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		out := &apperrors.ValidationError{}
		for _, fe := range ves {
			out.Errors = append(out.Errors, apperrors.FieldError{Field: fe.Field(), Error: fieldMessage(fe)})
		}
		return out
	}
	return apperrors.NewValidationError("body", err.Error())
}

// respondError writes err with the status it maps to.
func respondError(ctx *gin.Context, err error) {
	status := apperrors.Status(err)
	_ = ctx.Error(err)

	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		ctx.JSON(status, gin.H{"errors": ve.Errors})
		return
	}
	if status == http.StatusInternalServerError {
		logging.Error().Err(err).Str("path", ctx.Request.URL.Path).Msg("request failed")
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}

// paramID parses a positive integer route parameter, answering 400 when it is not one.
func paramID(ctx *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid %s format", name)})
		return 0, false
	}
	return id, true
}

// saveUpload stores the multipart file under field in tempDir. It returns
// an empty path when the request carried no such file; the caller removes
// the temporary file once done.
func saveUpload(ctx *gin.Context, field, tempDir string) (string, error) {
	if !strings.HasPrefix(ctx.ContentType(), "multipart/") {
		return "", nil
	}
	header, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.NewValidationError(field, err.Error())
	}
	if header.Size >= services.MaxFileSize {
		return "", apperrors.NewValidationError(field, "file is larger than 20 Mb")
	}

	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(tempDir, uuid.NewString()+filepath.Ext(header.Filename))
	if err := ctx.SaveUploadedFile(header, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func removeUpload(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn().Err(err).Str("path", path).Msg("unable to remove temporary upload")
	}
}

// respondResolution writes either the JSON value or the SVG asset a resolver produced.
func respondResolution(ctx *gin.Context, res *services.Resolution) {
	if res.Asset == nil {
		ctx.JSON(http.StatusOK, res.Data)
		return
	}
	defer res.Asset.Close()
	ctx.DataFromReader(http.StatusOK, res.AssetInfo.Size, "image/svg+xml", res.Asset, nil)
}

// bind decodes a JSON or multipart body into obj. A request without a body
// is still validated so required fields are reported.
func bind(ctx *gin.Context, obj any) error {
	if ctx.Request.ContentLength == 0 && ctx.ContentType() == "" {
		if err := binding.Validator.ValidateStruct(obj); err != nil {
			return bindError(err)
		}
		return nil
	}
	if err := ctx.ShouldBind(obj); err != nil {
		return bindError(err)
	}
	return nil
}
