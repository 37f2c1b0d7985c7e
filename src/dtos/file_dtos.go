package dtos

// UploadFileCommand describes one shared file already saved to a temporary path.
type UploadFileCommand struct {
	Kind        string  `form:"-"`
	Tag         string  `form:"tag" binding:"omitempty,max=255"`
	MajorGroup  *string `form:"major_group" binding:"omitempty,max=32"`
	FileGroup   *string `form:"f_group" binding:"omitempty,max=32"`
	TempPath    string  `form:"-"`
	ContentType string  `form:"-"`
	Size        int64   `form:"-"`
}
