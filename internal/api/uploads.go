package api

import (
	"fmt"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"github.com/pageza/mealshare/backend/internal/storage"
)

// formFiles opens every file sent under field. JSON requests carry no files.
// The returned close func must be called once the uploads are consumed.
func formFiles(c *gin.Context, field string) ([]storage.Upload, func(), error) {
	noop := func() {}
	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, fmt.Errorf("invalid multipart form: %w", err)
	}

	headers := form.File[field]
	uploads := make([]storage.Upload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			closeAll()
			return nil, noop, fmt.Errorf("failed to open %s: %w", h.Filename, err)
		}
		opened = append(opened, f)
		uploads = append(uploads, storage.Upload{
			Filename:    h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

// formFile is formFiles for a single optional file
func formFile(c *gin.Context, field string) (*storage.Upload, func(), error) {
	uploads, closeFn, err := formFiles(c, field)
	if err != nil || len(uploads) == 0 {
		return nil, closeFn, err
	}
	return &uploads[0], closeFn, nil
}
