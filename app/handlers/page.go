package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/heartscript/storefront/app/helpers"
	"github.com/heartscript/storefront/app/services"
	"github.com/unrolled/render"
)

const (
	// MaxUploadBytes bounds a single multipart request.
	MaxUploadBytes = 16 << 20
	maxMemoryBytes = 8 << 20
)

// RenderPage writes a page view model. Pages are JSON documents; the shared
// fields come from helpers.GetBaseData.
func RenderPage(rnd *render.Render, w http.ResponseWriter, r *http.Request, status int, data map[string]interface{}) {
	_ = rnd.JSON(w, status, helpers.GetBaseData(r, data))
}

func RenderError(rnd *render.Render, w http.ResponseWriter, r *http.Request, err error) {
	RenderPage(rnd, w, r, helpers.StatusFromError(err), map[string]interface{}{
		"Title":         "Error",
		"MessageStatus": "error",
		"Message":       helpers.MessageFromError(err),
	})
}

// ReadUpload returns the file posted under field, or nil when the field is
// absent or empty.
func ReadUpload(r *http.Request, field string) (*services.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	defer file.Close()

	if header.Filename == "" {
		return nil, nil
	}
	content, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", field, err)
	}
	return &services.Upload{Filename: header.Filename, Content: content}, nil
}

// ParseMultipart accepts both multipart and url-encoded bodies.
func ParseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	err := r.ParseMultipartForm(maxMemoryBytes)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}
