package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/utafrali/catalog/internal/service"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

const (
	// maxUploadSize bounds a whole multipart request.
	maxUploadSize = 50 << 20
	// maxFormMemory is the part of a form kept in memory; the rest spills to
	// temporary files.
	maxFormMemory = 10 << 20
	// maxJSONBody bounds a JSON request body.
	maxJSONBody = 1 << 20
)

// form wraps a parsed multipart request.
type form struct {
	*multipart.Form
}

// parseForm parses a multipart request. A request that is not multipart
// yields an empty form so that JSON-less updates still work.
func parseForm(w http.ResponseWriter, r *http.Request) (*form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return &form{Form: &multipart.Form{}}, nil
		}
		return nil, fmt.Errorf("parse multipart form: %w: %w", apperrors.ErrInvalidInput, err)
	}
	return &form{Form: r.MultipartForm}, nil
}

// value returns the first value of field, or nil when the field is absent.
func (f *form) value(field string) *string {
	vs, ok := f.Value[field]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

// boolean parses field as a boolean. Absent fields yield nil.
func (f *form) boolean(field string) (*bool, error) {
	raw := f.value(field)
	if raw == nil {
		return nil, nil
	}
	v, err := strconv.ParseBool(*raw)
	if err != nil {
		return nil, apperrors.InvalidInput(field + " must be true or false")
	}
	return &v, nil
}

// jsonValue decodes field as a JSON document into dst. It reports whether
// the field was present.
func (f *form) jsonValue(field string, dst any) (bool, error) {
	raw := f.value(field)
	if raw == nil || *raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(*raw), dst); err != nil {
		return false, apperrors.InvalidInput("Invalid " + field + " format")
	}
	return true, nil
}

// files reads every file uploaded under field.
func (f *form) files(field string) ([]service.FileUpload, error) {
	if f.File == nil {
		return nil, nil
	}
	headers := f.File[field]
	uploads := make([]service.FileUpload, 0, len(headers))
	for _, h := range headers {
		upload, err := readFile(h)
		if err != nil {
			return nil, err
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

// file reads the first file uploaded under field, or nil when there is none.
func (f *form) file(field string) (*service.FileUpload, error) {
	uploads, err := f.files(field)
	if err != nil || len(uploads) == 0 {
		return nil, err
	}
	return &uploads[0], nil
}

func readFile(h *multipart.FileHeader) (service.FileUpload, error) {
	file, err := h.Open()
	if err != nil {
		return service.FileUpload{}, fmt.Errorf("open upload %s: %w", h.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return service.FileUpload{}, fmt.Errorf("read upload %s: %w", h.Filename, err)
	}
	return service.FileUpload{FileName: h.Filename, Data: data}, nil
}
