package http

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/storage"
)

const (
	maxRequestBody = 64 << 20
	multipartMem   = 32 << 20
)

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseMultipartForm(multipartMem); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.ValidationError("request exceeds %d MB", maxRequestBody>>20)
		}
		return domain.ValidationError("invalid multipart form: %v", err)
	}
	return nil
}

// readUpload reads at most limit+1 bytes so the file validator can still
// report an oversized file.
func readUpload(fh *multipart.FileHeader, limit int64) (domain.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return domain.Upload{}, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return domain.Upload{Filename: fh.Filename, Data: data}, nil
}

// formFile returns the single file sent under field, or nil when absent.
func formFile(r *http.Request, field string, limit int64) (*domain.Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	up, err := readUpload(r.MultipartForm.File[field][0], limit)
	if err != nil {
		return nil, err
	}
	return &up, nil
}

// documentUploads collects every file field named after a document type.
func documentUploads(r *http.Request) ([]domain.DocumentUpload, error) {
	var docs []domain.DocumentUpload
	for field, headers := range r.MultipartForm.File {
		t := domain.DocumentType(field)
		if !t.Valid() {
			return nil, domain.ValidationError("unknown document type %q", field)
		}
		if len(headers) != 1 {
			return nil, domain.ValidationError("exactly one file is expected for %s", field)
		}
		up, err := readUpload(headers[0], storage.MaxDocumentSize)
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.DocumentUpload{DocumentType: t, File: up})
	}
	return docs, nil
}
