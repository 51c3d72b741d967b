package http

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/logger"
	"orggov-backend/internal/storage"

	"github.com/gorilla/mux"
)

// FileHandler serves stored documents and officer pictures.
type FileHandler struct {
	files storage.StorageInterface
}

func NewFileHandler(files storage.StorageInterface) *FileHandler {
	return &FileHandler{files: files}
}

// HandleDownload streams a stored file by its key.
func (h *FileHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	category := vars["category"]
	if category != storage.CategoryDocuments && category != storage.CategoryPictures {
		writeError(w, r, domain.NotFoundError("file not found"))
		return
	}
	key := category + "/" + vars["name"]

	file, err := h.files.ReadFile(key)
	if err != nil {
		writeError(w, r, domain.NotFoundError("file not found"))
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentTypeFor(key))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Failed to stream file", "key", key, "error", err)
	}
}

func contentTypeFor(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return "application/octet-stream"
}
