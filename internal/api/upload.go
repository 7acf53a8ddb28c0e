package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxUploadBytes caps a single image upload.
const maxUploadBytes = 10 << 20

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read image")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		s.writeError(w, http.StatusBadRequest, "only image uploads are accepted")
		return
	}

	name := fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(header.Filename)))
	if prefix := s.cfg.Storage.Prefix; prefix != "" {
		name = prefix + "/" + name
	}
	url, err := s.deps.Uploads.Save(r.Context(), name, data, contentType)
	if err != nil {
		s.logger.Error("image upload failed", zap.String("name", name), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "could not store image")
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
