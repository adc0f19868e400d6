package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"academy/internal/domain/file"
)

// handleUploadFile handles POST /api/files. Slips and thumbnails
// arrive as multipart form data under the "file" field; the bytes go
// to the disk store and the metadata row makes the ID resolvable.
func handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionOrFail(w, r); !ok {
		return
	}
	if uploads == nil {
		http.Error(w, "uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, file.MaxUploadBytes+4096)
	if err := r.ParseMultipartForm(file.MaxUploadBytes); err != nil {
		http.Error(w, "upload too large or malformed", http.StatusRequestEntityTooLarge)
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "a file field is required", http.StatusBadRequest)
		return
	}
	defer f.Close()

	mimetype := header.Header.Get("Content-Type")
	if err := file.ValidateUpload(header.Size, mimetype); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := generateID()
	path, err := uploads.Save(id, header.Filename, f)
	if err != nil {
		internalError(w, err)
		return
	}
	stored := file.StoredFile{
		ID:        id,
		Filename:  header.Filename,
		Mimetype:  mimetype,
		Size:      header.Size,
		Path:      path,
		CreatedAt: timeNow(),
	}
	if err := stores.FileStore.Save(r.Context(), stored); err != nil {
		// Orphaned bytes are worse than a failed upload.
		_ = uploads.Remove(path)
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// handleDownloadFile handles GET /api/files/{id}.
func handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	if _, ok := sessionOrFail(w, r); !ok {
		return
	}
	if uploads == nil {
		http.Error(w, "uploads are not configured", http.StatusServiceUnavailable)
		return
	}

	stored, err := stores.FileStore.GetByID(r.Context(), r.PathValue("id"))
	if errors.Is(err, file.ErrNotFound) {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}

	rc, err := uploads.Open(stored.Path)
	if err != nil {
		internalError(w, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", stored.Mimetype)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", stored.Size))
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", stored.Filename))
	if _, err := io.Copy(w, rc); err != nil {
		internalError(w, err)
	}
}
