// Package media streams stored post images and videos back to clients.
package media

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"plugu/internal/common"
	"plugu/internal/dbmongo"
)

// Downloader is the read side of the media store.
type Downloader interface {
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, *dbmongo.MediaFile, error)
}

type Handler struct {
	storage Downloader
}

func NewHandler(storage Downloader) *Handler {
	return &Handler{storage: storage}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/media/{fileId}", h.serveFile).Methods(http.MethodGet)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	body, file, err := h.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	defer body.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = common.ContentTypeForName(file.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(file.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, body); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("error streaming file")
	}
}
