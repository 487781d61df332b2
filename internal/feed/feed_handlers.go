package feed

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"plugu/internal/common"
)

const maxUploadMemory = 32 << 20

type FeedHandlers struct {
	FeedSvc FeedUsecase
}

func NewFeedHandlers(svc FeedUsecase) *FeedHandlers {
	return &FeedHandlers{FeedSvc: svc}
}

func (h *FeedHandlers) RegisterRoutes(r *mux.Router) {
	s := r.PathPrefix("/api/v1/posts").Subrouter()
	s.HandleFunc("", h.fetchPosts).Methods(http.MethodGet)
	s.HandleFunc("", h.upsertPost).Methods(http.MethodPost)
	s.HandleFunc("/{id}", h.deletePost).Methods(http.MethodDelete)
}

func (h *FeedHandlers) fetchPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.WriteError(w, common.Invalidf("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	posts, err := h.FeedSvc.FetchPosts(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// upsertPost accepts JSON, or multipart/form-data with the post fields as
// form values and the attachments under "files".
func (h *FeedHandlers) upsertPost(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return
	}

	var in PostInput
	var uploads []Upload
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			common.WriteError(w, common.Invalidf("malformed multipart body: %v", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		form := r.MultipartForm
		in = PostInput{
			PostID:   r.FormValue("post_id"),
			Content:  r.FormValue("content"),
			PostType: r.FormValue("post_type"),
			Type:     r.FormValue("type"),
			Tags:     form.Value["tags"],
			Images:   form.Value["images"],
		}

		files, err := openUploads(form.File["files"])
		if err != nil {
			common.WriteError(w, err)
			return
		}
		defer func() {
			for _, f := range files {
				f.Close()
			}
		}()
		for i, fh := range form.File["files"] {
			uploads = append(uploads, Upload{
				Filename: fh.Filename,
				MimeType: fh.Header.Get("Content-Type"),
				Content:  files[i],
			})
		}
	} else if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}

	post, err := h.FeedSvc.UpsertPost(r.Context(), userID, in, uploads)
	if err != nil {
		common.WriteError(w, err)
		return
	}

	code := http.StatusOK
	if in.PostID == "" {
		code = http.StatusCreated
	}
	common.WriteJSON(w, code, post)
}

func openUploads(headers []*multipart.FileHeader) ([]multipart.File, error) {
	files := make([]multipart.File, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			for _, opened := range files {
				opened.Close()
			}
			log.Warn().Err(err).Str("filename", fh.Filename).Msg("failed to open upload")
			return nil, common.Invalidf("could not read upload %s", fh.Filename)
		}
		files = append(files, f)
	}
	return files, nil
}

func (h *FeedHandlers) deletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return
	}
	if err := h.FeedSvc.DeletePost(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
