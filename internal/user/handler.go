package user

import (
	"net/http"

	"github.com/gorilla/mux"

	"plugu/internal/common"
)

// Handler serves profiles over HTTP.
type Handler struct {
	userService UserService
}

func NewHandler(userService UserService) *Handler {
	return &Handler{userService: userService}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	s := r.PathPrefix("/api/v1/users").Subrouter()
	s.HandleFunc("/me", h.getMe).Methods(http.MethodGet)
	s.HandleFunc("/me", h.updateMe).Methods(http.MethodPut)
	s.HandleFunc("/{id}", h.getProfile).Methods(http.MethodGet)
}

func (h *Handler) getMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return
	}
	h.writeProfile(w, r, userID)
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, mux.Vars(r)["id"])
}

func (h *Handler) writeProfile(w http.ResponseWriter, r *http.Request, userID string) {
	user, err := h.userService.GetProfile(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return
	}
	var in ProfileUpdate
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	user, err := h.userService.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, user)
}
