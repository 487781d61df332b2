package activity

import (
	"net/http"

	"github.com/gorilla/mux"

	"plugu/internal/common"
)

type ActivityHandlers struct {
	ActivitySvc ActivityUsecase
}

func NewActivityHandlers(svc ActivityUsecase) *ActivityHandlers {
	return &ActivityHandlers{ActivitySvc: svc}
}

func (h *ActivityHandlers) RegisterRoutes(r *mux.Router) {
	s := r.PathPrefix("/api/v1/activities").Subrouter()
	s.HandleFunc("", h.list).Methods(http.MethodGet)
	s.HandleFunc("", h.add).Methods(http.MethodPost)
	s.HandleFunc("/summary", h.summary).Methods(http.MethodGet)
	s.HandleFunc("/count", h.count).Methods(http.MethodGet)
	s.HandleFunc("/{id}", h.update).Methods(http.MethodPut)
	s.HandleFunc("/{id}", h.remove).Methods(http.MethodDelete)
	s.HandleFunc("/{id}/status", h.updateStatus).Methods(http.MethodPut)
}

func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return "", false
	}
	return userID, true
}

func (h *ActivityHandlers) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	items, err := h.ActivitySvc.FetchUserActivities(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"activities": items})
}

func (h *ActivityHandlers) summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	sum, err := h.ActivitySvc.FetchSummary(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, sum)
}

func (h *ActivityHandlers) count(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	n, err := h.ActivitySvc.CountUserActivities(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *ActivityHandlers) add(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in ActivityInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.ActivitySvc.AddActivity(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, v)
}

func (h *ActivityHandlers) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in ActivityInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.ActivitySvc.UpdateActivity(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}

func (h *ActivityHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	v, err := h.ActivitySvc.UpdateStatus(r.Context(), userID, mux.Vars(r)["id"], body.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, v)
}

func (h *ActivityHandlers) remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.ActivitySvc.DeleteActivity(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
