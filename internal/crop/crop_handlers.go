package crop

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"plugu/internal/common"
)

type CropHandlers struct {
	CropSvc CropUsecase
}

func NewCropHandlers(svc CropUsecase) *CropHandlers {
	return &CropHandlers{CropSvc: svc}
}

// RegisterRoutes mounts the crop and log endpoints. Fixed paths are
// registered ahead of the {id} patterns they would otherwise match.
func (h *CropHandlers) RegisterRoutes(r *mux.Router) {
	crops := r.PathPrefix("/api/v1/crops").Subrouter()
	crops.HandleFunc("", h.listCrops).Methods(http.MethodGet)
	crops.HandleFunc("", h.createCrop).Methods(http.MethodPost)
	crops.HandleFunc("", h.updateCrops).Methods(http.MethodPatch)
	crops.HandleFunc("/stats", h.statistics).Methods(http.MethodGet)
	crops.HandleFunc("/count", h.countCrops).Methods(http.MethodGet)
	crops.HandleFunc("/{id}", h.getCrop).Methods(http.MethodGet)
	crops.HandleFunc("/{id}", h.updateCrop).Methods(http.MethodPatch)
	crops.HandleFunc("/{id}", h.deleteCrop).Methods(http.MethodDelete)
	crops.HandleFunc("/{id}/status", h.updateStatus).Methods(http.MethodPut)
	crops.HandleFunc("/{id}/growth", h.updateGrowth).Methods(http.MethodPut)
	crops.HandleFunc("/{id}/days-to-harvest", h.updateDaysToHarvest).Methods(http.MethodPut)
	crops.HandleFunc("/{id}/logs", h.listCropLogs).Methods(http.MethodGet)
	crops.HandleFunc("/{id}/logs", h.createCropLog).Methods(http.MethodPost)
	crops.HandleFunc("/{id}/logs/stats", h.logStatistics).Methods(http.MethodGet)

	logs := r.PathPrefix("/api/v1/logs").Subrouter()
	logs.HandleFunc("", h.listUserLogs).Methods(http.MethodGet)
	logs.HandleFunc("", h.createLog).Methods(http.MethodPost)
	logs.HandleFunc("/batch", h.createLogs).Methods(http.MethodPost)
	logs.HandleFunc("/{id}", h.getLog).Methods(http.MethodGet)
	logs.HandleFunc("/{id}", h.updateLog).Methods(http.MethodPut)
	logs.HandleFunc("/{id}", h.deleteLog).Methods(http.MethodDelete)
}

func caller(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.ErrUnauthenticated)
		return "", false
	}
	return userID, true
}

// --------- CROPS ---------

func (h *CropHandlers) listCrops(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	crops, err := h.CropSvc.ListCrops(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"crops": crops})
}

func (h *CropHandlers) countCrops(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}

	var n int64
	var err error
	if status := r.URL.Query().Get("status"); status != "" {
		n, err = h.CropSvc.CountCropsByStatus(r.Context(), userID, status)
	} else {
		n, err = h.CropSvc.CountCrops(r.Context(), userID)
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *CropHandlers) createCrop(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in CropInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	crop, err := h.CropSvc.CreateCrop(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, crop)
}

func (h *CropHandlers) getCrop(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	crop, err := h.CropSvc.GetCrop(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, crop)
}

func (h *CropHandlers) updateCrop(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var upd CropUpdate
	if err := common.DecodeJSON(r, &upd); err != nil {
		common.WriteError(w, err)
		return
	}
	crop, err := h.CropSvc.UpdateCrop(r.Context(), userID, mux.Vars(r)["id"], upd)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, crop)
}

func (h *CropHandlers) updateCrops(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Crops []CropBatchItem `json:"crops"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	crops, err := h.CropSvc.UpdateCrops(r.Context(), userID, body.Crops)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"crops": crops})
}

func (h *CropHandlers) deleteCrop(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.CropSvc.DeleteCrop(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CropHandlers) updateStatus(w http.ResponseWriter, r *http.Request) {
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
	crop, err := h.CropSvc.UpdateStatus(r.Context(), userID, mux.Vars(r)["id"], body.Status)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, crop)
}

func (h *CropHandlers) updateGrowth(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		GrowthPercentage *int `json:"growth_percentage"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if body.GrowthPercentage == nil {
		common.WriteError(w, common.Invalidf("growth_percentage is required"))
		return
	}
	crop, err := h.CropSvc.UpdateGrowth(r.Context(), userID, mux.Vars(r)["id"], *body.GrowthPercentage)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, crop)
}

func (h *CropHandlers) updateDaysToHarvest(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		DaysToHarvest *int `json:"days_to_harvest"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	if body.DaysToHarvest == nil {
		common.WriteError(w, common.Invalidf("days_to_harvest is required"))
		return
	}
	crop, err := h.CropSvc.UpdateDaysToHarvest(r.Context(), userID, mux.Vars(r)["id"], *body.DaysToHarvest)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, crop)
}

func (h *CropHandlers) statistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	st, err := h.CropSvc.Statistics(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, st)
}

// --------- LOGS ---------

// listCropLogs filters by ?activity_type= or by ?from=&to=. A date-only
// "to" covers that whole day.
func (h *CropHandlers) listCropLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	cropID := mux.Vars(r)["id"]
	q := r.URL.Query()

	var err error
	var logs interface{}
	switch {
	case q.Get("activity_type") != "":
		logs, err = h.CropSvc.LogsByActivityType(r.Context(), userID, cropID, q.Get("activity_type"))
	case q.Get("from") != "" || q.Get("to") != "":
		from, fromOK := common.ParseDate(q.Get("from"))
		to, toOK := common.ParseDate(q.Get("to"))
		if !fromOK || !toOK {
			common.WriteError(w, common.Invalidf("from and to must both be valid dates"))
			return
		}
		if isDateOnly(q.Get("to")) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		logs, err = h.CropSvc.LogsByDateRange(r.Context(), userID, cropID, from, to)
	default:
		logs, err = h.CropSvc.ListLogs(r.Context(), userID, cropID)
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

func isDateOnly(s string) bool {
	return len(strings.TrimSpace(s)) == len("2006-01-02")
}

func (h *CropHandlers) createCropLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in LogInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	in.UserCropID = mux.Vars(r)["id"]
	h.writeCreatedLog(w, r, userID, in)
}

func (h *CropHandlers) createLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in LogInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	h.writeCreatedLog(w, r, userID, in)
}

func (h *CropHandlers) writeCreatedLog(w http.ResponseWriter, r *http.Request, userID string, in LogInput) {
	entry, err := h.CropSvc.CreateLog(r.Context(), userID, in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, entry)
}

func (h *CropHandlers) createLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var body struct {
		Logs []LogInput `json:"logs"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteError(w, err)
		return
	}
	logs, err := h.CropSvc.CreateLogs(r.Context(), userID, body.Logs)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, map[string]interface{}{"logs": logs})
}

func (h *CropHandlers) listUserLogs(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	logs, err := h.CropSvc.ListUserLogs(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{"logs": logs})
}

func (h *CropHandlers) getLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	entry, err := h.CropSvc.GetLog(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, entry)
}

func (h *CropHandlers) updateLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	var in LogInput
	if err := common.DecodeJSON(r, &in); err != nil {
		common.WriteError(w, err)
		return
	}
	entry, err := h.CropSvc.UpdateLog(r.Context(), userID, mux.Vars(r)["id"], in)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, entry)
}

func (h *CropHandlers) deleteLog(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	if err := h.CropSvc.DeleteLog(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CropHandlers) logStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := caller(w, r)
	if !ok {
		return
	}
	st, err := h.CropSvc.LogStatistics(r.Context(), userID, mux.Vars(r)["id"])
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, st)
}
