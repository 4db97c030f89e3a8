package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/pantry/internal/model"
	"github.com/dukerupert/pantry/internal/wastage"
	"github.com/dukerupert/pantry/internal/websocket"
)

type WastageHandler struct {
	svc    *wastage.Service
	hub    *websocket.Hub
	now    func() time.Time
	logger *slog.Logger
}

func NewWastageHandler(svc *wastage.Service, hub *websocket.Hub, logger *slog.Logger) *WastageHandler {
	return &WastageHandler{svc: svc, hub: hub, now: time.Now, logger: logger}
}

func (h *WastageHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	n, err := h.svc.SweepExpired(ownerID, h.now())
	if err != nil {
		writeAppError(w, h.logger, err, "user not found")
		return
	}
	if n > 0 && h.hub != nil {
		h.hub.Broadcast(ownerID, websocket.NewMessage("grocery", "swept", "", map[string]any{"count": n}))
	}
	writeJSON(w, http.StatusOK, map[string]int{"swept": n})
}

// Stats reports wastage counts. A failed read is a 503 so that clients can
// tell it apart from a genuine zero.
func (h *WastageHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Statistics(ownerID, h.now())
	if err != nil {
		h.logger.Error("wastage statistics", "owner", ownerID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "statistics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type valueResponse struct {
	Period model.Period `json:"period"`
	Value  model.Money  `json:"value"`
}

func (h *WastageHandler) Value(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.svc.Value(ownerID, period, h.now())
	if err != nil {
		h.logger.Error("wastage value", "owner", ownerID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "statistics unavailable")
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{Period: period, Value: v})
}

func (h *WastageHandler) Items(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	period, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.svc.Wasted(ownerID, period, h.now())
	if err != nil {
		writeAppError(w, h.logger, err, "groceries not found")
		return
	}
	writeJSON(w, http.StatusOK, items)
}
