package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/grocery"
	"github.com/dukerupert/pantry/internal/model"
	"github.com/dukerupert/pantry/internal/store"
	"github.com/dukerupert/pantry/internal/wastage"
	"github.com/dukerupert/pantry/internal/websocket"
)

const defaultSoonestLimit = 5

type GroceryHandler struct {
	groceries *store.GroceryStore
	wastage   *wastage.Service
	hub       *websocket.Hub
	loc       *time.Location
	nearDays  int
	now       func() time.Time
	logger    *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, ws *wastage.Service, hub *websocket.Hub, loc *time.Location, nearDays int, logger *slog.Logger) *GroceryHandler {
	if loc == nil {
		loc = time.Local
	}
	return &GroceryHandler{
		groceries: gs,
		wastage:   ws,
		hub:       hub,
		loc:       loc,
		nearDays:  nearDays,
		now:       time.Now,
		logger:    logger,
	}
}

func (h *GroceryHandler) broadcast(ownerID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(ownerID, msg)
	}
}

type groceryRequest struct {
	Name          string  `json:"name"`
	Quantity      numeric `json:"quantity"`
	Unit          string  `json:"unit"`
	Price         numeric `json:"price"`
	Category      string  `json:"category"`
	PurchasedDate string  `json:"purchased_date"`
	ExpiryDate    string  `json:"expiry_date"`
	IsWasted      bool    `json:"is_wasted"`
}

// groceryView adds the derived expiry status to a grocery.
type groceryView struct {
	model.Grocery
	ExpiryStatus string `json:"expiry_status"`
}

func (h *GroceryHandler) view(g model.Grocery) groceryView {
	status := "wasted"
	if !g.IsWasted {
		status = string(grocery.ExpiryStatus(g.ExpiryDate, h.now(), h.nearDays))
	}
	return groceryView{Grocery: g, ExpiryStatus: status}
}

func (h *GroceryHandler) views(gs []model.Grocery) []groceryView {
	out := make([]groceryView, 0, len(gs))
	for _, g := range gs {
		out = append(out, h.view(g))
	}
	return out
}

// parsed holds the validated, typed fields of a groceryRequest.
type parsed struct {
	name      string
	quantity  float64
	unit      string
	price     model.Money
	category  string
	purchased time.Time
	expiry    time.Time
}

func (h *GroceryHandler) parse(req groceryRequest) (parsed, error) {
	var p parsed
	var err error

	p.name = req.Name
	if p.quantity, err = grocery.ParseQuantity(string(req.Quantity)); err != nil {
		return p, err
	}
	if p.price, err = grocery.ParsePrice(string(req.Price)); err != nil {
		return p, err
	}
	if p.unit, err = grocery.NormalizeLabel("unit", req.Unit); err != nil {
		return p, err
	}
	if p.category, err = grocery.NormalizeLabel("category", req.Category); err != nil {
		return p, err
	}

	if req.ExpiryDate == "" {
		return p, apperror.ValidationFailed("expiry_date", "expiry_date is required")
	}
	if p.expiry, err = parseDate("expiry_date", req.ExpiryDate, h.loc, true); err != nil {
		return p, err
	}

	p.purchased = h.now()
	if req.PurchasedDate != "" {
		if p.purchased, err = parseDate("purchased_date", req.PurchasedDate, h.loc, false); err != nil {
			return p, err
		}
	}
	return p, nil
}

// owned loads a grocery and hides it unless it belongs to ownerID.
func (h *GroceryHandler) owned(ownerID, id string) (*model.Grocery, error) {
	g, err := h.groceries.GetByID(id)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, apperror.NotFound("grocery", id)
	}
	return g, nil
}

func (h *GroceryHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var list []model.Grocery
	var err error
	switch r.URL.Query().Get("state") {
	case "", "all":
		list, err = h.groceries.ListByOwner(ownerID)
	case "active":
		list, err = h.groceries.ListActive(ownerID)
	case "wasted":
		list, err = h.groceries.ListWasted(ownerID)
	default:
		writeError(w, http.StatusBadRequest, "state must be one of active, wasted, all")
		return
	}
	if err != nil {
		writeAppError(w, h.logger, err, "groceries not found")
		return
	}
	writeJSON(w, http.StatusOK, h.views(list))
}

func (h *GroceryHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req groceryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.parse(req)
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}
	if p.category == "" {
		p.category = grocery.Categorize(p.name)
	}

	g, err := h.groceries.Create(ownerID, model.GroceryInput{
		Name:          p.name,
		PurchasedDate: p.purchased,
		ExpiryDate:    p.expiry,
		Price:         p.price,
		Quantity:      p.quantity,
		Unit:          p.unit,
		Category:      p.category,
		IsWasted:      req.IsWasted,
	})
	if err != nil {
		writeAppError(w, h.logger, err, "user not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("grocery", "created", g.ID, nil))
	writeJSON(w, http.StatusCreated, h.view(*g))
}

func (h *GroceryHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.owned(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}

	var req groceryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.parse(req)
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}

	g, err := h.groceries.Update(id, model.GroceryUpdate{
		Name:          p.name,
		ExpiryDate:    p.expiry,
		Price:         p.price,
		PurchasedDate: p.purchased,
		Quantity:      p.quantity,
		Unit:          p.unit,
	})
	if err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("grocery", "updated", g.ID, nil))
	writeJSON(w, http.StatusOK, h.view(*g))
}

func (h *GroceryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.owned(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}
	if err := h.groceries.Delete(id); err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("grocery", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// MarkWasted moves a grocery to the wasted state. Repeating the call keeps
// the first wasted date.
func (h *GroceryHandler) MarkWasted(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.owned(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}

	changed, err := h.wastage.MarkWasted(ownerID, id, h.now())
	if err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}
	g, err := h.groceries.GetByID(id)
	if err != nil {
		writeAppError(w, h.logger, err, "grocery not found")
		return
	}

	if changed {
		h.broadcast(ownerID, websocket.NewMessage("grocery", "wasted", id, nil))
	}
	writeJSON(w, http.StatusOK, h.view(*g))
}

func (h *GroceryHandler) Soonest(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	limit := defaultSoonestLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	list, err := h.groceries.ListSoonestExpiring(ownerID, limit)
	if err != nil {
		writeAppError(w, h.logger, err, "groceries not found")
		return
	}
	writeJSON(w, http.StatusOK, h.views(list))
}

// Expiring lists active groceries that expire within the near-expiry
// window, including ones already past their date.
func (h *GroceryHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	days := h.nearDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "days must be a non-negative integer")
			return
		}
		days = n
	}

	list, err := h.groceries.ListExpiringSoon(ownerID, h.now().AddDate(0, 0, days+1))
	if err != nil {
		writeAppError(w, h.logger, err, "groceries not found")
		return
	}
	writeJSON(w, http.StatusOK, h.views(list))
}

type summaryResponse struct {
	Active int `json:"active"`
	Wasted int `json:"wasted"`
}

func (h *GroceryHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	active, wasted, err := h.groceries.CountByOwner(ownerID)
	if err != nil {
		writeAppError(w, h.logger, err, "groceries not found")
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{Active: active, Wasted: wasted})
}
