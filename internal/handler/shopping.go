package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/pantry/internal/apperror"
	"github.com/dukerupert/pantry/internal/grocery"
	"github.com/dukerupert/pantry/internal/model"
	"github.com/dukerupert/pantry/internal/store"
	"github.com/dukerupert/pantry/internal/websocket"
)

type ShoppingHandler struct {
	shopping *store.ShoppingStore
	hub      *websocket.Hub
	loc      *time.Location
	logger   *slog.Logger
}

func NewShoppingHandler(ss *store.ShoppingStore, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *ShoppingHandler {
	if loc == nil {
		loc = time.Local
	}
	return &ShoppingHandler{shopping: ss, hub: hub, loc: loc, logger: logger}
}

func (h *ShoppingHandler) broadcast(ownerID string, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(ownerID, msg)
	}
}

func (h *ShoppingHandler) ownedList(ownerID, id string) (*model.ShoppingList, error) {
	list, err := h.shopping.GetList(id)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != ownerID {
		return nil, apperror.NotFound("shopping list", id)
	}
	return list, nil
}

func (h *ShoppingHandler) ownedItem(ownerID, id string) (*model.ShoppingListItem, error) {
	owner, err := h.shopping.ItemOwner(id)
	if err != nil {
		return nil, err
	}
	if owner != ownerID {
		return nil, apperror.NotFound("shopping item", id)
	}
	return h.shopping.GetItem(id)
}

func (h *ShoppingHandler) ListLists(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	lists, err := h.shopping.ListLists(ownerID)
	if err != nil {
		writeAppError(w, h.logger, err, "lists not found")
		return
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *ShoppingHandler) CreateList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.shopping.CreateList(ownerID, req.Name)
	if err != nil {
		writeAppError(w, h.logger, err, "user not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_list", "created", list.ID, nil))
	writeJSON(w, http.StatusCreated, list)
}

func (h *ShoppingHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.ownedList(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}
	if err := h.shopping.DeleteList(id); err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_list", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ListItems hides bought items unless include_bought=true.
func (h *ShoppingHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID := r.PathValue("id")

	if _, err := h.ownedList(ownerID, listID); err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}

	items, err := h.shopping.ListItems(listID, r.URL.Query().Get("include_bought") == "true")
	if err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}
	if items == nil {
		items = []model.ShoppingListItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

type itemRequest struct {
	Name     string  `json:"name"`
	Quantity numeric `json:"quantity"`
	Unit     string  `json:"unit"`
}

func (req itemRequest) parse() (float64, string, error) {
	q, err := grocery.ParseQuantity(string(req.Quantity))
	if err != nil {
		return 0, "", err
	}
	unit, err := grocery.NormalizeLabel("unit", req.Unit)
	if err != nil {
		return 0, "", err
	}
	return q, unit, nil
}

func (h *ShoppingHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	listID := r.PathValue("id")

	if _, err := h.ownedList(ownerID, listID); err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}

	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quantity, unit, err := req.parse()
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}

	item, err := h.shopping.AddItem(listID, req.Name, quantity, unit)
	if err != nil {
		writeAppError(w, h.logger, err, "list not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_item", "created", item.ID, map[string]any{"list_id": listID}))
	writeJSON(w, http.StatusCreated, item)
}

func (h *ShoppingHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.ownedItem(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}

	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	quantity, unit, err := req.parse()
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}

	item, err := h.shopping.UpdateItem(id, req.Name, quantity, unit)
	if err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_item", "updated", id, nil))
	writeJSON(w, http.StatusOK, item)
}

func (h *ShoppingHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	if _, err := h.ownedItem(ownerID, id); err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}
	if err := h.shopping.DeleteItem(id); err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_item", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

type convertRequest struct {
	Price      numeric `json:"price"`
	Category   string  `json:"category"`
	ExpiryDate string  `json:"expiry_date"`
}

// Convert turns a shopping-list item into an inventory grocery and marks
// the item bought.
func (h *ShoppingHandler) Convert(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := currentUser(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")

	item, err := h.ownedItem(ownerID, id)
	if err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}

	var req convertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	price, err := grocery.ParsePrice(string(req.Price))
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}
	category, err := grocery.NormalizeLabel("category", req.Category)
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}
	if category == "" {
		category = grocery.Categorize(item.Name)
	}
	if strings.TrimSpace(req.ExpiryDate) == "" {
		writeAppError(w, h.logger, apperror.ValidationFailed("expiry_date", "expiry_date is required"), "")
		return
	}
	expiry, err := parseDate("expiry_date", req.ExpiryDate, h.loc, true)
	if err != nil {
		writeAppError(w, h.logger, err, "")
		return
	}

	g, err := h.shopping.ConvertItem(ownerID, id, model.Conversion{
		Price:      price,
		Category:   category,
		ExpiryDate: expiry,
	})
	if err != nil {
		writeAppError(w, h.logger, err, "item not found")
		return
	}

	h.broadcast(ownerID, websocket.NewMessage("shopping_item", "converted", id, map[string]any{"grocery_id": g.ID}))
	h.broadcast(ownerID, websocket.NewMessage("grocery", "created", g.ID, nil))
	writeJSON(w, http.StatusCreated, g)
}
