package handler

import (
	"net/http"

	"github.com/dukerupert/pantry/internal/grocery"
)

// Suggestions serves the unit, category and diet preference lists used for
// autocomplete. Values outside these lists are still accepted.
func Suggestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, grocery.Suggestions())
}
