package grocery

// Suggestion lists offered to clients for autocomplete. They are advisory:
// units, categories and diet preferences stay open strings.
var (
	Units = []string{"pcs", "kg", "g", "L", "ml", "lb", "oz", "dozen"}

	Categories = []string{
		CategoryProduce, CategoryMeat, CategoryDairy, CategoryBakery, CategoryFrozen,
		CategoryCanned, CategoryDryGoods, CategoryBeverages, CategorySnacks, CategoryOther,
	}

	DietPreferences = []string{"None", "Vegetarian", "Vegan", "Keto", "Paleo", "Gluten-Free"}
)

type SuggestionSet struct {
	Units           []string `json:"units"`
	Categories      []string `json:"categories"`
	DietPreferences []string `json:"diet_preferences"`
}

// Suggestions returns copies of the suggestion lists.
func Suggestions() SuggestionSet {
	return SuggestionSet{
		Units:           append([]string(nil), Units...),
		Categories:      append([]string(nil), Categories...),
		DietPreferences: append([]string(nil), DietPreferences...),
	}
}
