package grocery

import "strings"

// Categorize suggests an inventory category for the given item name.
// Matching is case-insensitive: exact name first, then the first keyword
// contained in the name. Unknown items fall back to "Other".
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return CategoryOther
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range keywordMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return CategoryOther
}

const (
	CategoryProduce   = "Produce"
	CategoryMeat      = "Meat"
	CategoryDairy     = "Dairy"
	CategoryBakery    = "Bakery"
	CategoryFrozen    = "Frozen"
	CategoryCanned    = "Canned"
	CategoryDryGoods  = "Dry Goods"
	CategoryBeverages = "Beverages"
	CategorySnacks    = "Snacks"
	CategoryOther     = "Other"
)

var exactMatch = map[string]string{
	// Produce
	"apple": CategoryProduce, "apples": CategoryProduce,
	"banana": CategoryProduce, "bananas": CategoryProduce,
	"orange": CategoryProduce, "oranges": CategoryProduce,
	"lemon": CategoryProduce, "lime": CategoryProduce,
	"avocado": CategoryProduce, "tomato": CategoryProduce, "tomatoes": CategoryProduce,
	"potato": CategoryProduce, "potatoes": CategoryProduce,
	"onion": CategoryProduce, "onions": CategoryProduce, "garlic": CategoryProduce,
	"lettuce": CategoryProduce, "spinach": CategoryProduce, "kale": CategoryProduce,
	"broccoli": CategoryProduce, "carrots": CategoryProduce, "cucumber": CategoryProduce,
	"grapes": CategoryProduce, "strawberries": CategoryProduce, "mango": CategoryProduce,
	"cilantro": CategoryProduce, "basil": CategoryProduce, "zucchini": CategoryProduce,

	// Meat
	"chicken": CategoryMeat, "beef": CategoryMeat, "pork": CategoryMeat,
	"turkey": CategoryMeat, "bacon": CategoryMeat, "sausage": CategoryMeat,
	"ham": CategoryMeat, "steak": CategoryMeat, "salmon": CategoryMeat,
	"shrimp": CategoryMeat, "fish": CategoryMeat, "lamb": CategoryMeat,

	// Dairy
	"milk": CategoryDairy, "eggs": CategoryDairy, "butter": CategoryDairy,
	"cheese": CategoryDairy, "yogurt": CategoryDairy, "sour cream": CategoryDairy,
	"cream cheese": CategoryDairy, "cottage cheese": CategoryDairy,

	// Bakery
	"bread": CategoryBakery, "bagels": CategoryBakery, "tortillas": CategoryBakery,
	"rolls": CategoryBakery, "buns": CategoryBakery, "muffins": CategoryBakery,
	"croissants": CategoryBakery, "pita": CategoryBakery,

	// Frozen
	"ice cream": CategoryFrozen, "frozen pizza": CategoryFrozen,
	"frozen peas": CategoryFrozen, "popsicles": CategoryFrozen,

	// Canned
	"tuna": CategoryCanned, "soup": CategoryCanned, "chickpeas": CategoryCanned,
	"corn": CategoryCanned, "tomato paste": CategoryCanned,

	// Dry Goods
	"rice": CategoryDryGoods, "pasta": CategoryDryGoods, "flour": CategoryDryGoods,
	"sugar": CategoryDryGoods, "oats": CategoryDryGoods, "cereal": CategoryDryGoods,
	"lentils": CategoryDryGoods, "quinoa": CategoryDryGoods, "spaghetti": CategoryDryGoods,

	// Beverages
	"water": CategoryBeverages, "juice": CategoryBeverages, "coffee": CategoryBeverages,
	"tea": CategoryBeverages, "soda": CategoryBeverages, "beer": CategoryBeverages,
	"wine": CategoryBeverages, "kombucha": CategoryBeverages,

	// Snacks
	"chips": CategorySnacks, "crackers": CategorySnacks, "cookies": CategorySnacks,
	"popcorn": CategorySnacks, "pretzels": CategorySnacks, "chocolate": CategorySnacks,
	"candy": CategorySnacks, "granola bars": CategorySnacks,
}

type keywordEntry struct {
	keyword  string
	category string
}

// Longer, more specific keywords come first so "frozen chicken" lands in
// Frozen and "canned salmon" in Canned.
var keywordMatches = []keywordEntry{
	{"frozen", CategoryFrozen},
	{"ice cream", CategoryFrozen},
	{"canned", CategoryCanned},
	{"tinned", CategoryCanned},
	{"peanut butter", CategoryDryGoods},
	{"almond milk", CategoryBeverages},
	{"oat milk", CategoryBeverages},
	{"ground beef", CategoryMeat},
	{"chicken", CategoryMeat},
	{"beef", CategoryMeat},
	{"pork", CategoryMeat},
	{"salmon", CategoryMeat},
	{"yogurt", CategoryDairy},
	{"cheese", CategoryDairy},
	{"milk", CategoryDairy},
	{"butter", CategoryDairy},
	{"cream", CategoryDairy},
	{"egg", CategoryDairy},
	{"bread", CategoryBakery},
	{"bagel", CategoryBakery},
	{"tortilla", CategoryBakery},
	{"muffin", CategoryBakery},
	{"berries", CategoryProduce},
	{"berry", CategoryProduce},
	{"salad", CategoryProduce},
	{"apple", CategoryProduce},
	{"banana", CategoryProduce},
	{"tomato", CategoryProduce},
	{"potato", CategoryProduce},
	{"onion", CategoryProduce},
	{"pepper", CategoryProduce},
	{"carrot", CategoryProduce},
	{"rice", CategoryDryGoods},
	{"pasta", CategoryDryGoods},
	{"noodle", CategoryDryGoods},
	{"flour", CategoryDryGoods},
	{"cereal", CategoryDryGoods},
	{"bean", CategoryCanned},
	{"juice", CategoryBeverages},
	{"coffee", CategoryBeverages},
	{"water", CategoryBeverages},
	{"soda", CategoryBeverages},
	{"chips", CategorySnacks},
	{"cookie", CategorySnacks},
	{"cracker", CategorySnacks},
	{"chocolate", CategorySnacks},
}
