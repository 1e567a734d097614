package ingredient

import (
	"regexp"
	"strings"

	"github.com/Kerhoff/hearth/internal/models"
)

type categoryKeywords struct {
	name     string
	keywords []string
}

// Checked in order; the first category with a keyword contained in the name
// wins.
var groceryCategories = []categoryKeywords{
	{"Produce", []string{"apple", "banana", "orange", "lemon", "lime", "lettuce", "tomato", "onion", "garlic",
		"potato", "carrot", "celery", "pepper", "broccoli", "spinach", "kale", "cucumber", "zucchini", "squash",
		"mushroom", "avocado", "berry", "fruit", "vegetable", "herb", "basil", "cilantro", "parsley", "ginger",
		"scallion", "grape", "melon", "salad"}},
	{"Dairy", []string{"milk", "cheese", "yogurt", "butter", "cream", "egg", "sour cream", "cottage", "ricotta",
		"mozzarella", "parmesan", "cheddar"}},
	{"Meat", []string{"chicken", "beef", "pork", "turkey", "bacon", "sausage", "ham", "steak", "ground", "lamb", "veal"}},
	{"Seafood", []string{"fish", "salmon", "tuna", "shrimp", "crab", "lobster", "tilapia", "cod", "halibut", "scallop"}},
	{"Bakery", []string{"bread", "bagel", "muffin", "croissant", "roll", "bun", "tortilla", "pita", "naan"}},
	{"Frozen", []string{"frozen", "ice cream", "pizza", "fries"}},
	{"Pantry", []string{"rice", "pasta", "noodle", "cereal", "flour", "sugar", "oil", "vinegar", "sauce", "broth",
		"stock", "soup", "can", "bean", "lentil", "chickpea", "spice", "salt", "paprika", "cumin", "oregano", "thyme",
		"cinnamon", "vanilla", "honey", "syrup", "peanut butter", "jam", "jelly", "worcestershire"}},
	{"Beverages", []string{"water", "juice", "soda", "coffee", "tea", "beer", "wine", "drink"}},
	{"Condiments", []string{"ketchup", "mustard", "mayo", "dressing"}},
	{"Snacks", []string{"chip", "cracker", "cookie", "candy", "chocolate", "nut", "almond", "walnut", "pecan",
		"popcorn", "pretzel"}},
}

// OtherCategory is used when no keyword matches.
const OtherCategory = "Other"

// GuessCategory returns the grocery aisle for a food name.
func GuessCategory(name string) string {
	lower := strings.ToLower(name)
	for _, c := range groceryCategories {
		for _, k := range c.keywords {
			if strings.Contains(lower, k) {
				return c.name
			}
		}
	}
	return OtherCategory
}

var (
	// "ice" must not match inside "rice" or "spice".
	freezerWords = regexp.MustCompile(`\b(frozen|ice cream|popsicle|ice|freezer)\b`)
	fridgeWords  = []string{"milk", "cheese", "yogurt", "butter", "cream", "egg", "juice", "meat", "chicken", "beef",
		"pork", "fish", "salmon", "shrimp", "deli", "lettuce", "spinach", "salad", "leftover", "produce", "vegetable",
		"fruit", "apple", "berry", "grape"}
)

// GuessLocation returns where an item of this name is usually stored.
func GuessLocation(name string) models.StorageLocation {
	lower := strings.ToLower(name)
	if freezerWords.MatchString(lower) {
		return models.StorageFreezer
	}
	for _, w := range fridgeWords {
		if strings.Contains(lower, w) {
			return models.StorageRefrigerator
		}
	}
	return models.StoragePantry
}
