package intent

import (
	"strings"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// locationTriggers must appear in a message before it is treated as a nearby search.
var locationTriggers = []string{"nearby", "near me", "close to me", "around here", "in my area"}

var vegetarianKeywords = []string{"vegetarian", "veg"}

type rule struct {
	keywords []string
	build    func(message string) types.QueryIntent
}

func category(c types.PlaceCategory) func(string) types.QueryIntent {
	return func(string) types.QueryIntent {
		return types.QueryIntent{Category: c}
	}
}

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{keywords: []string{"tourist", "attraction"}, build: category(types.CategoryTouristSpot)},
	{keywords: []string{"hotel", "accommodation"}, build: category(types.CategoryHotel)},
	{keywords: []string{"restaurant", "food", "eat"}, build: func(message string) types.QueryIntent {
		q := types.QueryIntent{Category: types.CategoryRestaurant}
		if containsAny(message, vegetarianKeywords) {
			q.DietaryFilter = types.DietaryVegetarian
		}
		return q
	}},
	{keywords: []string{"transport", "bus", "train"}, build: category(types.CategoryTransport)},
	{keywords: []string{"hospital", "medical", "pharmacy"}, build: category(types.CategoryMedical)},
}

// IsLocationQuery reports whether the utterance asks for places around the user.
func IsLocationQuery(utterance string) bool {
	return containsAny(strings.ToLower(utterance), locationTriggers)
}

// Classify maps an utterance to a place category. It always returns a value,
// falling back to the generic category.
func Classify(utterance string) types.QueryIntent {
	message := strings.ToLower(utterance)
	for _, r := range rules {
		if containsAny(message, r.keywords) {
			return r.build(message)
		}
	}
	return types.QueryIntent{Category: types.CategoryGeneric}
}

func containsAny(message string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(message, k) {
			return true
		}
	}
	return false
}
