package campaign

import "sort"

// MainCategories is the fixed set of Kickstarter main categories
var MainCategories = []string{
	"Art", "Comics", "Crafts", "Dance", "Design", "Fashion",
	"Film & Video", "Food", "Games", "Journalism", "Music",
	"Photography", "Publishing", "Technology", "Theater",
}

// Currencies offered by the input form. Currency is carried but never a feature.
var Currencies = []string{"USD", "GBP", "CAD", "EUR", "AUD"}

// FormCountries offered by the input form
var FormCountries = []string{"US", "GB", "CA", "DE", "FR", "AU", "NL", "SE", "IT", "ES"}

var mainCategorySet = func() map[string]bool {
	set := make(map[string]bool, len(MainCategories))
	for _, c := range MainCategories {
		set[c] = true
	}
	return set
}()

// IsKnownCategory reports whether c is one of the 15 main categories.
// Unknown categories are still accepted downstream.
func IsKnownCategory(c string) bool {
	return mainCategorySet[c]
}

// SortedCategories returns a sorted copy of MainCategories
func SortedCategories() []string {
	out := append([]string(nil), MainCategories...)
	sort.Strings(out)
	return out
}
