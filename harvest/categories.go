package harvest

import "strings"

// GenericCategory is the fallback preset used when a category has no
// hashtag list of its own.
const GenericCategory = "_generic"

// CategoryHashtags maps a business category to the hashtags scanned for
// it in engagement mode. Callers can extend or replace entries from
// configuration; ResolveCategory falls back to GenericCategory for
// unknown names.
var CategoryHashtags = map[string][]string{
	// Food & beverage
	"restaurant": {
		"restaurant", "foodie", "foodreels", "viralfood", "streetfood",
		"foodlover", "fypfood", "foodvibes", "cheesepull", "dinnerdate",
		"lunchideas", "foodporn", "forkyeah",
	},
	"burger": {
		"burgerlover", "burgertime", "burgerreels", "smashburger",
		"cheeseburger", "burgersoftiktok", "burgersofinstagram",
	},
	"pizza": {
		"pizzatime", "pizzanight", "pizzareels", "pizzalover",
		"pizzalovers", "pizzalove",
	},
	"cafe": {
		"coffee", "coffeereels", "coffeetime", "coffeelover", "latteart",
		"coffeeshop", "coffeebar", "coffeebreak",
	},
	"bakery": {
		"bakery", "bakerylove", "croissant", "pastry", "dessertreels",
		"sweettreats", "chocolatelover", "dessertlover",
	},
	"bar": {
		"cocktails", "cocktailreels", "mixology", "bartenderlife",
		"nightout", "happyhour", "drinkswithfriends",
	},

	// Fitness & wellness
	"gym": {
		"gym", "gymreels", "fitness", "workout", "fitreels",
		"gymmotivation", "gymlife", "legday", "pushpulllegs", "hypertrophy",
	},
	"personal_trainer": {
		"personaltrainer", "ptlife", "onlinetraining", "onlinecoach",
		"fitnessmotivation", "homeworkout",
	},
	"yoga": {
		"yoga", "yogareels", "yogapractice", "yogainspiration",
		"yogaflow", "mindfulness",
	},

	// Beauty & clinics
	"beauty_salon": {
		"hairreels", "hairtransformation", "hairgoals", "salonreels",
		"nailart", "nailsreels", "beautysalon",
	},
	"clinic": {
		"skincareclinic", "dermatology", "aestheticclinic",
		"beforeandafter", "skinreels", "facialtreatment",
	},
	"dentist": {
		"dentalreels", "smilemakeover", "teethwhitening", "dentist",
		"dentalclinic", "beforeandafter",
	},

	// Hospitality & experiences
	"hotel": {
		"hotelreels", "hotellife", "staycation", "luxuryhotel",
		"boutiquehotel", "hotelview",
	},
	"resort": {
		"beachresort", "poolday", "resortlife", "vacationvibes",
		"summerreels",
	},
	"party": {
		"partyreels", "nightlife", "clubreels", "djlife", "festivalseason",
	},

	// Retail
	"supermarket": {
		"groceryhaul", "supermarket", "shoppingreels", "groceryshopping",
		"budgetshopping",
	},
	"fashion_store": {
		"outfitinspo", "ootdreels", "fashionreels", "tryonhaul",
		"streetstyle",
	},

	GenericCategory: {
		"trending", "viral", "explorepage", "reels", "fyp",
	},
}

// ResolveCategory returns the hashtag preset for a category, checking
// overrides first, then the built-in table, then the generic fallback.
// known reports whether the category itself was found (false means the
// generic preset was substituted).
func ResolveCategory(category string, overrides map[string][]string) (tags []string, known bool) {
	category = strings.ToLower(category)
	if tags, ok := overrides[category]; ok && len(tags) > 0 {
		return tags, true
	}
	if tags, ok := CategoryHashtags[category]; ok && category != GenericCategory {
		return tags, true
	}
	if tags, ok := overrides[GenericCategory]; ok && len(tags) > 0 {
		return tags, false
	}
	return CategoryHashtags[GenericCategory], false
}
