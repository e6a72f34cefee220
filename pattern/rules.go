package pattern

import (
	"strconv"
	"strings"
)

// Safe minimum internal temperatures for poultry.
const (
	PoultrySafeFahrenheit = 165
	PoultrySafeCelsius    = 74
)

const poultry = `(?:chicken|turkey|poultry|duck|hen)`

// SecurityRules detects prompts that try to attack the app or the model
// instead of asking about food.
func SecurityRules() []Rule {
	return []Rule{
		{
			ID:       "security.hacking",
			Category: CategorySecurity,
			Pattern:  `\b(?:hack(?:s|ed|ing|er|ers)?|exploit(?:s|ed|ing)?|jailbreak\w*|crack(?:ing)? (?:the |a |an )?(?:password|app|system|account)s?|bypass(?:ing)? (?:the )?(?:filter|security|safety|limit)s?)\b`,
			Message:  "hacking or exploitation request",
		},
		{
			ID:       "security.prompt_injection",
			Category: CategorySecurity,
			Pattern:  `\b(?:ignore (?:all |any |the )?(?:previous|prior|above) (?:instructions|prompts?|rules)|disregard (?:all |the )?(?:previous |prior )?instructions|system prompt|developer mode|you are now (?:dan|an? unrestricted)\w*)\b`,
			Message:  "prompt injection attempt",
		},
		{
			ID:       "security.script_injection",
			Category: CategorySecurity,
			Pattern:  `(?:<\s*/?\s*script\b|<\s*iframe\b|javascript\s*:|\bon(?:load|error|click|mouseover)\s*=)`,
			Message:  "script injection attempt",
		},
		{
			ID:       "security.sql_injection",
			Category: CategorySecurity,
			Pattern:  `(?:\bunion\s+(?:all\s+)?select\b|\bdrop\s+table\b|\binsert\s+into\b|\bdelete\s+from\b|\bor\s+1\s*=\s*1\b|'\s*or\s*'1'\s*=\s*'1|;\s*--)`,
			Message:  "SQL injection attempt",
		},
		{
			ID:       "security.system_access",
			Category: CategorySecurity,
			Pattern:  `\b(?:admin(?:istrator)? (?:access|password|panel|privileges|rights)|root access|sudo|api[ _-]?keys?|access tokens?|credentials?|private keys?|passwords? for)\b`,
			Message:  "request for system access or credentials",
		},
		{
			ID:       "security.path_traversal",
			Category: CategorySecurity,
			Pattern:  `(?:\.\./|\.\.\\|/etc/passwd|\bcmd\.exe\b|\brm\s+-rf\b)`,
			Message:  "path traversal or shell command",
		},
	}
}

// InappropriateRules detects violent, illegal, hateful or explicit content.
// Targets are spelled out for verbs that also appear in recipes ("stab the
// potatoes", "heat kills bacteria").
func InappropriateRules() []Rule {
	const person = `(?:him|her|them|people|someone|somebody|a person|my \w+|your \w+|the neighbou?r)`
	return []Rule{
		{
			ID:       "inappropriate.violence",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:(?:kill|stab|shoot|hurt)(?:s|ed|ing|bed|bing)? ` + person + `|murder\w*|assault\w*|tortur\w*|(?:make|makes|making|build|building|buy|buying|hide|hiding|carry|carrying) (?:a |an )?(?:homemade )?(?:weapons?|guns?)|firearms?|explosives?|pipe bombs?)\b`,
			Message:  "violent content",
		},
		{
			ID:       "inappropriate.bomb_making",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:make|makes|making|build|building) (?:a |an )?(?:homemade )?bombs?\b(?:\s+(?P<next>\w+))?`,
			Message:  "violent content",
			Accept:   notDessertBomb,
		},
		{
			ID:       "inappropriate.illegal",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:cocaine|heroin|methamphetamine|crystal meth|illegal drugs?|drug dealing|launder(?:ing)? money|money laundering|counterfeit\w*|shoplift\w*|steal(?:ing)? (?:a|an|from)|poison(?:ing)? ` + person + `)\b`,
			Message:  "illegal activity",
		},
		{
			ID:       "inappropriate.hate",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:hate speech|racial slurs?|ethnic cleansing|genocide|white supremac\w*|nazis?|kkk)\b`,
			Message:  "hateful content",
		},
		{
			ID:       "inappropriate.explicit",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:porn\w*|nudes?|nudity|sexually explicit|sex(?:ual)? acts?|xxx|nsfw|erotic\w*)\b`,
			Message:  "explicit content",
		},
		{
			ID:       "inappropriate.self_harm",
			Category: CategoryInappropriate,
			Pattern:  `\b(?:suicide|self[- ]harm|kill myself|hurt myself)\b`,
			Message:  "self-harm content",
		},
	}
}

// UnsafeCookingRules detects instructions that are dangerous to follow.
// Detail carries the safety rationale shown to the user.
func UnsafeCookingRules() []Rule {
	const poultryDetail = "Poultry must reach an internal temperature of 165°F (74°C) to be safe to eat."
	return []Rule{
		{
			ID:       "unsafe.poultry_temp_f",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b` + poultry + `\b[^.\n]{0,60}?\b(?P<temp>\d{2,3})\s*°?\s*(?:f|fahrenheit|degrees f(?:ahrenheit)?)\b`,
			Message:  "poultry cooked below a safe temperature",
			Detail:   poultryDetail,
			Accept:   cookedBelow(PoultrySafeFahrenheit),
		},
		{
			ID:       "unsafe.poultry_temp_f_reversed",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?P<temp>\d{2,3})\s*°?\s*(?:f|fahrenheit|degrees f(?:ahrenheit)?)\b[^.\n]{0,60}?\b` + poultry + `\b`,
			Message:  "poultry cooked below a safe temperature",
			Detail:   poultryDetail,
			Accept:   cookedBelow(PoultrySafeFahrenheit),
		},
		{
			ID:       "unsafe.poultry_temp_c",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b` + poultry + `\b[^.\n]{0,60}?\b(?P<temp>\d{2,3})\s*°?\s*(?:c|celsius|degrees c(?:elsius)?)\b`,
			Message:  "poultry cooked below a safe temperature",
			Detail:   poultryDetail,
			Accept:   cookedBelow(PoultrySafeCelsius),
		},
		{
			ID:       "unsafe.low_temp_tender",
			Category: CategoryUnsafeCooking,
			Pattern:  `(?:\b` + poultry + `\b[^.\n]{0,40}?)?\blow(?:er)?[ -](?:temperature|temp|heat)s?\b[^.\n]{0,60}?\b(?:keeps?|stays?|remains?|makes?)\b[^.\n]{0,20}?\b(?:tender|juicy|moist)\b`,
			Message:  "low temperature recommended for poultry",
			Detail:   poultryDetail,
			Accept:   mentions(poultryWords...),
		},
		{
			ID:       "unsafe.undercooked_endorsed",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?:(?:chicken|pork|poultry|turkey|ground beef|ground meat)\b[^.\n]{0,40}?\b(?:is|are|can be|it's|its)\s+(?:fine|safe|ok|okay|best)\s+(?:to (?:eat|serve)\s+)?(?:pink|raw|undercooked|rare|bloody)|(?:eat|serve|enjoy)\s+(?:the\s+|your\s+)?(?:chicken|pork|poultry|turkey)\s+(?:raw|rare|pink|undercooked))\b`,
			Message:  "undercooked meat recommended",
			Detail:   "Poultry, pork and ground meat must be cooked through to kill harmful bacteria.",
		},
		{
			ID:       "unsafe.raw_egg_safe",
			Category: CategoryUnsafeCooking,
			Pattern:  `\braw eggs?\b[^.\n]{0,40}?\b(?:is|are)\s+(?:completely\s+|perfectly\s+|totally\s+|always\s+)?safe\b`,
			Message:  "raw eggs described as safe",
			Detail:   "Raw eggs can carry Salmonella; use pasteurized eggs or cook until set.",
		},
		{
			ID:       "unsafe.oil_overheat",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?:heat|leave|keep)\b[^.\n]{0,40}?\b(?:oil|grease|fat)\b[^.\n]{0,40}?\b(?:until|till|so)\b[^.\n]{0,10}?\b(?:smokes?|smoking|catch(?:es)? fire|flames? up|ignites?|on fire)\b`,
			Message:  "oil heated to ignition",
			Detail:   "Oil heated past its smoke point can ignite; keep it below smoking and never leave it unattended.",
		},
		{
			ID:       "unsafe.water_on_oil",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?:(?:pour|add|throw|splash|use)\s+(?:some\s+|cold\s+)?water\b[^.\n]{0,40}?\b(?:hot|burning|flaming|smoking)\s+(?:oil|grease|fat)|(?:put out|extinguish)\b[^.\n]{0,30}?\b(?:grease|oil) fires?\b[^.\n]{0,30}?\bwater)\b`,
			Message:  "water used on hot oil",
			Detail:   "Water on burning oil causes a violent flare-up; smother the pan with a lid instead.",
		},
		{
			ID:       "unsafe.toxic_ingredient",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?:raw kidney beans|bitter almonds|rhubarb leaves|green potatoes|apple seeds|raw elderberries|wild mushrooms|death caps?)\b[^.\n]{0,40}?\b(?:is|are)\s+(?:perfectly\s+|completely\s+|totally\s+)?(?:safe|fine|edible|harmless|ok|okay)\b`,
			Message:  "toxic ingredient described as safe",
			Detail:   "This ingredient is toxic unless properly prepared; check a reliable source before eating it.",
		},
		{
			ID:       "unsafe.chemical",
			Category: CategoryUnsafeCooking,
			Pattern:  `\b(?:add|mix|stir|use|combine)\b[^.\n]{0,25}?\b(?:bleach|ammonia|lighter fluid|antifreeze|gasoline|kerosene)\b`,
			Message:  "non-food chemical used as an ingredient",
			Detail:   "Household and industrial chemicals are poisonous and must never be added to food.",
		},
	}
}

// SuspiciousRules detects output that is not dangerous but unusual enough
// that the user should double check it.
func SuspiciousRules() []Rule {
	return []Rule{
		{
			ID:       "suspicious.huge_quantity",
			Category: CategorySuspicious,
			Pattern:  `\b\d{3,}\s*(?:cups?|tablespoons?|tbsp|teaspoons?|tsp|pounds?|lbs?|kilograms?|kg)\b`,
			Message:  "implausible ingredient quantity",
		},
		{
			ID:       "suspicious.extreme_heat",
			Category: CategorySuspicious,
			Pattern:  `\b\d{4,}\s*°?\s*(?:f|c|fahrenheit|celsius)\b`,
			Message:  "implausible cooking temperature",
		},
		{
			ID:       "suspicious.long_cook",
			Category: CategorySuspicious,
			Pattern:  `\b(?:bake|roast|fry|boil|simmer|grill)\b[^.\n]{0,30}?\bfor\s+(?:\d{3,}|[2-9]\d)\s+hours\b`,
			Message:  "implausible cooking time",
		},
		{
			ID:       "suspicious.model_leak",
			Category: CategorySuspicious,
			Pattern:  `\b(?:ignore (?:all |any )?(?:previous|prior) instructions|system prompt|as an ai(?: language)? model)\b`,
			Message:  "response contains model instructions",
		},
		{
			ID:       "suspicious.link",
			Category: CategorySuspicious,
			Pattern:  `(?:\bhttps?://|\bwww\.)\S+`,
			Message:  "response contains an external link",
		},
		{
			ID:       "suspicious.personal_data",
			Category: CategorySuspicious,
			Pattern:  `\b(?:send|share|enter|provide)\b[^.\n]{0,20}?\b(?:password|credit card|bank details|social security|ssn|phone number)\b`,
			Message:  "response asks for personal data",
		},
	}
}

// FoodSafetyRules detects food-safety language that is correct but worth a
// "verify with reliable sources" note.
func FoodSafetyRules() []Rule {
	return []Rule{
		{
			ID:       "food_safety.undercooked",
			Category: CategoryFoodSafety,
			Pattern:  `\bunder-?cooked\b`,
			Message:  "mentions undercooked food",
		},
		{
			ID:       "food_safety.raw_animal",
			Category: CategoryFoodSafety,
			Pattern:  `\braw (?:chicken|poultry|meat|pork|beef|eggs?|fish|seafood|shellfish|oysters?)\b`,
			Message:  "mentions raw animal products",
		},
		{
			ID:       "food_safety.pathogen",
			Category: CategoryFoodSafety,
			Pattern:  `\b(?:salmonella|e\.?\s?coli|listeria|botulism|campylobacter|trichinosis)\b`,
			Message:  "mentions a foodborne pathogen",
		},
		{
			ID:       "food_safety.illness",
			Category: CategoryFoodSafety,
			Pattern:  `\bfood(?:borne)?[ -]?(?:poisoning|illness)\b`,
			Message:  "mentions food poisoning",
		},
		{
			ID:       "food_safety.cross_contamination",
			Category: CategoryFoodSafety,
			Pattern:  `\bcross[- ]?contamination\b`,
			Message:  "mentions cross-contamination",
		},
		{
			ID:       "food_safety.allergen",
			Category: CategoryFoodSafety,
			Pattern:  `\b(?:allergens?|allergic|allergy|allergies|anaphyla\w*)\b`,
			Message:  "mentions allergens",
		},
	}
}

// BuiltinRules returns a fresh copy of every built-in table.
func BuiltinRules() Tables {
	return Tables{
		CategorySecurity:      SecurityRules(),
		CategoryInappropriate: InappropriateRules(),
		CategoryUnsafeCooking: UnsafeCookingRules(),
		CategorySuspicious:    SuspiciousRules(),
		CategoryFoodSafety:    FoodSafetyRules(),
	}
}

var poultryWords = []string{"chicken", "turkey", "poultry", "duck"}

// coldStorage marks temperatures that describe chilling, not cooking.
var coldStorage = []string{"fridge", "refrigerat", "freez", "chill", "thaw", "store", "marinat", "cool"}

// cookedBelow accepts a hit whose "temp" group is under limit, unless the
// matched fragment talks about cold storage.
// dessertBombs are words that turn "bomb" into something to eat.
var dessertBombs = map[string]bool{
	"cake": true, "cakes": true, "pop": true, "pops": true, "dessert": true,
	"desserts": true, "shot": true, "shots": true, "truffle": true, "truffles": true,
}

func notDessertBomb(groups map[string]string) bool {
	return !dessertBombs[groups["next"]]
}

func cookedBelow(limit float64) func(map[string]string) bool {
	return func(groups map[string]string) bool {
		v, err := strconv.ParseFloat(groups["temp"], 64)
		if err != nil || v >= limit {
			return false
		}
		whole := groups[""]
		for _, w := range coldStorage {
			if strings.Contains(whole, w) {
				return false
			}
		}
		return true
	}
}

func mentions(words ...string) func(map[string]string) bool {
	return func(groups map[string]string) bool {
		whole := groups[""]
		for _, w := range words {
			if strings.Contains(whole, w) {
				return true
			}
		}
		return false
	}
}
