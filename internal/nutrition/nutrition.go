// Package nutrition defines the value types shared by the planner,
// tracker and recipe catalog: per-serving nutrition vectors and the
// daily macro targets they are measured against.
package nutrition

// Nutrition holds nutritional content, either per serving or aggregated.
// Values are additive and scale linearly with serving size.
type Nutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g,omitempty"`
	SugarG   float64 `json:"sugar_g,omitempty"`
	SodiumMG float64 `json:"sodium_mg,omitempty"`
}

// Zero returns the identity element for summation.
func Zero() Nutrition {
	return Nutrition{}
}

// Scaled returns the nutrition multiplied by the given number of servings.
func (n Nutrition) Scaled(servings float64) Nutrition {
	return Nutrition{
		Calories: n.Calories * servings,
		ProteinG: n.ProteinG * servings,
		CarbsG:   n.CarbsG * servings,
		FatG:     n.FatG * servings,
		FiberG:   n.FiberG * servings,
		SugarG:   n.SugarG * servings,
		SodiumMG: n.SodiumMG * servings,
	}
}

// Add returns the fieldwise sum of two nutrition vectors.
func (n Nutrition) Add(other Nutrition) Nutrition {
	return Nutrition{
		Calories: n.Calories + other.Calories,
		ProteinG: n.ProteinG + other.ProteinG,
		CarbsG:   n.CarbsG + other.CarbsG,
		FatG:     n.FatG + other.FatG,
		FiberG:   n.FiberG + other.FiberG,
		SugarG:   n.SugarG + other.SugarG,
		SodiumMG: n.SodiumMG + other.SodiumMG,
	}
}

// Calories per gram of each macro nutrient.
const (
	CaloriesPerGramProtein = 4
	CaloriesPerGramCarbs   = 4
	CaloriesPerGramFat     = 9
)

// MacroPercent breaks down where calories come from, in percent.
type MacroPercent struct {
	Protein float64
	Carbs   float64
	Fat     float64
}

// MacroPercentages returns each macro's caloric contribution relative to
// the calorie field. Zero calories yields an all-zero breakdown.
func (n Nutrition) MacroPercentages() MacroPercent {
	if n.Calories == 0 {
		return MacroPercent{}
	}
	return MacroPercent{
		Protein: n.ProteinG * CaloriesPerGramProtein / n.Calories * 100,
		Carbs:   n.CarbsG * CaloriesPerGramCarbs / n.Calories * 100,
		Fat:     n.FatG * CaloriesPerGramFat / n.Calories * 100,
	}
}

// MacroTargets are the daily targets calculated for a user. BMR and TDEE
// are informational; the planner only reads the four macro fields.
type MacroTargets struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	BMR      float64 `json:"bmr"`
	TDEE     float64 `json:"tdee"`
}
