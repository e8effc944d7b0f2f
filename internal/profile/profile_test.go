package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"macro-meal-planner/internal/nutrition"
)

func maleProfile() Profile {
	return Profile{
		Name: "Test", Age: 30, WeightKG: 80, HeightCM: 180,
		Sex: "male", ActivityLevel: "sedentary", Goal: "maintain",
	}
}

func TestCalculateBMR(t *testing.T) {
	t.Run("male", func(t *testing.T) {
		// 10*80 + 6.25*180 - 5*30 + 5 = 1780
		assert.Equal(t, 1780.0, CalculateBMR(maleProfile()))
	})

	t.Run("female", func(t *testing.T) {
		p := Profile{
			Name: "Test", Age: 25, WeightKG: 60, HeightCM: 165,
			Sex: "female", ActivityLevel: "sedentary", Goal: "maintain",
		}
		// 10*60 + 6.25*165 - 5*25 - 161 = 1345.25
		assert.InDelta(t, 1345.25, CalculateBMR(p), 1e-9)
	})

	t.Run("increases with weight", func(t *testing.T) {
		base := maleProfile()
		heavier := maleProfile()
		heavier.WeightKG = 100
		assert.Greater(t, CalculateBMR(heavier), CalculateBMR(base))
	})
}

func TestCalculateTDEE(t *testing.T) {
	assert.InDelta(t, 1780*1.2, CalculateTDEE(1780, "sedentary"), 1e-9)
	assert.InDelta(t, 1780*1.725, CalculateTDEE(1780, "very_active"), 1e-9)
	assert.InDelta(t, 1780*1.2, CalculateTDEE(1780, "unknown"), 1e-9)
}

func TestCalculateMacroTargets(t *testing.T) {
	t.Run("build muscle surplus", func(t *testing.T) {
		p := maleProfile()
		p.ActivityLevel = "moderately_active"
		p.Goal = "build_muscle"
		targets := CalculateMacroTargets(p)
		// TDEE = 1780 * 1.55 = 2759; target = 2759 * 1.10 = 3034.9
		assert.InDelta(t, 3035, targets.Calories, 1)
		// Protein: 30% of 3035 / 4 = 228g
		assert.InDelta(t, 228, targets.ProteinG, 1)
	})

	t.Run("lose fat deficit", func(t *testing.T) {
		p := maleProfile()
		p.ActivityLevel = "moderately_active"
		p.Goal = "lose_fat"
		targets := CalculateMacroTargets(p)
		// TDEE = 2759; target = 2759 * 0.80 = 2207.2
		assert.InDelta(t, 2207, targets.Calories, 1)
		// Protein: 40% of 2207 / 4 = 221g
		assert.InDelta(t, 221, targets.ProteinG, 1)
	})

	t.Run("macros roughly sum to total calories", func(t *testing.T) {
		p := Profile{
			Name: "Test", Age: 25, WeightKG: 65, HeightCM: 170,
			Sex: "female", ActivityLevel: "lightly_active", Goal: "maintain",
		}
		targets := CalculateMacroTargets(p)
		macroCalories := targets.ProteinG*nutrition.CaloriesPerGramProtein +
			targets.CarbsG*nutrition.CaloriesPerGramCarbs +
			targets.FatG*nutrition.CaloriesPerGramFat
		// Rounding each gram value costs a few calories at most.
		assert.InDelta(t, targets.Calories, macroCalories, 10)
	})

	t.Run("unknown goal falls back to maintenance", func(t *testing.T) {
		p := maleProfile()
		p.Goal = "get_shredded"
		targets := CalculateMacroTargets(p)
		assert.InDelta(t, targets.TDEE, targets.Calories, 1)
	})
}
