package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"macro-meal-planner/internal/recipe"
)

const recipePage = `<!DOCTYPE html>
<html><head>
<title>Chicken Burrito Bowl</title>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "Recipe",
  "name": "Chicken Burrito Bowl",
  "recipeYield": "2 servings",
  "prepTime": "PT15M",
  "cookTime": "PT1H10M",
  "recipeCategory": ["Lunch", "Dinner"],
  "recipeCuisine": "Mexican",
  "keywords": "chicken, rice, healthy",
  "recipeIngredient": ["300 g chicken breast", "150 g rice"],
  "recipeInstructions": [
    {"@type": "HowToStep", "text": "Cook the rice."},
    {"@type": "HowToStep", "text": "Grill the chicken."}
  ],
  "nutrition": {
    "@type": "NutritionInformation",
    "calories": "650 calories",
    "proteinContent": "48 g",
    "carbohydrateContent": "70 g",
    "fatContent": "18 g",
    "fiberContent": "8 g",
    "sodiumContent": "720 mg"
  }
}
</script>
</head><body><h1>Chicken Burrito Bowl</h1></body></html>`

const graphPage = `<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "Food Blog"},
    {
      "@type": "Recipe",
      "name": "Brunch Frittata",
      "recipeYield": 4,
      "keywords": "eggs, brunch",
      "recipeIngredient": ["8 eggs"],
      "recipeInstructions": ["Whisk the eggs.", "Bake until set."]
    }
  ]
}
</script>
</head><body></body></html>`

func TestExtract(t *testing.T) {
	im := NewImporter(zap.NewNop())

	rec, err := im.Extract(strings.NewReader(recipePage))
	require.NoError(t, err)

	assert.Equal(t, "Chicken Burrito Bowl", rec.Title)
	assert.Equal(t, "import", rec.Source)
	assert.Equal(t, 2, rec.Servings)
	assert.Equal(t, 15, rec.PrepTimeMinutes)
	assert.Equal(t, 70, rec.CookTimeMinutes)
	assert.Equal(t, "mexican", rec.Cuisine)
	assert.ElementsMatch(t, []recipe.MealType{recipe.Lunch, recipe.Dinner}, rec.MealTypes)

	require.Len(t, rec.Ingredients, 2)
	assert.Equal(t, "300 g chicken breast", rec.Ingredients[0].Name)
	assert.Equal(t, []string{"Cook the rice.", "Grill the chicken."}, rec.Instructions)

	require.NotNil(t, rec.Nutrition)
	assert.Equal(t, 650.0, rec.Nutrition.Calories)
	assert.Equal(t, 48.0, rec.Nutrition.ProteinG)
	assert.Equal(t, 720.0, rec.Nutrition.SodiumMG)
	assert.Equal(t, 0.0, rec.Nutrition.SugarG)
}

func TestExtractGraphWrapper(t *testing.T) {
	im := NewImporter(zap.NewNop())

	rec, err := im.Extract(strings.NewReader(graphPage))
	require.NoError(t, err)

	assert.Equal(t, "Brunch Frittata", rec.Title)
	assert.Equal(t, 4, rec.Servings)
	// "brunch" keyword tags both morning slots.
	assert.ElementsMatch(t, []recipe.MealType{recipe.Breakfast, recipe.Lunch}, rec.MealTypes)
	assert.Equal(t, []string{"Whisk the eggs.", "Bake until set."}, rec.Instructions)
	assert.Nil(t, rec.Nutrition)
}

func TestExtractNoRecipe(t *testing.T) {
	im := NewImporter(zap.NewNop())

	_, err := im.Extract(strings.NewReader(`<html><body><p>Just a blog post.</p></body></html>`))
	assert.Error(t, err)
}

func TestParseISODurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT15M", 15},
		{"PT1H", 60},
		{"PT1H30M", 90},
		{"pt20m", 20},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODurationMinutes(tt.in), "input %q", tt.in)
	}
}

func TestLeadingNumber(t *testing.T) {
	assert.Equal(t, 250.0, leadingNumber("250 calories"))
	assert.Equal(t, 12.5, leadingNumber("12.5 g"))
	assert.Equal(t, 0.0, leadingNumber("unknown"))
	assert.Equal(t, 0.0, leadingNumber(""))
}
