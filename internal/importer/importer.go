// Package importer extracts recipes from web pages that embed
// schema.org Recipe metadata as JSON-LD.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/recipe"
)

// Importer fetches recipe pages and converts their structured data
// into catalog recipes.
type Importer struct {
	client *http.Client
	log    *zap.Logger
}

// NewImporter creates an Importer.
func NewImporter(log *zap.Logger) *Importer {
	return &Importer{
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}
}

// ImportURL fetches the URL and extracts its recipe.
func (im *Importer) ImportURL(ctx context.Context, url string) (*recipe.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := im.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	rec, err := im.Extract(resp.Body)
	if err != nil {
		return nil, err
	}
	rec.SourceURL = url
	im.log.Info("imported recipe",
		zap.String("url", url),
		zap.String("title", rec.Title))
	return rec, nil
}

// Extract parses HTML and returns the first schema.org Recipe found in
// a JSON-LD script block. Top-level objects, arrays and @graph wrappers
// are all handled.
func (im *Importer) Extract(html io.Reader) (*recipe.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var found *jsonldRecipe
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if r := findRecipeNode([]byte(s.Text())); r != nil {
			found = r
			return false
		}
		return true
	})
	if found == nil {
		return nil, fmt.Errorf("no schema.org recipe found in page")
	}

	return found.toRecipe(), nil
}

// jsonldRecipe mirrors the subset of schema.org/Recipe this importer reads.
type jsonldRecipe struct {
	Type               stringOrList     `json:"@type"`
	Name               string           `json:"name"`
	RecipeIngredient   []string         `json:"recipeIngredient"`
	RecipeInstructions json.RawMessage  `json:"recipeInstructions"`
	RecipeYield        stringOrList     `json:"recipeYield"`
	RecipeCategory     stringOrList     `json:"recipeCategory"`
	Keywords           string           `json:"keywords"`
	RecipeCuisine      stringOrList     `json:"recipeCuisine"`
	PrepTime           string           `json:"prepTime"`
	CookTime           string           `json:"cookTime"`
	Nutrition          *jsonldNutrition `json:"nutrition"`
}

type jsonldNutrition struct {
	Calories            string `json:"calories"`
	ProteinContent      string `json:"proteinContent"`
	CarbohydrateContent string `json:"carbohydrateContent"`
	FatContent          string `json:"fatContent"`
	FiberContent        string `json:"fiberContent"`
	SugarContent        string `json:"sugarContent"`
	SodiumContent       string `json:"sodiumContent"`
}

// stringOrList accepts both "lunch" and ["lunch","dinner"], which sites
// use interchangeably.
type stringOrList []string

func (s *stringOrList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = []string{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	// Some sites emit numbers (e.g. "recipeYield": 4).
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*s = []string{strconv.FormatFloat(n, 'g', -1, 64)}
		return nil
	}
	*s = nil
	return nil
}

func findRecipeNode(data []byte) *jsonldRecipe {
	var node json.RawMessage = data

	// Try a bare object first.
	if r := asRecipe(node); r != nil {
		return r
	}

	// Then a top-level array.
	var list []json.RawMessage
	if err := json.Unmarshal(node, &list); err == nil {
		for _, item := range list {
			if r := asRecipe(item); r != nil {
				return r
			}
		}
	}

	// Then an @graph wrapper.
	var graph struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	if err := json.Unmarshal(node, &graph); err == nil {
		for _, item := range graph.Graph {
			if r := asRecipe(item); r != nil {
				return r
			}
		}
	}
	return nil
}

func asRecipe(data json.RawMessage) *jsonldRecipe {
	var r jsonldRecipe
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	for _, t := range r.Type {
		if strings.EqualFold(t, "Recipe") {
			return &r
		}
	}
	return nil
}

func (j *jsonldRecipe) toRecipe() *recipe.Recipe {
	rec := &recipe.Recipe{
		Title:           j.Name,
		Source:          "import",
		Servings:        parseYield(j.RecipeYield),
		PrepTimeMinutes: parseISODurationMinutes(j.PrepTime),
		CookTimeMinutes: parseISODurationMinutes(j.CookTime),
		MealTypes:       inferMealTypes(j.RecipeCategory, j.Keywords),
		Instructions:    parseInstructions(j.RecipeInstructions),
	}
	if len(j.RecipeCuisine) > 0 {
		rec.Cuisine = strings.ToLower(j.RecipeCuisine[0])
	}
	for _, ing := range j.RecipeIngredient {
		rec.Ingredients = append(rec.Ingredients, recipe.Ingredient{Name: ing})
	}
	if j.Nutrition != nil {
		rec.Nutrition = &nutrition.Nutrition{
			Calories: leadingNumber(j.Nutrition.Calories),
			ProteinG: leadingNumber(j.Nutrition.ProteinContent),
			CarbsG:   leadingNumber(j.Nutrition.CarbohydrateContent),
			FatG:     leadingNumber(j.Nutrition.FatContent),
			FiberG:   leadingNumber(j.Nutrition.FiberContent),
			SugarG:   leadingNumber(j.Nutrition.SugarContent),
			SodiumMG: leadingNumber(j.Nutrition.SodiumContent),
		}
	}
	return rec
}

// parseInstructions handles the two common encodings: a list of
// HowToStep objects and a list of plain strings.
func parseInstructions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var steps []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &steps); err == nil {
		var out []string
		for _, s := range steps {
			if s.Text != "" {
				out = append(out, s.Text)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	var plain []string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

var leadingNumberRe = regexp.MustCompile(`\d+(\.\d+)?`)

// leadingNumber pulls the numeric part out of values like "250 calories"
// or "12 g". Returns 0 when no number is present.
func leadingNumber(s string) float64 {
	match := leadingNumberRe.FindString(s)
	if match == "" {
		return 0
	}
	n, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseYield(yield stringOrList) int {
	if len(yield) == 0 {
		return 1
	}
	n := int(leadingNumber(yield[0]))
	if n < 1 {
		return 1
	}
	return n
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?`)

// parseISODurationMinutes converts durations like "PT1H30M" to minutes.
func parseISODurationMinutes(s string) int {
	m := isoDurationRe.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	return hours*60 + minutes
}

// inferMealTypes scans category and keyword text for slot names.
// Recipes matching nothing get no tags and stay ineligible for planning
// until tagged by hand.
func inferMealTypes(categories stringOrList, keywords string) []recipe.MealType {
	text := strings.ToLower(strings.Join(categories, " ") + " " + keywords)
	var types []recipe.MealType
	for _, mt := range recipe.MealTypes {
		if strings.Contains(text, string(mt)) {
			types = append(types, mt)
		}
	}
	// "brunch" implies both morning slots.
	if strings.Contains(text, "brunch") {
		for _, mt := range []recipe.MealType{recipe.Breakfast, recipe.Lunch} {
			found := false
			for _, t := range types {
				if t == mt {
					found = true
				}
			}
			if !found {
				types = append(types, mt)
			}
		}
	}
	return types
}
