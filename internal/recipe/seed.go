package recipe

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed seed_recipes.json
var seedData []byte

// LoadSeedRecipes parses the bundled seed catalog.
func LoadSeedRecipes() ([]Recipe, error) {
	var recipes []Recipe
	if err := json.Unmarshal(seedData, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse seed recipes: %w", err)
	}
	return recipes, nil
}

// ImportSeed loads the seed catalog into the repository. It is a no-op
// when the database already holds recipes. Returns the number imported.
func ImportSeed(ctx context.Context, repo *Repository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	recipes, err := LoadSeedRecipes()
	if err != nil {
		return 0, err
	}

	imported := 0
	for i := range recipes {
		recipes[i].Source = "seed"
		if _, err := repo.Save(ctx, &recipes[i]); err != nil {
			return imported, fmt.Errorf("failed to save seed recipe %q: %w", recipes[i].Title, err)
		}
		imported++
	}
	return imported, nil
}
