package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"macro-meal-planner/internal/config"
	"macro-meal-planner/internal/database"
	"macro-meal-planner/internal/importer"
	"macro-meal-planner/internal/logger"
	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/planner"
	"macro-meal-planner/internal/profile"
	"macro-meal-planner/internal/recipe"
	"macro-meal-planner/internal/shopping"
	"macro-meal-planner/internal/tracker"
)

type cli struct {
	cfg         *config.Config
	log         *zap.Logger
	recipeRepo  *recipe.Repository
	planRepo    *planner.PlanRepository
	profileRepo *profile.Repository
	trackStore  *tracker.Store
	shopRepo    *shopping.Repository
	generator   *planner.Generator
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	recipeRepo := recipe.NewRepository(db.SQL)
	planRepo := planner.NewPlanRepository(db.SQL, recipeRepo)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	generator := planner.NewGenerator(recipeRepo, planRepo, rng, log)
	generator.VarietyWindowDays = cfg.VarietyWindowDays

	c := &cli{
		cfg:         cfg,
		log:         log,
		recipeRepo:  recipeRepo,
		planRepo:    planRepo,
		profileRepo: profile.NewRepository(db.SQL),
		trackStore:  tracker.NewStore(db.SQL, recipeRepo),
		shopRepo:    shopping.NewRepository(db.SQL),
		generator:   generator,
	}

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal("command failed", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "seed":
		return c.seed(ctx)
	case "profile-create":
		return c.profileCreate(ctx, args)
	case "profile-show":
		return c.profileShow(ctx, args)
	case "plan":
		return c.plan(ctx, args)
	case "show-plan":
		return c.showPlan(ctx, args)
	case "regenerate":
		return c.regenerate(ctx, args)
	case "log-meal":
		return c.logMeal(ctx, args)
	case "summary":
		return c.summary(ctx, args)
	case "import":
		return c.importRecipe(ctx, args)
	case "recipes":
		return c.listRecipes(ctx)
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *cli) seed(ctx context.Context) error {
	n, err := recipe.ImportSeed(ctx, c.recipeRepo)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Println("Catalog already has recipes; nothing to do.")
		return nil
	}
	fmt.Printf("Imported %d seed recipes.\n", n)
	return nil
}

func (c *cli) profileCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile-create", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	age := fs.Int("age", 0, "age in years")
	weight := fs.Float64("weight", 0, "weight in kg")
	weightLB := fs.Float64("weight-lb", 0, "weight in pounds (alternative to -weight)")
	height := fs.Float64("height", 0, "height in cm")
	heightIN := fs.Float64("height-in", 0, "height in inches (alternative to -height)")
	sex := fs.String("sex", "", "male or female")
	activity := fs.String("activity", "sedentary", "activity level")
	goal := fs.String("goal", "maintain", "lose_fat, cut, maintain, build_muscle or recomp")
	fs.Parse(args)

	if *weight == 0 && *weightLB > 0 {
		*weight = *weightLB * 0.453592
	}
	if *height == 0 && *heightIN > 0 {
		*height = *heightIN * 2.54
	}
	if *name == "" || *age <= 0 || *weight <= 0 || *height <= 0 {
		return fmt.Errorf("name, age, weight and height are required")
	}
	if *sex != "male" && *sex != "female" {
		return fmt.Errorf("sex must be male or female")
	}
	if _, ok := profile.GoalMacroSplits[*goal]; !ok {
		return fmt.Errorf("unknown goal: %s", *goal)
	}
	if _, ok := profile.ActivityMultipliers[*activity]; !ok {
		return fmt.Errorf("unknown activity level: %s", *activity)
	}

	p := &profile.Profile{
		Name:          *name,
		Age:           *age,
		WeightKG:      *weight,
		HeightCM:      *height,
		Sex:           *sex,
		ActivityLevel: *activity,
		Goal:          *goal,
	}
	id, err := c.profileRepo.Save(ctx, p)
	if err != nil {
		return err
	}
	fmt.Printf("Profile created (id %d).\n\n", id)
	fmt.Println(profile.FormatTargets(profile.CalculateMacroTargets(*p)))
	return nil
}

func (c *cli) profileShow(ctx context.Context, args []string) error {
	userID, err := userIDArg(args)
	if err != nil {
		return err
	}
	p, err := c.profileRepo.Get(ctx, userID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no profile with id %d", userID)
	}
	fmt.Printf("%s — %d years, %.1f kg, %.0f cm, %s\n", p.Name, p.Age, p.WeightKG, p.HeightCM, p.Goal)
	fmt.Println()
	fmt.Println(profile.FormatTargets(profile.CalculateMacroTargets(*p)))
	return nil
}

func (c *cli) plan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	user := fs.Int64("user", 1, "profile id")
	week := fs.String("week", "", "week start date (YYYY-MM-DD, defaults to next Monday)")
	fs.Parse(args)

	p, err := c.profileRepo.Get(ctx, *user)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no profile with id %d; run profile-create first", *user)
	}
	targets := profile.CalculateMacroTargets(*p)

	weekStart := planner.NextMonday(time.Now())
	if *week != "" {
		weekStart, err = time.ParseInLocation("2006-01-02", *week, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid week date: %w", err)
		}
		weekStart = planner.WeekStart(weekStart)
	}

	exists, err := c.planRepo.ExistsForWeek(ctx, *user, weekStart)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("a plan for week %s already exists", weekStart.Format("2006-01-02"))
	}

	plan, err := c.generator.GenerateWeeklyPlan(ctx, *user, targets, weekStart)
	if err != nil {
		return err
	}
	if _, err := c.planRepo.Save(ctx, plan); err != nil {
		return fmt.Errorf("failed to save plan: %w", err)
	}

	fmt.Println(planner.FormatMealPlan(plan))

	list := shopping.BuildFromPlan(plan)
	if len(list.Items) > 0 {
		if _, err := c.shopRepo.Save(ctx, &list); err != nil {
			c.log.Warn("failed to save shopping list", zap.Error(err))
		}
		fmt.Println("\nShopping List:")
		for _, item := range list.Items {
			fmt.Println("  - " + item)
		}
	}
	return nil
}

func (c *cli) showPlan(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show-plan", flag.ExitOnError)
	user := fs.Int64("user", 1, "profile id")
	week := fs.String("week", "", "week start date (YYYY-MM-DD, defaults to next Monday)")
	fs.Parse(args)

	weekStart := planner.NextMonday(time.Now())
	if *week != "" {
		t, err := time.ParseInLocation("2006-01-02", *week, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid week date: %w", err)
		}
		weekStart = planner.WeekStart(t)
	}

	plan, err := c.planRepo.Load(ctx, *user, weekStart)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("no plan for week %s", weekStart.Format("2006-01-02"))
	}
	fmt.Println(planner.FormatMealPlan(plan))
	return nil
}

func (c *cli) regenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("regenerate", flag.ExitOnError)
	user := fs.Int64("user", 1, "profile id")
	week := fs.String("week", "", "week start date (YYYY-MM-DD, defaults to next Monday)")
	day := fs.String("day", "", "day name, e.g. monday")
	meal := fs.String("meal", "", "breakfast, lunch or dinner")
	fs.Parse(args)

	dayIdx := -1
	for i, d := range planner.DayNames {
		if strings.EqualFold(d, *day) {
			dayIdx = i
		}
	}
	if dayIdx < 0 {
		return fmt.Errorf("unknown day: %q", *day)
	}
	if !recipe.ValidMealType(*meal) {
		return fmt.Errorf("unknown meal: %q", *meal)
	}
	mealType := recipe.MealType(*meal)

	p, err := c.profileRepo.Get(ctx, *user)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no profile with id %d", *user)
	}
	targets := profile.CalculateMacroTargets(*p)

	weekStart := planner.NextMonday(time.Now())
	if *week != "" {
		t, err := time.ParseInLocation("2006-01-02", *week, time.UTC)
		if err != nil {
			return fmt.Errorf("invalid week date: %w", err)
		}
		weekStart = planner.WeekStart(t)
	}

	plan, err := c.planRepo.Load(ctx, *user, weekStart)
	if err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("no plan for week %s", weekStart.Format("2006-01-02"))
	}

	entry, err := c.generator.RegenerateMeal(ctx, plan, dayIdx, mealType, targets)
	if err != nil {
		return err
	}
	if err := c.planRepo.UpdateEntry(ctx, plan.ID, dayIdx, mealType, entry.RecipeID, entry.Servings); err != nil {
		return fmt.Errorf("failed to save regenerated meal: %w", err)
	}

	fmt.Printf("%s %s is now: %s (%.2g servings)\n",
		planner.DayNames[dayIdx], mealType, entry.Recipe.Title, entry.Servings)
	return nil
}

func (c *cli) logMeal(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("log-meal", flag.ExitOnError)
	user := fs.Int64("user", 1, "profile id")
	recipeID := fs.Int64("recipe", 0, "recipe id")
	meal := fs.String("meal", "", "breakfast, lunch or dinner")
	servings := fs.Float64("servings", 1.0, "servings eaten")
	fs.Parse(args)

	if *recipeID == 0 {
		return fmt.Errorf("-recipe is required")
	}
	if !recipe.ValidMealType(*meal) {
		return fmt.Errorf("unknown meal: %q", *meal)
	}
	if *servings <= 0 {
		return fmt.Errorf("servings must be positive")
	}

	rec, err := c.recipeRepo.Get(ctx, *recipeID)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no recipe with id %d", *recipeID)
	}

	if _, err := c.trackStore.LogMeal(ctx, *user, *recipeID, recipe.MealType(*meal), *servings, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Logged: %s (%.2g servings)\n", rec.Title, *servings)
	return nil
}

func (c *cli) summary(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	user := fs.Int64("user", 1, "profile id")
	period := fs.String("period", "daily", "daily, weekly, monthly or yearly")
	fs.Parse(args)

	var target *nutrition.MacroTargets
	if p, err := c.profileRepo.Get(ctx, *user); err == nil && p != nil {
		t := profile.CalculateMacroTargets(*p)
		target = &t
	}

	now := time.Now()
	var (
		s   tracker.NutritionSummary
		err error
	)
	switch *period {
	case "daily":
		s, err = c.trackStore.DailySummary(ctx, *user, now, target)
	case "weekly":
		s, err = c.trackStore.WeeklySummary(ctx, *user, now, target)
	case "monthly":
		s, err = c.trackStore.MonthlySummary(ctx, *user, now.Year(), now.Month(), target)
	case "yearly":
		s, err = c.trackStore.YearlySummary(ctx, *user, now.Year(), target)
	default:
		return fmt.Errorf("unknown period: %s", *period)
	}
	if err != nil {
		return err
	}
	fmt.Println(tracker.FormatSummary(s))
	return nil
}

func (c *cli) importRecipe(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: import <url>")
	}
	imp := importer.NewImporter(c.log)
	rec, err := imp.ImportURL(ctx, args[0])
	if err != nil {
		return err
	}
	if _, err := c.recipeRepo.Save(ctx, rec); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}
	fmt.Printf("Imported: %s (id %d)\n", rec.Title, rec.ID)
	if len(rec.MealTypes) == 0 {
		fmt.Println("Note: no meal types detected; the recipe will not be planned until tagged.")
	}
	return nil
}

func (c *cli) listRecipes(ctx context.Context) error {
	recipes, err := c.recipeRepo.All(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Println("Catalog is empty. Run seed or import first.")
		return nil
	}
	for _, r := range recipes {
		types := make([]string, len(r.MealTypes))
		for i, mt := range r.MealTypes {
			types[i] = string(mt)
		}
		line := fmt.Sprintf("%3d  %-40s %s", r.ID, r.Title, strings.Join(types, ","))
		if r.Nutrition != nil {
			line += fmt.Sprintf("  (%.0f kcal, %.0fg protein)", r.Nutrition.Calories, r.Nutrition.ProteinG)
		}
		fmt.Println(line)
	}
	return nil
}

func userIDArg(args []string) (int64, error) {
	if len(args) < 1 {
		return 1, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid profile id: %q", args[0])
	}
	return id, nil
}

func printUsage() {
	fmt.Println("Usage: macro-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  seed               Import the built-in starter recipes")
	fmt.Println("  profile-create     Create a user profile and show macro targets")
	fmt.Println("  profile-show       Show a profile and its macro targets")
	fmt.Println("  plan               Generate and save a weekly meal plan")
	fmt.Println("  show-plan          Print a saved weekly plan")
	fmt.Println("  regenerate         Replace a single meal in a saved plan")
	fmt.Println("  log-meal           Log an eaten meal")
	fmt.Println("  summary            Show a nutrition summary with adherence")
	fmt.Println("  import <url>       Import a recipe from a web page")
	fmt.Println("  recipes            List the recipe catalog")
}
