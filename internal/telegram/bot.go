package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"macro-meal-planner/internal/config"
	"macro-meal-planner/internal/importer"
	"macro-meal-planner/internal/nutrition"
	"macro-meal-planner/internal/planner"
	"macro-meal-planner/internal/profile"
	"macro-meal-planner/internal/recipe"
	"macro-meal-planner/internal/shopping"
	"macro-meal-planner/internal/tracker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot wraps the Telegram API and the planning services.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config
	log *zap.Logger

	generator   *planner.Generator
	planRepo    *planner.PlanRepository
	recipeRepo  *recipe.Repository
	profileRepo *profile.Repository
	trackStore  *tracker.Store
	shopRepo    *shopping.Repository
	importer    *importer.Importer
}

// NewBot initializes the Telegram Bot and sets the Webhook.
func NewBot(
	cfg *config.Config,
	log *zap.Logger,
	generator *planner.Generator,
	planRepo *planner.PlanRepository,
	recipeRepo *recipe.Repository,
	profileRepo *profile.Repository,
	trackStore *tracker.Store,
	shopRepo *shopping.Repository,
	imp *importer.Importer,
) (*Bot, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}

	log.Info("authorized on telegram", zap.String("account", bot.Self.UserName))

	wh, _ := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
	resp, err := bot.Request(wh)
	if err != nil {
		return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
	}
	log.Info("webhook set", zap.String("response", resp.Description))

	return &Bot{
		api:         bot,
		cfg:         cfg,
		log:         log,
		generator:   generator,
		planRepo:    planRepo,
		recipeRepo:  recipeRepo,
		profileRepo: profileRepo,
		trackStore:  trackStore,
		shopRepo:    shopRepo,
		importer:    imp,
	}, nil
}

// RegisterHandlers registers the webhook handler with the default HTTP mux.
func (b *Bot) RegisterHandlers() {
	http.HandleFunc("/webhook", b.handleWebhook)
	http.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := b.api.HandleUpdate(r)
	if err != nil {
		b.log.Error("error parsing update", zap.Error(err))
		return
	}

	if update.Message == nil {
		return
	}

	if update.Message.From.ID != b.cfg.TelegramAllowUserID {
		b.log.Warn("unauthorized access attempt",
			zap.Int64("user_id", update.Message.From.ID),
			zap.String("username", update.Message.From.UserName))
		return
	}

	go b.processMessage(update.Message)
}

func (b *Bot) processMessage(msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	// URLs go straight to the importer.
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		b.handleImport(msg, text)
		return
	}

	cmd, args, _ := strings.Cut(text, " ")
	switch cmd {
	case "/plan":
		b.handlePlan(msg)
	case "/regenerate":
		b.handleRegenerate(msg, args)
	case "/log":
		b.handleLogMeal(msg, args)
	case "/summary":
		b.handleSummary(msg, args)
	case "/start", "/help":
		b.reply(msg.Chat.ID, helpText)
	default:
		b.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

const helpText = `🍽 *Macro Meal Planner*

/plan — generate next week's plan
/regenerate <day> <meal> — swap one meal (e.g. /regenerate monday lunch)
/log <recipe id> <meal> [servings] — log an eaten meal
/summary [daily|weekly|monthly] — nutrition summary
Send a recipe URL to import it.`

func (b *Bot) handlePlan(msg *tgbotapi.Message) {
	ctx := context.Background()
	userID := msg.From.ID

	prof, err := b.profileRepo.Get(ctx, userID)
	if err != nil || prof == nil {
		b.reply(msg.Chat.ID, "⚠️ No profile found. Create one with the CLI first (profile-create).")
		return
	}
	targets := profile.CalculateMacroTargets(*prof)

	weekStart := planner.NextMonday(time.Now())
	exists, _ := b.planRepo.ExistsForWeek(ctx, userID, weekStart)
	if exists {
		// One plan per user per week; a second request plans the week after.
		weekStart = planner.NextMonday(weekStart)
	}

	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "🧑‍🍳 Building your plan..."))
	if err != nil {
		b.log.Error("failed to send initial reply", zap.Error(err))
		return
	}

	plan, err := b.generator.GenerateWeeklyPlan(ctx, userID, targets, weekStart)
	if err != nil {
		b.editReply(msg.Chat.ID, sent.MessageID, "❌ Error generating plan: "+err.Error())
		return
	}
	if _, err := b.planRepo.Save(ctx, plan); err != nil {
		b.log.Warn("failed to save meal plan", zap.Int64("user_id", userID), zap.Error(err))
	}

	b.editReply(msg.Chat.ID, sent.MessageID, planner.FormatMealPlan(plan))

	list := shopping.BuildFromPlan(plan)
	if len(list.Items) > 0 {
		if _, err := b.shopRepo.Save(ctx, &list); err != nil {
			b.log.Warn("failed to save shopping list", zap.Error(err))
		}
		var sb strings.Builder
		sb.WriteString("🛒 Shopping List\n\n")
		for _, item := range list.Items {
			sb.WriteString("• " + item + "\n")
		}
		b.reply(msg.Chat.ID, sb.String())
	}
}

func (b *Bot) handleRegenerate(msg *tgbotapi.Message, args string) {
	ctx := context.Background()
	day, mealType, err := parseRegenerateArgs(args)
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}

	userID := msg.From.ID
	prof, err := b.profileRepo.Get(ctx, userID)
	if err != nil || prof == nil {
		b.reply(msg.Chat.ID, "⚠️ No profile found.")
		return
	}
	targets := profile.CalculateMacroTargets(*prof)

	// The most recently planned week, so plans pushed past next Monday
	// by a repeated /plan stay editable.
	plan, err := b.planRepo.LoadLatest(ctx, userID, planner.WeekStart(time.Now()))
	if err != nil || plan == nil {
		b.reply(msg.Chat.ID, "⚠️ No upcoming plan yet. Run /plan first.")
		return
	}

	entry, err := b.generator.RegenerateMeal(ctx, plan, day, mealType, targets)
	if err != nil {
		if err == planner.ErrNoReplacement {
			b.reply(msg.Chat.ID, "😔 No suitable replacement recipe found.")
			return
		}
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}

	if err := b.planRepo.UpdateEntry(ctx, plan.ID, day, mealType, entry.RecipeID, entry.Servings); err != nil {
		b.reply(msg.Chat.ID, "❌ Error saving change: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ %s %s (week of %s) is now: %s (%.2g servings)",
		planner.DayNames[day], mealType, plan.WeekStartDate.Format("2006-01-02"),
		entry.Recipe.Title, entry.Servings))
}

func (b *Bot) handleLogMeal(msg *tgbotapi.Message, args string) {
	ctx := context.Background()
	recipeID, mealType, servings, err := parseLogArgs(args)
	if err != nil {
		b.reply(msg.Chat.ID, err.Error())
		return
	}

	rec, err := b.recipeRepo.Get(ctx, recipeID)
	if err != nil || rec == nil {
		b.reply(msg.Chat.ID, fmt.Sprintf("Recipe %d not found.", recipeID))
		return
	}
	if _, err := b.trackStore.LogMeal(ctx, msg.From.ID, recipeID, mealType, servings, time.Now()); err != nil {
		b.reply(msg.Chat.ID, "❌ Error logging meal: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, fmt.Sprintf("✅ Logged: %s (%.2g servings)", rec.Title, servings))
}

func (b *Bot) handleSummary(msg *tgbotapi.Message, args string) {
	ctx := context.Background()
	userID := msg.From.ID

	var target *nutrition.MacroTargets
	if prof, err := b.profileRepo.Get(ctx, userID); err == nil && prof != nil {
		t := profile.CalculateMacroTargets(*prof)
		target = &t
	}

	now := time.Now()
	period := strings.TrimSpace(strings.ToLower(args))
	var (
		summary tracker.NutritionSummary
		err     error
	)
	switch period {
	case "", "daily":
		summary, err = b.trackStore.DailySummary(ctx, userID, now, target)
	case "weekly":
		summary, err = b.trackStore.WeeklySummary(ctx, userID, now, target)
	case "monthly":
		summary, err = b.trackStore.MonthlySummary(ctx, userID, now.Year(), now.Month(), target)
	default:
		b.reply(msg.Chat.ID, "Usage: /summary [daily|weekly|monthly]")
		return
	}
	if err != nil {
		b.reply(msg.Chat.ID, "❌ Error: "+err.Error())
		return
	}
	b.reply(msg.Chat.ID, tracker.FormatSummary(summary))
}

func (b *Bot) handleImport(msg *tgbotapi.Message, url string) {
	sent, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, "✂️ Importing recipe..."))
	if err != nil {
		b.log.Error("failed to send initial reply", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rec, err := b.importer.ImportURL(ctx, url)
	if err != nil {
		b.editReply(msg.Chat.ID, sent.MessageID, "❌ Error importing recipe: "+err.Error())
		return
	}
	if _, err := b.recipeRepo.Save(ctx, rec); err != nil {
		b.editReply(msg.Chat.ID, sent.MessageID, "❌ Error saving recipe: "+err.Error())
		return
	}
	b.editReply(msg.Chat.ID, sent.MessageID,
		fmt.Sprintf("✅ Recipe saved: %s (id %d)", rec.Title, rec.ID))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.log.Error("failed to send message", zap.Error(err))
	}
}

func (b *Bot) editReply(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Error("failed to edit message", zap.Error(err))
	}
}

func dayIndex(name string) int {
	for i, d := range planner.DayNames {
		if strings.EqualFold(d, name) {
			return i
		}
	}
	return -1
}

// parseRegenerateArgs validates "<day> <meal>". Errors read as reply text.
func parseRegenerateArgs(args string) (int, recipe.MealType, error) {
	fields := strings.Fields(strings.ToLower(args))
	if len(fields) != 2 {
		return 0, "", fmt.Errorf("Usage: /regenerate <day> <meal>, e.g. /regenerate monday lunch")
	}
	day := dayIndex(fields[0])
	if day < 0 {
		return 0, "", fmt.Errorf("Unknown day: %s", fields[0])
	}
	if !recipe.ValidMealType(fields[1]) {
		return 0, "", fmt.Errorf("Unknown meal: %s", fields[1])
	}
	return day, recipe.MealType(fields[1]), nil
}

// parseLogArgs validates "<recipe id> <meal> [servings]", defaulting to
// one serving. Errors read as reply text.
func parseLogArgs(args string) (int64, recipe.MealType, float64, error) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return 0, "", 0, fmt.Errorf("Usage: /log <recipe id> <meal> [servings]")
	}
	recipeID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, "", 0, fmt.Errorf("Invalid recipe id: %s", fields[0])
	}
	mealName := strings.ToLower(fields[1])
	if !recipe.ValidMealType(mealName) {
		return 0, "", 0, fmt.Errorf("Unknown meal: %s", fields[1])
	}
	servings := 1.0
	if len(fields) > 2 {
		servings, err = strconv.ParseFloat(fields[2], 64)
		if err != nil || servings <= 0 {
			return 0, "", 0, fmt.Errorf("Invalid servings: %s", fields[2])
		}
	}
	return recipeID, recipe.MealType(mealName), servings, nil
}
