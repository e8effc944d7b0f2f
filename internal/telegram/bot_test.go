package telegram

import (
	"strings"
	"testing"

	"macro-meal-planner/internal/recipe"
)

func TestDayIndex(t *testing.T) {
	if got := dayIndex("monday"); got != 0 {
		t.Errorf("dayIndex(monday) = %d, want 0", got)
	}
	if got := dayIndex("Sunday"); got != 6 {
		t.Errorf("dayIndex(Sunday) = %d, want 6", got)
	}
	if got := dayIndex("someday"); got != -1 {
		t.Errorf("dayIndex(someday) = %d, want -1", got)
	}
}

func TestParseRegenerateArgs(t *testing.T) {
	day, mealType, err := parseRegenerateArgs("monday lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != 0 || mealType != recipe.Lunch {
		t.Errorf("got day %d meal %s, want 0 lunch", day, mealType)
	}

	// Fields fold to lower case before matching.
	day, mealType, err = parseRegenerateArgs("Friday DINNER")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if day != 4 || mealType != recipe.Dinner {
		t.Errorf("got day %d meal %s, want 4 dinner", day, mealType)
	}

	for _, args := range []string{"", "monday", "monday lunch extra", "someday lunch", "monday brunch"} {
		if _, _, err := parseRegenerateArgs(args); err == nil {
			t.Errorf("parseRegenerateArgs(%q) should fail", args)
		}
	}

	if _, _, err := parseRegenerateArgs(""); err == nil || !strings.Contains(err.Error(), "/regenerate") {
		t.Errorf("empty args should explain usage, got %v", err)
	}
}

func TestParseLogArgs(t *testing.T) {
	id, mealType, servings, err := parseLogArgs("12 lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 12 || mealType != recipe.Lunch || servings != 1.0 {
		t.Errorf("got %d %s %g, want 12 lunch 1", id, mealType, servings)
	}

	id, mealType, servings, err = parseLogArgs("7 Dinner 1.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 || mealType != recipe.Dinner || servings != 1.5 {
		t.Errorf("got %d %s %g, want 7 dinner 1.5", id, mealType, servings)
	}

	for _, args := range []string{"", "12", "banana lunch", "12 brunch", "12 lunch zero", "12 lunch 0", "12 lunch -1"} {
		if _, _, _, err := parseLogArgs(args); err == nil {
			t.Errorf("parseLogArgs(%q) should fail", args)
		}
	}
}
