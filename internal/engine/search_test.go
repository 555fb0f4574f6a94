package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/spk/internal/models"
)

func TestScoreEmptyQueryKeepsBase(t *testing.T) {
	e := models.Event{Title: "Anything"}
	assert.Equal(t, DefaultRelevance, Score(&e, ""))
	assert.Equal(t, DefaultRelevance, Score(&e, "   "))

	e.RelevanceScore = 42
	assert.Equal(t, 42.0, Score(&e, ""))
}

func TestScoreTermWeights(t *testing.T) {
	e := models.Event{
		Title:         "Robotics Demo",
		OrganizerName: "Robotics Club",
		Summary:       "See robotics projects",
		Location:      "Robotics Lab",
		Category:      models.CategoryAcademic,
	}
	// 3 + 2 + 1 + 1.5
	assert.Equal(t, 7.5, Score(&e, "ROBOTICS"))
	// category substring adds a flat 2
	assert.Equal(t, 2.0, Score(&e, "academic"))
}

func TestScoreIsClamped(t *testing.T) {
	e := models.Event{Title: strings.Repeat("robot ", 50)}
	assert.Equal(t, MaxRelevance, Score(&e, "robot"))
}

func TestScoreBoostFragmentsNeedWordStart(t *testing.T) {
	e := models.Event{Title: "Art Walk", IsArtsCulture: true}
	assert.Equal(t, 5.0, Score(&e, "art"))

	party := models.Event{Title: "Dance Party", IsArtsCulture: true}
	assert.Equal(t, 3.0, Score(&party, "party"))
}

func TestSearchFoodRanksDerivedSignal(t *testing.T) {
	base := time.Date(2026, 3, 12, 18, 0, 0, 0, testLoc)
	events := []models.Event{
		{ID: "1", Title: "Pizza Party", Summary: "Grab a slice", HasFood: true, FoodType: "Pizza", StartsAt: base},
		{ID: "2", Title: "Taco Tuesday", Summary: "Tacos on the lawn", HasFood: true, FoodType: DefaultFoodType, StartsAt: base.Add(time.Hour)},
		{ID: "3", Title: "Bagel Break", Summary: "Morning bagels", HasFood: true, FoodType: "Breakfast", StartsAt: base.Add(2 * time.Hour)},
		{ID: "4", Title: "Chess Night", Summary: "Bring a board", Category: models.CategoryOther, StartsAt: base},
		{ID: "5", Title: "Study Jam", Summary: "Quiet hours", Category: models.CategoryAcademic, StartsAt: base},
	}

	got := Search(events, "food")
	require.Len(t, got, 3)
	for _, e := range got {
		assert.True(t, e.HasFood)
		// no literal "food" anywhere, only the perks boost
		assert.Equal(t, 3.0, e.RelevanceScore, e.Title)
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids(got))

	for i := 3; i < len(events); i++ {
		assert.Less(t, Score(&events[i], "food"), got[len(got)-1].RelevanceScore)
	}
}

func TestSearchReturnsScoredSubset(t *testing.T) {
	start := time.Date(2026, 3, 12, 12, 0, 0, 0, testLoc)
	events := []models.Event{
		{ID: "a", Title: "Chess Club Meeting", OrganizerName: "Chess Club", StartsAt: start},
		{ID: "b", Title: "Open Mic", OrganizerName: "Music Club", StartsAt: start.Add(time.Hour)},
		{ID: "c", Title: "Career Fair", OrganizerName: "Career Development Services", StartsAt: start},
		{ID: "d", Title: "Club Fair", Summary: "Meet every club on campus", StartsAt: start.Add(-time.Hour)},
	}
	before := append([]models.Event(nil), events...)

	got := Search(events, "club")
	assert.Equal(t, before, events)
	require.Len(t, got, 3)
	assert.ElementsMatch(t, []string{"a", "b", "d"}, ids(got))
	for i, e := range got {
		assert.Contains(t, SearchBlob(&e), "club")
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].RelevanceScore, e.RelevanceScore)
		}
	}
}

func TestSearchTiesBreakOnStart(t *testing.T) {
	start := time.Date(2026, 3, 12, 12, 0, 0, 0, testLoc)
	events := []models.Event{
		{ID: "late", Title: "Mixer", StartsAt: start.Add(2 * time.Hour)},
		{ID: "early", Title: "Mixer", StartsAt: start},
	}
	assert.Equal(t, []string{"early", "late"}, ids(Search(events, "")))
}

func TestApplyPersonaBoost(t *testing.T) {
	noon := time.Date(2026, 3, 12, 12, 0, 0, 0, testLoc)
	events := []models.Event{
		{ID: "c", HasFood: true, StartsAt: noon, Tags: []string{"commuter"}, RelevanceScore: 50},
		{ID: "r", Category: models.CategorySocial, TimeOfDay: models.TimeEvening, StartsAt: noon.Add(8 * time.Hour), RelevanceScore: 50},
		{ID: "x", HasFood: true, StartsAt: noon, Tags: []string{"commuter"}, RelevanceScore: 90},
	}

	commuter := append([]models.Event(nil), events...)
	ApplyPersonaBoost(commuter, models.PersonaCommuter)
	assert.Equal(t, 83.0, commuter[0].RelevanceScore)
	assert.Equal(t, 50.0, commuter[1].RelevanceScore)
	assert.Equal(t, MaxRelevance, commuter[2].RelevanceScore)

	resident := append([]models.Event(nil), events...)
	ApplyPersonaBoost(resident, models.PersonaResident)
	assert.Equal(t, 50.0, resident[0].RelevanceScore)
	assert.Equal(t, 63.0, resident[1].RelevanceScore)

	none := append([]models.Event(nil), events...)
	ApplyPersonaBoost(none, models.PersonaNone)
	assert.Equal(t, 50.0, none[0].RelevanceScore)
}

func ids(events []models.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}
