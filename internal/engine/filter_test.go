package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/joshua-takyi/spk/internal/models"
)

var (
	testLoc = time.FixedZone("EST", -5*60*60)
	// Tuesday
	testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, testLoc)
)

func at(days, hour int) time.Time {
	d := testNow.AddDate(0, 0, days)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, testLoc)
}

func TestApplyFiltersAndAcrossCategories(t *testing.T) {
	events := []models.Event{
		{ID: "today-social", Category: models.CategorySocial, StartsAt: at(0, 18)},
		{ID: "today-career", Category: models.CategoryCareer, StartsAt: at(0, 14)},
		{ID: "tomorrow-career", Category: models.CategoryCareer, StartsAt: at(1, 14)},
		{ID: "today-networking", Category: models.CategorySocial, IsNetworking: true, StartsAt: at(0, 17)},
	}

	got := ApplyFilters(events, []string{"today", "career"}, testNow)
	assert.Equal(t, []string{"today-career"}, ids(got))

	got = ApplyFilters(events, []string{"today", "career", "networking"}, testNow)
	assert.Equal(t, []string{"today-career", "today-networking"}, ids(got))

	got = ApplyFilters(events, []string{"today", "tomorrow", "career"}, testNow)
	assert.Equal(t, []string{"today-career", "tomorrow-career"}, ids(got))
}

func TestApplyFiltersNoneActive(t *testing.T) {
	events := []models.Event{{ID: "a"}, {ID: "b"}}
	assert.Len(t, ApplyFilters(events, nil, testNow), 2)
	assert.Len(t, ApplyFilters(events, []string{"not-a-filter"}, testNow), 2)
}

func TestDateFilters(t *testing.T) {
	match := func(id string, e models.Event) bool {
		f, ok := FilterByID(id)
		assert.True(t, ok, id)
		return f.Match(&e, testNow)
	}
	assert.True(t, match("today", models.Event{StartsAt: at(0, 23)}))
	assert.False(t, match("today", models.Event{StartsAt: at(1, 0)}))
	assert.True(t, match("tomorrow", models.Event{StartsAt: at(1, 9)}))
	assert.True(t, match("this-week", models.Event{StartsAt: at(6, 9)}))
	assert.False(t, match("this-week", models.Event{StartsAt: at(7, 9)}))
	assert.False(t, match("this-week", models.Event{StartsAt: at(-1, 9)}))
	// Saturday the 14th, then the Saturday after
	assert.True(t, match("weekend", models.Event{StartsAt: at(4, 13)}))
	assert.False(t, match("weekend", models.Event{StartsAt: at(11, 13)}))
	assert.False(t, match("weekend", models.Event{StartsAt: at(2, 13)}))
	// an instant stored in UTC still buckets by the local date
	assert.True(t, match("tomorrow", models.Event{StartsAt: at(1, 20).UTC()}))
}

func TestPersonaGate(t *testing.T) {
	events := []models.Event{
		{ID: "rha", Title: "RHA Movie Night", Location: "Laurel Hall Lounge"},
		{ID: "hall", Title: "Floor Meeting", Location: "Cypress Hall"},
		{ID: "campus", Title: "Hackathon", Location: "Campus Center", OrganizerName: "ACM"},
	}
	assert.Equal(t, []string{"rha", "hall"}, ids(PersonaGate(events, models.PersonaResident)))
	assert.Equal(t, []string{"campus"}, ids(PersonaGate(events, models.PersonaCommuter)))
	assert.Len(t, PersonaGate(events, models.PersonaNone), 3)
}

func TestApplyPinnedOrganizer(t *testing.T) {
	events := []models.Event{
		{ID: "robotics", OrganizerName: "NJIT Robotics Club and Makers"},
		{ID: "chess", OrganizerName: "Chess Club"},
	}
	assert.Equal(t, []string{"robotics"}, ids(ApplyPinned(events, "", "Robotics Club")))
	assert.Empty(t, ApplyPinned(events[1:], "", "Robotics Club"))
	assert.Len(t, ApplyPinned(events, "", ""), 2)
}

func TestApplyPinnedTag(t *testing.T) {
	events := []models.Event{
		{ID: "a", Tags: []string{"free food", "social"}},
		{ID: "b", Tags: []string{"career"}},
		{ID: "c", Tags: []string{"food"}},
	}
	// exact, and substring in either direction
	assert.Equal(t, []string{"b"}, ids(ApplyPinned(events, "Career", "")))
	assert.Equal(t, []string{"a", "c"}, ids(ApplyPinned(events, "food", "")))
	assert.Equal(t, []string{"a", "c"}, ids(ApplyPinned(events, "free food", "")))
}

func TestCountsUseEveryFilter(t *testing.T) {
	counts := Counts(nil, testNow)
	assert.Len(t, counts, len(Filters))
	for id, n := range counts {
		assert.Zero(t, n, id)
	}

	events := []models.Event{
		{HasFood: true, StartsAt: at(0, 12), TimeOfDay: models.TimeAfternoon, Format: models.FormatInPerson},
		{HasFood: true, RequiresRSVP: true, StartsAt: at(1, 19), TimeOfDay: models.TimeEvening, Format: models.FormatVirtual},
	}
	counts = Counts(events, testNow)
	assert.Equal(t, 2, counts["free-food"])
	assert.Equal(t, 1, counts["no-rsvp"])
	assert.Equal(t, 1, counts["today"])
	assert.Equal(t, 2, counts["this-week"])
	assert.Equal(t, 1, counts["virtual"])
	assert.Equal(t, 0, counts["hybrid"])
}
