package engine

import (
	"regexp"
	"strings"
	"time"

	"github.com/joshua-takyi/spk/internal/models"
)

type FilterCategory string

const (
	FilterDate      FilterCategory = "date"
	FilterTime      FilterCategory = "time"
	FilterPerks     FilterCategory = "perks"
	FilterPurpose   FilterCategory = "purpose"
	FilterTheme     FilterCategory = "theme"
	FilterFormat    FilterCategory = "format"
	FilterResidence FilterCategory = "residence"
)

// FilterCategories lists the categories in display order.
var FilterCategories = []FilterCategory{
	FilterDate, FilterTime, FilterPerks, FilterPurpose, FilterTheme, FilterFormat, FilterResidence,
}

// MatchFunc reports whether e passes a filter. now is in the engine's zone.
type MatchFunc func(e *models.Event, now time.Time) bool

// Filter is one chip in the filter bar.
type Filter struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Category FilterCategory `json:"category"`
	Match    MatchFunc      `json:"-"`
}

// Filters is the fixed filter vocabulary.
var Filters = []Filter{
	{"today", "Today", FilterDate, func(e *models.Event, now time.Time) bool { return dayOffset(e.StartsAt, now) == 0 }},
	{"tomorrow", "Tomorrow", FilterDate, func(e *models.Event, now time.Time) bool { return dayOffset(e.StartsAt, now) == 1 }},
	{"this-week", "This Week", FilterDate, func(e *models.Event, now time.Time) bool {
		d := dayOffset(e.StartsAt, now)
		return d >= 0 && d <= 6
	}},
	{"weekend", "Weekend", FilterDate, func(e *models.Event, now time.Time) bool {
		d := dayOffset(e.StartsAt, now)
		wd := e.StartsAt.In(now.Location()).Weekday()
		return d >= 0 && d <= 6 && (wd == time.Saturday || wd == time.Sunday)
	}},

	{"morning", "Morning", FilterTime, func(e *models.Event, _ time.Time) bool { return e.TimeOfDay == models.TimeMorning }},
	{"afternoon", "Afternoon", FilterTime, func(e *models.Event, _ time.Time) bool { return e.TimeOfDay == models.TimeAfternoon }},
	{"evening", "Evening", FilterTime, func(e *models.Event, _ time.Time) bool { return e.TimeOfDay == models.TimeEvening }},

	{"free-food", "Free Food", FilterPerks, func(e *models.Event, _ time.Time) bool { return e.HasFood }},
	{"swag", "Swag", FilterPerks, func(e *models.Event, _ time.Time) bool { return e.HasSwag }},
	{"no-rsvp", "No RSVP", FilterPerks, func(e *models.Event, _ time.Time) bool { return !e.RequiresRSVP }},

	{"networking", "Networking", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.IsNetworking }},
	{"workshop", "Workshops", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.IsWorkshop }},
	{"service", "Service", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.IsService }},
	{"academic", "Academic", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.Category == models.CategoryAcademic }},
	{"career", "Career", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.Category == models.CategoryCareer }},
	{"social", "Social", FilterPurpose, func(e *models.Event, _ time.Time) bool { return e.Category == models.CategorySocial }},

	{"health-wellness", "Health & Wellness", FilterTheme, func(e *models.Event, _ time.Time) bool { return e.IsHealthWellness }},
	{"arts-culture", "Arts & Culture", FilterTheme, func(e *models.Event, _ time.Time) bool { return e.IsArtsCulture }},
	{"sports-rec", "Sports & Rec", FilterTheme, func(e *models.Event, _ time.Time) bool { return e.IsSportsRec }},
	{"faith-spirituality", "Faith & Spirituality", FilterTheme, func(e *models.Event, _ time.Time) bool { return e.IsFaithSpirituality }},

	{"in-person", "In Person", FilterFormat, func(e *models.Event, _ time.Time) bool { return e.Format == models.FormatInPerson }},
	{"virtual", "Virtual", FilterFormat, func(e *models.Event, _ time.Time) bool { return e.Format == models.FormatVirtual }},
	{"hybrid", "Hybrid", FilterFormat, func(e *models.Event, _ time.Time) bool { return e.Format == models.FormatHybrid }},

	{"commuter-friendly", "Commuter Friendly", FilterResidence, func(e *models.Event, _ time.Time) bool { return IsCommuterFriendly(e) }},
	{"residence-life", "Residence Life", FilterResidence, func(e *models.Event, _ time.Time) bool { return IsResidenceLife(e) }},
}

var filtersByID = func() map[string]*Filter {
	m := make(map[string]*Filter, len(Filters))
	for i := range Filters {
		m[Filters[i].ID] = &Filters[i]
	}
	return m
}()

// FilterByID looks up a filter in the vocabulary.
func FilterByID(id string) (Filter, bool) {
	f, ok := filtersByID[id]
	if !ok {
		return Filter{}, false
	}
	return *f, true
}

// dayOffset is the number of calendar days from now's date to t's date,
// both taken in now's location.
func dayOffset(t, now time.Time) int {
	loc := now.Location()
	ty, tm, td := t.In(loc).Date()
	ny, nm, nd := now.Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(a.Sub(b).Hours() / 24)
}

var residenceLifeRe = regexp.MustCompile(`(?i)\b(residence halls?|residence life|res life|rha|resident assistants?|housing|cypress hall|laurel hall|oak hall|redwood hall|maple hall|warren street village|greek village)\b`)

// IsResidenceLife reports whether an event is put on by or held in the
// residence halls.
func IsResidenceLife(e *models.Event) bool {
	return residenceLifeRe.MatchString(lower(e.Title, e.Location, e.OrganizerName))
}

// IsCommuterFriendly holds for events tagged for commuters, and for daytime
// events outside the residence halls.
func IsCommuterFriendly(e *models.Event) bool {
	if e.Commuter {
		return true
	}
	h := e.StartsAt.Hour()
	return h >= 9 && h < 16 && !IsResidenceLife(e)
}

// PersonaGate keeps residence-life events for residents and drops them for
// commuters. Any other persona passes everything through.
func PersonaGate(events []models.Event, persona models.Persona) []models.Event {
	if persona != models.PersonaCommuter && persona != models.PersonaResident {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for i := range events {
		res := IsResidenceLife(&events[i])
		if (persona == models.PersonaResident) == res {
			out = append(out, events[i])
		}
	}
	return out
}

// ApplyFilters keeps the events that match at least one active filter in
// every category with an active filter. Unknown ids are ignored.
func ApplyFilters(events []models.Event, active []string, now time.Time) []models.Event {
	groups := make(map[FilterCategory][]*Filter)
	for _, id := range active {
		if f, ok := filtersByID[id]; ok {
			groups[f.Category] = append(groups[f.Category], f)
		}
	}
	if len(groups) == 0 {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for i := range events {
		if passesAll(&events[i], groups, now) {
			out = append(out, events[i])
		}
	}
	return out
}

func passesAll(e *models.Event, groups map[FilterCategory][]*Filter, now time.Time) bool {
	for _, fs := range groups {
		hit := false
		for _, f := range fs {
			if f.Match(e, now) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

// ApplyPinned applies the tag and organizer filters set by clicking on an
// event. Empty values are not applied.
func ApplyPinned(events []models.Event, tag, org string) []models.Event {
	tag = strings.ToLower(strings.TrimSpace(tag))
	org = strings.ToLower(strings.TrimSpace(org))
	if tag == "" && org == "" {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for i := range events {
		e := &events[i]
		if tag != "" && !matchesTag(e.Tags, tag) {
			continue
		}
		if org != "" && !strings.Contains(strings.ToLower(e.OrganizerName), org) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

func matchesTag(tags []string, tag string) bool {
	for _, t := range tags {
		t = strings.ToLower(t)
		if t == tag || strings.Contains(t, tag) || strings.Contains(tag, t) {
			return true
		}
	}
	return false
}

// Counts returns, for every filter id, how many events match it alone.
func Counts(events []models.Event, now time.Time) map[string]int {
	counts := make(map[string]int, len(Filters))
	for _, f := range Filters {
		counts[f.ID] = 0
	}
	for i := range events {
		for _, f := range Filters {
			if f.Match(&events[i], now) {
				counts[f.ID]++
			}
		}
	}
	return counts
}
