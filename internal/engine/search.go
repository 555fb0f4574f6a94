package engine

import (
	"regexp"
	"sort"
	"strings"

	"github.com/joshua-takyi/spk/internal/models"
)

const (
	DefaultRelevance = 70.0
	MaxRelevance     = 100.0

	titleWeight     = 3.0
	organizerWeight = 2.0
	summaryWeight   = 1.0
	locationWeight  = 1.5
	categoryBoost   = 2.0
)

type boost struct {
	dimension Dimension
	fragments []*regexp.Regexp
	weight    float64
	applies   func(e *models.Event) bool
}

func fragments(words ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(words))
	for _, w := range words {
		out = append(out, regexp.MustCompile(`\b`+regexp.QuoteMeta(w)))
	}
	return out
}

// boosts fire when the query mentions one of the fragments and the event
// carries the matching derived signal. Purpose and perks weigh +3, the other
// dimensions +2.
var boosts = []boost{
	{DimPurpose, fragments("network", "mixer", "career fair"), 3, func(e *models.Event) bool { return e.IsNetworking }},
	{DimPurpose, fragments("workshop", "seminar", "training", "tutorial"), 3, func(e *models.Event) bool { return e.IsWorkshop }},
	{DimPurpose, fragments("volunteer", "service", "charity"), 3, func(e *models.Event) bool { return e.IsService }},

	{DimPerks, fragments("food", "pizza", "snack", "lunch", "dinner", "breakfast", "refreshment", "eat"), 3, func(e *models.Event) bool { return e.HasFood }},
	{DimPerks, fragments("swag", "giveaway", "merch", "prize", "free shirt"), 3, func(e *models.Event) bool { return e.HasSwag }},

	{DimTheme, fragments("health", "wellness", "fitness", "yoga", "mental"), 2, func(e *models.Event) bool { return e.IsHealthWellness }},
	{DimTheme, fragments("art", "music", "culture", "cultural", "dance", "film"), 2, func(e *models.Event) bool { return e.IsArtsCulture }},
	{DimTheme, fragments("sport", "game", "athletic", "intramural", "recreation"), 2, func(e *models.Event) bool { return e.IsSportsRec }},
	{DimTheme, fragments("faith", "spiritual", "prayer", "religio", "worship"), 2, func(e *models.Event) bool { return e.IsFaithSpirituality }},

	{DimFormat, fragments("virtual", "online", "zoom", "remote"), 2, func(e *models.Event) bool {
		return e.Format == models.FormatVirtual || e.Format == models.FormatHybrid
	}},
	{DimFormat, fragments("in-person", "in person", "on campus", "on-campus"), 2, func(e *models.Event) bool {
		return e.Format == models.FormatInPerson || e.Format == models.FormatHybrid
	}},
	{DimFormat, fragments("hybrid"), 2, func(e *models.Event) bool { return e.Format == models.FormatHybrid }},

	{DimRequirements, fragments("rsvp", "register", "registration", "sign up", "signup"), 2, func(e *models.Event) bool { return e.RequiresRSVP }},

	{DimTime, fragments("morning"), 2, func(e *models.Event) bool { return e.TimeOfDay == models.TimeMorning }},
	{DimTime, fragments("afternoon"), 2, func(e *models.Event) bool { return e.TimeOfDay == models.TimeAfternoon }},
	{DimTime, fragments("evening", "night", "tonight"), 2, func(e *models.Event) bool { return e.TimeOfDay == models.TimeEvening }},
}

// NormalizeQuery trims, lowercases and collapses whitespace.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(strings.ToLower(q), " "))
}

// Score computes the relevance of e for query, clamped to [0, 100]. An empty
// query keeps the event's current score, or DefaultRelevance when unset.
func Score(e *models.Event, query string) float64 {
	q := NormalizeQuery(query)
	if q == "" {
		if e.RelevanceScore > 0 {
			return clamp(e.RelevanceScore)
		}
		return DefaultRelevance
	}

	s := titleWeight*count(e.Title, q) +
		organizerWeight*count(e.OrganizerName, q) +
		summaryWeight*count(summaryOf(e), q) +
		locationWeight*count(e.Location, q)

	cat := string(e.Category)
	if cat != "" && (strings.Contains(cat, q) || strings.Contains(q, cat)) {
		s += categoryBoost
	}
	s += advancedBoost(e, q)
	return clamp(s)
}

func advancedBoost(e *models.Event, q string) float64 {
	var total float64
	for _, b := range boosts {
		if !b.applies(e) {
			continue
		}
		for _, f := range b.fragments {
			if f.MatchString(q) {
				total += b.weight
				break
			}
		}
	}
	return total
}

// SearchBlob is the lowercase text a query must appear in for an event to
// be a search hit. It includes the keywords of the derived signals so that
// a query like "food" finds events whose food signal came from "pizza".
func SearchBlob(e *models.Event) string {
	parts := []string{e.Title, summaryOf(e), e.OrganizerName, e.Location, string(e.Category)}
	parts = append(parts, e.Tags...)
	if e.HasFood {
		parts = append(parts, "food", strings.ToLower(e.FoodType))
	}
	if e.HasSwag {
		parts = append(parts, "swag")
	}
	if e.IsNetworking {
		parts = append(parts, "networking")
	}
	if e.IsWorkshop {
		parts = append(parts, "workshop")
	}
	if e.IsService {
		parts = append(parts, "service volunteer")
	}
	if e.IsHealthWellness {
		parts = append(parts, "health wellness")
	}
	if e.IsArtsCulture {
		parts = append(parts, "arts culture")
	}
	if e.IsSportsRec {
		parts = append(parts, "sports recreation")
	}
	if e.IsFaithSpirituality {
		parts = append(parts, "faith spirituality")
	}
	if e.RequiresRSVP {
		parts = append(parts, "rsvp")
	}
	parts = append(parts, string(e.Format), string(e.TimeOfDay))
	return lower(parts...)
}

// Matches reports whether the normalized query occurs in the event's blob.
// The empty query matches everything.
func Matches(e *models.Event, query string) bool {
	q := NormalizeQuery(query)
	return q == "" || strings.Contains(SearchBlob(e), q)
}

// Search returns the events matching query, scored and sorted by descending
// relevance with ties broken by start time. The input is not modified.
func Search(events []models.Event, query string) []models.Event {
	out := make([]models.Event, 0, len(events))
	for i := range events {
		if !Matches(&events[i], query) {
			continue
		}
		e := events[i]
		e.RelevanceScore = Score(&e, query)
		out = append(out, e)
	}
	SortByRelevance(out)
	return out
}

// ApplyPersonaBoost adds persona-specific bonuses on top of existing scores.
func ApplyPersonaBoost(events []models.Event, persona models.Persona) {
	for i := range events {
		e := &events[i]
		switch persona {
		case models.PersonaCommuter:
			if e.HasFood {
				e.RelevanceScore += 10
			}
			if h := e.StartsAt.Hour(); h >= 9 && h < 16 {
				e.RelevanceScore += 8
			}
			if e.HasTag(commuterTag) {
				e.RelevanceScore += 15
			}
		case models.PersonaResident:
			if e.TimeOfDay == models.TimeEvening {
				e.RelevanceScore += 8
			}
			if e.Category == models.CategorySocial {
				e.RelevanceScore += 5
			}
		}
		e.RelevanceScore = clamp(e.RelevanceScore)
	}
}

// SortByRelevance orders by score desc, then start time asc, then id.
func SortByRelevance(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := &events[i], &events[j]
		if a.RelevanceScore != b.RelevanceScore {
			return a.RelevanceScore > b.RelevanceScore
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.Before(b.StartsAt)
		}
		return a.ID < b.ID
	})
}

func summaryOf(e *models.Event) string {
	if e.Summary != "" {
		return e.Summary
	}
	return StripHTML(e.Description)
}

func count(field, q string) float64 {
	if field == "" || q == "" {
		return 0
	}
	return float64(strings.Count(strings.ToLower(field), q))
}

func clamp(s float64) float64 {
	switch {
	case s < 0:
		return 0
	case s > MaxRelevance:
		return MaxRelevance
	}
	return s
}
