package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/joshua-takyi/spk/internal/models"
)

const (
	DefaultPageSize = 5
	DateKeyLayout   = "January 2"
)

const (
	MsgNoEvents      = "No upcoming events found."
	msgNoPersona     = "No events for %ss right now."
	msgNoQuery       = "No events match %q."
	msgNoFilters     = "No events match the selected filters."
	msgNoPinned      = "No matches for %q."
	msgNoToday       = "No events today."
	msgNoTodayQuery  = "No %q events today."
	msgTodaySuggest  = "Nothing today, but %q is coming up on %s."
	msgTodaySuggestQ = "No %q events today, but %q is coming up on %s."
)

var todayRe = regexp.MustCompile(`(?i)\btoday\b`)

// Request is one evaluation of the pipeline.
type Request struct {
	Query         string
	ActiveFilters []string
	Persona       models.Persona
	PinnedTag     string
	PinnedOrg     string
	// Page is 1-based. Pages are cumulative: page 2 shows the first two
	// batches of date keys.
	Page       int
	PageSize   int
	Generation string
}

type Result struct {
	Events        []models.Event            `json:"events"`
	Grouped       map[string][]models.Event `json:"grouped"`
	DateKeys      []string                  `json:"dateKeys"`
	TotalDateKeys int                       `json:"totalDateKeys"`
	HasMore       bool                      `json:"hasMore"`
	Counts        map[string]int            `json:"counts"`
	Message       string                    `json:"message,omitempty"`
	Suggestion    *models.Event             `json:"suggestion,omitempty"`
	Generation    string                    `json:"generation,omitempty"`
}

type Engine struct {
	loc      *time.Location
	pageSize int
	now      func() time.Time
}

// NewEngine evaluates dates in loc. pageSize is the number of date keys per
// page; zero or less means DefaultPageSize.
func NewEngine(loc *time.Location, pageSize int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Engine{loc: loc, pageSize: pageSize, now: time.Now}
}

// WithClock replaces the engine's clock.
func (en *Engine) WithClock(now func() time.Time) *Engine {
	en.now = now
	return en
}

func (en *Engine) Location() *time.Location { return en.loc }

// Run filters, scores, groups and paginates events. The input slice is not
// modified and the same inputs always produce the same result.
func (en *Engine) Run(events []models.Event, req Request) Result {
	now := en.now().In(en.loc)
	res := Result{
		Grouped:    map[string][]models.Event{},
		DateKeys:   []string{},
		Events:     []models.Event{},
		Generation: req.Generation,
	}

	all := make([]models.Event, len(events))
	copy(all, events)

	gated := PersonaGate(all, req.Persona)
	res.Counts = Counts(gated, now)
	if len(all) == 0 {
		res.Message = MsgNoEvents
		return res
	}
	if len(gated) == 0 {
		res.Message = fmt.Sprintf(msgNoPersona, req.Persona)
		return res
	}

	query := NormalizeQuery(req.Query)
	todayMode := todayRe.MatchString(query)
	if todayMode {
		query = NormalizeQuery(todayRe.ReplaceAllString(query, " "))
	}

	matched := Search(gated, query)
	if len(matched) == 0 {
		res.Message = fmt.Sprintf(msgNoQuery, query)
		return res
	}
	filtered := ApplyFilters(matched, req.ActiveFilters, now)
	pinned := ApplyPinned(filtered, req.PinnedTag, req.PinnedOrg)

	suggested := false
	if todayMode {
		if today := onToday(pinned, now); len(today) > 0 {
			pinned = today
		} else {
			// Date chips are ignored when looking for a suggestion.
			relaxed := ApplyFilters(matched, withoutCategory(req.ActiveFilters, FilterDate), now)
			if next, ok := nearestFuture(ApplyPinned(relaxed, req.PinnedTag, req.PinnedOrg), now); ok {
				suggested = true
				res.Message = suggestionMessage(query, next)
				pinned = []models.Event{next}
			}
		}
	}

	if !suggested {
		switch {
		case len(filtered) == 0:
			res.Message = msgNoFilters
			return res
		case len(pinned) == 0:
			res.Message = fmt.Sprintf(msgNoPinned, pinnedLabel(req))
			return res
		case todayMode && dayOffset(pinned[0].StartsAt, now) != 0:
			res.Message = todayMessage(query)
			return res
		}
	}

	ApplyPersonaBoost(pinned, req.Persona)
	SortByRelevance(pinned)
	res.Events = pinned
	if suggested {
		res.Suggestion = &res.Events[0]
	}

	keys, groups := en.group(pinned)
	res.TotalDateKeys = len(keys)
	visible := en.visibleKeys(len(keys), req.Page, req.PageSize)
	res.DateKeys = keys[:visible]
	res.HasMore = visible < len(keys)
	for _, k := range res.DateKeys {
		res.Grouped[k] = groups[k]
	}
	return res
}

// DateKey is the "Month Day" bucket an event is grouped under.
func (en *Engine) DateKey(e *models.Event) string {
	return e.StartsAt.In(en.loc).Format(DateKeyLayout)
}

// group buckets events by date key, keeping their relative order, and
// returns the keys in calendar order.
func (en *Engine) group(events []models.Event) ([]string, map[string][]models.Event) {
	groups := make(map[string][]models.Event)
	first := make(map[string]time.Time)
	keys := make([]string, 0)
	for _, e := range events {
		k := en.DateKey(&e)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
			y, m, d := e.StartsAt.In(en.loc).Date()
			first[k] = time.Date(y, m, d, 0, 0, 0, 0, en.loc)
		}
		groups[k] = append(groups[k], e)
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return first[keys[i]].Before(first[keys[j]])
	})
	return keys, groups
}

func (en *Engine) visibleKeys(total, page, size int) int {
	if size <= 0 {
		size = en.pageSize
	}
	if page < 1 {
		page = 1
	}
	n := page * size
	if n > total || n < 0 {
		return total
	}
	return n
}

func onToday(events []models.Event, now time.Time) []models.Event {
	out := make([]models.Event, 0, len(events))
	for _, e := range events {
		if dayOffset(e.StartsAt, now) == 0 {
			out = append(out, e)
		}
	}
	return out
}

// withoutCategory drops the filter ids that belong to category.
func withoutCategory(ids []string, category FilterCategory) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if f, ok := FilterByID(id); ok && f.Category == category {
			continue
		}
		out = append(out, id)
	}
	return out
}

func nearestFuture(events []models.Event, now time.Time) (models.Event, bool) {
	var (
		best  models.Event
		found bool
	)
	for _, e := range events {
		if !e.StartsAt.After(now) || dayOffset(e.StartsAt, now) == 0 {
			continue
		}
		if !found || e.StartsAt.Before(best.StartsAt) || (e.StartsAt.Equal(best.StartsAt) && e.ID < best.ID) {
			best, found = e, true
		}
	}
	return best, found
}

func todayMessage(query string) string {
	if query == "" {
		return msgNoToday
	}
	return fmt.Sprintf(msgNoTodayQuery, query)
}

func suggestionMessage(query string, next models.Event) string {
	if query == "" {
		return fmt.Sprintf(msgTodaySuggest, next.Title, next.Date)
	}
	return fmt.Sprintf(msgTodaySuggestQ, query, next.Title, next.Date)
}

func pinnedLabel(req Request) string {
	org := strings.TrimSpace(req.PinnedOrg)
	tag := strings.TrimSpace(req.PinnedTag)
	switch {
	case org != "" && tag != "":
		return tag + " / " + org
	case org != "":
		return org
	}
	return tag
}
