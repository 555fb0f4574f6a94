// Package engine turns raw campus event records into classified events and
// runs the search, filter and grouping pipeline over them. Everything here is
// a pure function of its inputs; no I/O happens in this package.
package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/spk/internal/models"
)

const (
	DateLayout = "January 2, 2006"
	TimeLayout = "3:04 PM"

	DefaultFoodType = "Food & Refreshments"
	commuterTag     = "commuter"
)

var (
	academicTerms = []string{"academic", "education", "lecture", "study", "workshop"}
	careerTerms   = []string{"career", "professional", "job", "internship", "employer", "recruit"}
	socialTerms   = []string{"social", "community", "cultural", "entertainment", "recreation", "fellowship", "celebration"}

	foodSignals = []string{"food", "refreshment", "snack", "lunch", "dinner", "breakfast", "pizza", "drinks"}
	// checked in order, first hit names the food type
	foodTypes = []string{"pizza", "sandwich", "lunch", "dinner", "breakfast", "refreshment", "snack", "coffee", "catering", "buffet"}

	timestampLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
)

// MalformedRecordError reports a raw record that cannot be turned into an
// Event. The record is skipped; the rest of the batch still normalizes.
type MalformedRecordError struct {
	ID    int64
	Field string
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event record %d: %s: %v", e.ID, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed event record %d: missing %s", e.ID, e.Field)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

type Normalizer struct {
	loc          *time.Location
	imageBaseURL string
}

// NewNormalizer renders every timestamp in loc. A nil loc means UTC.
func NewNormalizer(loc *time.Location, imageBaseURL string) *Normalizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Normalizer{loc: loc, imageBaseURL: imageBaseURL}
}

// Normalize converts one raw record into a canonical Event. Classifier fields
// are left zero; see Classify.
func (n *Normalizer) Normalize(raw models.RawEventRecord) (models.Event, error) {
	if raw.ID == 0 {
		return models.Event{}, &MalformedRecordError{ID: raw.ID, Field: "id"}
	}
	if strings.TrimSpace(raw.StartsOn) == "" {
		return models.Event{}, &MalformedRecordError{ID: raw.ID, Field: "startsOn"}
	}
	startsAt, err := n.parseTimestamp(raw.StartsOn)
	if err != nil {
		return models.Event{}, &MalformedRecordError{ID: raw.ID, Field: "startsOn", Err: err}
	}
	var endsAt time.Time
	if strings.TrimSpace(raw.EndsOn) != "" {
		// a bad end time is not fatal
		if t, err := n.parseTimestamp(raw.EndsOn); err == nil {
			endsAt = t
		}
	}

	summary := StripHTML(raw.Description)
	desc := strings.ToLower(summary)

	e := models.Event{
		ID:            strconv.FormatInt(raw.ID, 10),
		Title:         strings.TrimSpace(raw.Name),
		Description:   raw.Description,
		Summary:       summary,
		Location:      strings.TrimSpace(raw.Location),
		OrganizerName: strings.TrimSpace(raw.OrganizationName),
		ImageURL:      n.imageURL(raw.ImagePath),
		Date:          startsAt.Format(DateLayout),
		Time:          startsAt.Format(TimeLayout),
		StartsAt:      startsAt,
		EndsAt:        endsAt,
	}

	e.HasFood = containsAny(desc, foodSignals) || benefitMentionsFood(raw.BenefitNames)
	if e.HasFood {
		e.FoodType = foodType(desc)
	}
	e.Category = inferCategory(raw.CategoryNames, e.HasFood)

	e.Tags = mergeTags(raw.CategoryNames, raw.BenefitNames)
	if strings.Contains(desc, commuterTag) || tagsMention(e.Tags, commuterTag) {
		if !e.HasTag(commuterTag) {
			e.Tags = append(e.Tags, commuterTag)
		}
		e.Commuter = true
	}
	return e, nil
}

// NormalizeAll normalizes and classifies a batch. Malformed records are skipped
// and reported in errs; they never abort the batch.
func (n *Normalizer) NormalizeAll(raws []models.RawEventRecord) (events []models.Event, errs []error) {
	events = make([]models.Event, 0, len(raws))
	for _, raw := range raws {
		e, err := n.Normalize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		Classify(&e)
		events = append(events, e)
	}
	return events, errs
}

func (n *Normalizer) parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.Contains(layout, "Z07:00") {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, n.loc)
		}
		if err == nil {
			return t.In(n.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func (n *Normalizer) imageURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") || n.imageBaseURL == "" {
		return path
	}
	return strings.TrimRight(n.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// inferCategory applies the academic → career → social precedence over the
// upstream category names. Food only applies when nothing else matched.
func inferCategory(categoryNames []string, hasFood bool) models.Category {
	names := strings.ToLower(strings.Join(categoryNames, "|"))
	switch {
	case containsAny(names, academicTerms):
		return models.CategoryAcademic
	case containsAny(names, careerTerms):
		return models.CategoryCareer
	case containsAny(names, socialTerms):
		return models.CategorySocial
	case hasFood:
		return models.CategoryFood
	}
	return models.CategoryOther
}

func benefitMentionsFood(benefits []string) bool {
	for _, b := range benefits {
		if strings.Contains(strings.ToLower(b), "food") {
			return true
		}
	}
	return false
}

func foodType(desc string) string {
	for _, kw := range foodTypes {
		if strings.Contains(desc, kw) {
			return capitalize(kw)
		}
	}
	return DefaultFoodType
}

// mergeTags lowercases and deduplicates the union of the name lists,
// keeping first-seen order.
func mergeTags(lists ...[]string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, list := range lists {
		for _, name := range list {
			t := strings.ToLower(strings.TrimSpace(name))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	return tags
}

func tagsMention(tags []string, needle string) bool {
	for _, t := range tags {
		if strings.Contains(t, needle) {
			return true
		}
	}
	return false
}
