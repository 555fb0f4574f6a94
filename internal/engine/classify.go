package engine

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/joshua-takyi/spk/internal/models"
)

type Dimension string

const (
	DimPurpose      Dimension = "purpose"
	DimTheme        Dimension = "theme"
	DimPerks        Dimension = "perks"
	DimFormat       Dimension = "format"
	DimRequirements Dimension = "requirements"
	DimTime         Dimension = "time"
)

// Classifier tag ids.
const (
	TagNetworking = "networking"
	TagWorkshop   = "workshop"
	TagService    = "service"
	TagHealth     = "health-wellness"
	TagArts       = "arts-culture"
	TagSports     = "sports-rec"
	TagFaith      = "faith-spirituality"
	TagFood       = "food"
	TagSwag       = "swag"
	TagVirtual    = "virtual"
	TagInPerson   = "in-person"
	TagHybrid     = "hybrid"
	TagRSVP       = "rsvp"
	TagMorning    = "morning"
	TagAfternoon  = "afternoon"
	TagEvening    = "evening"
)

type Rule struct {
	Dimension Dimension
	Tag       string
	Pattern   *regexp.Regexp
}

// Rules is evaluated row by row against lowercase event text. Rows are
// independent: an event can match several purposes or themes at once.
var Rules = []Rule{
	{DimPurpose, TagNetworking, regexp.MustCompile(`(?i)\b(network(ing)?|meet\s*(and|&)\s*greet|mixers?|career fairs?|job fairs?|recruit(ers?|ing|ment)?|employers?|industry night)\b`)},
	{DimPurpose, TagWorkshop, regexp.MustCompile(`(?i)\b(workshops?|seminars?|trainings?|tutorials?|hands[- ]on|bootcamps?|masterclass(es)?|info(rmation)? sessions?|skill[- ]building)\b`)},
	{DimPurpose, TagService, regexp.MustCompile(`(?i)\b(volunteer(s|ing)?|community service|service (project|day|event)s?|donat(e|es|ion|ions)|charity|fundrais(er|ers|ing)|outreach|food drive)\b`)},

	{DimTheme, TagHealth, regexp.MustCompile(`(?i)\b(health|wellness|well[- ]being|mental health|meditation|yoga|fitness|mindfulness|self[- ]care|nutrition|counseling|stress relief)\b`)},
	{DimTheme, TagArts, regexp.MustCompile(`(?i)\b(arts?|artists?|music(al)?|concerts?|dance|dancing|theat(er|re)|films?|movies?|poetry|culture|cultural|galler(y|ies)|painting|exhibit(s|ion)?|heritage)\b`)},
	{DimTheme, TagSports, regexp.MustCompile(`(?i)\b(sports?|basketball|soccer|football|volleyball|tennis|tournaments?|intramurals?|athletics?|esports|recreation|rec center|pickleball)\b`)},
	{DimTheme, TagFaith, regexp.MustCompile(`(?i)\b(faith|spiritual(ity)?|prayers?|bible|church|worship|muslim|christian|jewish|hindu|buddhist|interfaith|ministry|religio(n|us)|hillel|jummah)\b`)},

	{DimPerks, TagFood, regexp.MustCompile(`(?i)\b(food|pizza|snacks?|lunch|dinner|breakfast|refreshments?|drinks|coffee|catering|buffet|desserts?|donuts?)\b`)},
	{DimPerks, TagSwag, regexp.MustCompile(`(?i)\b(swag|giveaways?|free (t-?shirts?|shirts?|merch)|merch(andise)?|prizes?|raffles?)\b`)},

	{DimFormat, TagVirtual, regexp.MustCompile(`(?i)\b(virtual(ly)?|online|zoom|webex|webinars?|google meet|microsoft teams|livestream(ed)?|remote(ly)?)\b`)},
	{DimFormat, TagInPerson, regexp.MustCompile(`(?i)\b(in[- ]person|on[- ]campus|face[- ]to[- ]face)\b`)},
	{DimFormat, TagHybrid, regexp.MustCompile(`(?i)\bhybrid\b`)},

	{DimRequirements, TagRSVP, regexp.MustCompile(`(?i)\b(rsvp|registration (is )?required|register|sign[- ]?up|tickets? required|reserve your (spot|seat))\b`)},

	{DimTime, TagMorning, regexp.MustCompile(`(?i)\b(morning|breakfast|brunch|sunrise)\b`)},
	{DimTime, TagAfternoon, regexp.MustCompile(`(?i)\b(afternoon|lunch|noon|midday)\b`)},
	{DimTime, TagEvening, regexp.MustCompile(`(?i)\b(evening|night|tonight|dinner|sunset)\b`)},
}

var rulesByTag = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(Rules))
	for _, r := range Rules {
		m[r.Tag] = r.Pattern
	}
	return m
}()

// Classification is the set of derived fields computed from an event's text.
type Classification struct {
	IsNetworking        bool
	IsWorkshop          bool
	IsService           bool
	IsHealthWellness    bool
	IsArtsCulture       bool
	IsSportsRec         bool
	IsFaithSpirituality bool
	HasSwag             bool
	RequiresRSVP        bool
	Format              models.Format
	TimeOfDay           models.TimeOfDay
}

// Match returns the tags of every rule whose pattern matches text.
func Match(text string) map[string]bool {
	text = strings.ToLower(text)
	hits := make(map[string]bool)
	for _, r := range Rules {
		if r.Pattern.MatchString(text) {
			hits[r.Tag] = true
		}
	}
	return hits
}

// ClassifyText derives the classifier fields from the combined event text,
// its location and its formatted start time.
func ClassifyText(text, location, clock string) Classification {
	hits := Match(text)
	return Classification{
		IsNetworking:        hits[TagNetworking],
		IsWorkshop:          hits[TagWorkshop],
		IsService:           hits[TagService],
		IsHealthWellness:    hits[TagHealth],
		IsArtsCulture:       hits[TagArts],
		IsSportsRec:         hits[TagSports],
		IsFaithSpirituality: hits[TagFaith],
		HasSwag:             hits[TagSwag],
		RequiresRSVP:        hits[TagRSVP],
		Format:              resolveFormat(hits, location),
		TimeOfDay:           resolveTimeOfDay(hits, clock),
	}
}

// Classify fills the derived fields of e from its title, description and
// organizer. Calling it twice yields the same fields.
func Classify(e *models.Event) {
	summary := e.Summary
	if summary == "" && e.Description != "" {
		summary = StripHTML(e.Description)
	}
	c := ClassifyText(lower(e.Title, summary, e.OrganizerName), e.Location, e.Time)
	e.IsNetworking = c.IsNetworking
	e.IsWorkshop = c.IsWorkshop
	e.IsService = c.IsService
	e.IsHealthWellness = c.IsHealthWellness
	e.IsArtsCulture = c.IsArtsCulture
	e.IsSportsRec = c.IsSportsRec
	e.IsFaithSpirituality = c.IsFaithSpirituality
	e.HasSwag = c.HasSwag
	e.RequiresRSVP = c.RequiresRSVP
	e.Format = c.Format
	e.TimeOfDay = c.TimeOfDay
}

// locationSeparators are trimmed from a location after its virtual terms are
// removed; anything left over names a physical place.
const locationSeparators = " \t/\\-,;:|()&+"

func resolveFormat(hits map[string]bool, location string) models.Format {
	loc := strings.ToLower(strings.TrimSpace(location))
	virtualLoc := rulesByTag[TagVirtual].MatchString(loc)
	physical := loc != "" && strings.Trim(rulesByTag[TagVirtual].ReplaceAllString(loc, ""), locationSeparators) != ""
	virtual := hits[TagVirtual] || virtualLoc

	switch {
	case hits[TagHybrid]:
		return models.FormatHybrid
	case virtual && (hits[TagInPerson] || physical):
		return models.FormatHybrid
	case virtual:
		return models.FormatVirtual
	}
	return models.FormatInPerson
}

// resolveTimeOfDay prefers the structured start time; the keyword hits are
// only used when the time string cannot be parsed.
func resolveTimeOfDay(hits map[string]bool, clock string) models.TimeOfDay {
	if h, ok := ParseHour(clock); ok {
		return BucketHour(h)
	}
	switch {
	case hits[TagMorning]:
		return models.TimeMorning
	case hits[TagAfternoon]:
		return models.TimeAfternoon
	}
	return models.TimeEvening
}

var (
	twelveHourRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?\s*([ap])\.?\s*m\.?\s*$`)
	clockRe      = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)
)

// ParseHour reads "4:00 PM", "4PM", "4 pm" or "16:00" and returns the
// 24-hour hour of day.
func ParseHour(s string) (int, bool) {
	if m := twelveHourRe.FindStringSubmatch(s); m != nil {
		h, err := strconv.Atoi(m[1])
		if err != nil || h < 1 || h > 12 {
			return 0, false
		}
		if m[2] != "" {
			if mm, err := strconv.Atoi(m[2]); err != nil || mm > 59 {
				return 0, false
			}
		}
		h %= 12
		if strings.EqualFold(m[3], "p") {
			h += 12
		}
		return h, true
	}
	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if h > 23 || mm > 59 {
			return 0, false
		}
		return h, true
	}
	return 0, false
}

// BucketHour maps 5–11 to morning, 12–17 to afternoon and the rest to evening.
func BucketHour(h int) models.TimeOfDay {
	switch {
	case h >= 5 && h <= 11:
		return models.TimeMorning
	case h >= 12 && h <= 17:
		return models.TimeAfternoon
	}
	return models.TimeEvening
}
