package models

import (
	"strings"
	"time"
)

type Category string

const (
	CategoryAcademic Category = "academic"
	CategorySocial   Category = "social"
	CategoryCareer   Category = "career"
	CategoryFood     Category = "food"
	CategoryOther    Category = "other"
)

// Valid reports whether c is one of the five event categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryAcademic, CategorySocial, CategoryCareer, CategoryFood, CategoryOther:
		return true
	}
	return false
}

type Format string

const (
	FormatInPerson Format = "in-person"
	FormatVirtual  Format = "virtual"
	FormatHybrid   Format = "hybrid"
)

type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
)

type Persona string

const (
	PersonaNone     Persona = ""
	PersonaCommuter Persona = "commuter"
	PersonaResident Persona = "resident"
)

// RawEventRecord is a single event as returned by the campus events source.
type RawEventRecord struct {
	ID               int64    `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Location         string   `json:"location"`
	StartsOn         string   `json:"startsOn"`
	EndsOn           string   `json:"endsOn"`
	OrganizationName string   `json:"organizationName"`
	ImagePath        string   `json:"imagePath,omitempty"`
	BenefitNames     []string `json:"benefitNames"`
	CategoryNames    []string `json:"categoryNames"`
}

type EventsEnvelope struct {
	Value    []RawEventRecord `json:"value"`
	NextPage string           `json:"nextPage,omitempty"`
}

type Event struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`          // raw, may contain markup
	Summary       string `json:"summary"`              // description with markup stripped
	Location      string `json:"location"`
	OrganizerName string `json:"organizerName"`
	ImageURL      string `json:"imageUrl,omitempty"`

	Date     string    `json:"date"` // e.g. "March 20, 2025"
	Time     string    `json:"time"` // e.g. "4:00 PM"
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt,omitempty"`

	Category Category `json:"category"`
	HasFood  bool     `json:"hasFood"`
	FoodType string   `json:"foodType,omitempty"`
	Tags     []string `json:"tags"`
	Commuter bool     `json:"commuter"`

	// CLASSIFIER
	IsNetworking        bool      `json:"isNetworking"`
	IsWorkshop          bool      `json:"isWorkshop"`
	IsService           bool      `json:"isService"`
	IsHealthWellness    bool      `json:"isHealthWellness"`
	IsArtsCulture       bool      `json:"isArtsCulture"`
	IsSportsRec         bool      `json:"isSportsRec"`
	IsFaithSpirituality bool      `json:"isFaithSpirituality"`
	HasSwag             bool      `json:"hasSwag"`
	RequiresRSVP        bool      `json:"requiresRSVP"`
	Format              Format    `json:"format"`
	TimeOfDay           TimeOfDay `json:"timeOfDay"`

	// recomputed per query, never persisted
	RelevanceScore float64 `json:"relevanceScore"`
}

// HasTag reports whether the event carries tag (case-insensitive, exact).
func (e *Event) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
