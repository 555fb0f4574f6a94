package models

import (
	"regexp"
	"strings"
)

const UnmappedOrganizationTag = "Other / Needs Review"

// DirectoryOrganization is an organization as listed by the live campus directory.
type DirectoryOrganization struct {
	Name           string `json:"Name"`
	WebsiteKey     string `json:"WebsiteKey"`
	ProfilePicture string `json:"ProfilePicture,omitempty"`
	Summary        string `json:"Summary,omitempty"`
}

type OrganizationsEnvelope struct {
	Value []DirectoryOrganization `json:"value"`
}

type Organization struct {
	Name           string   `json:"name"`
	WebsiteKey     string   `json:"websiteKey"`
	ProfilePicture string   `json:"profilePicture,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Categories     []string `json:"categories"`
}

// OrganizationMapping is one row of the curated name → category tags mapping.
type OrganizationMapping struct {
	Name string   `json:"name" yaml:"name" validate:"required"`
	Tags []string `json:"tags" yaml:"tags"`
}

type CategoryMapping struct {
	Organizations []OrganizationMapping `json:"organizations" yaml:"organizations"`
	Categories    map[string]string     `json:"categories" yaml:"categories"` // tag -> description
}

var (
	parentheticalRe = regexp.MustCompile(`\([^)]*\)`)
	punctuationRe   = regexp.MustCompile(`[^a-z0-9\s]+`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// NormalizeOrgName produces the join key used to match directory entries
// against the curated mapping.
func NormalizeOrgName(name string) string {
	n := strings.ToLower(name)
	n = parentheticalRe.ReplaceAllString(n, " ")
	n = strings.ReplaceAll(n, "&", " and ")
	n = punctuationRe.ReplaceAllString(n, "")
	n = spacesRe.ReplaceAllString(n, " ")
	return strings.TrimSpace(n)
}

// Index builds a lookup from normalized organization name to its tags.
func (m *CategoryMapping) Index() map[string][]string {
	idx := make(map[string][]string, len(m.Organizations))
	for _, o := range m.Organizations {
		key := NormalizeOrgName(o.Name)
		if key == "" {
			continue
		}
		idx[key] = append(idx[key], o.Tags...)
	}
	return idx
}
