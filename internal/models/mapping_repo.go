package models

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	OrgCategoriesTable       = "organization_categories"
	CategoryDescriptionTable = "category_descriptions"
)

// MappingRepo supplies the curated organization category mapping.
type MappingRepo interface {
	LoadCategoryMapping(ctx context.Context) (*CategoryMapping, error)
}

// LoadCategoryMapping reads the curated mapping from the Supabase tables
// maintained by the student life office.
func (su *SupabaseRepo) LoadCategoryMapping(ctx context.Context) (*CategoryMapping, error) {
	raw, status, err := su.supabaseClient.From(OrgCategoriesTable).
		Select("name,tags", "", false).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to get organization categories: %w", err)
	}

	var orgs []OrganizationMapping
	if err := json.Unmarshal(raw, &orgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal organization categories: %w", err)
	}

	raw, _, err = su.supabaseClient.From(CategoryDescriptionTable).
		Select("tag,description", "", false).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get category descriptions: %w", err)
	}

	var rows []struct {
		Tag         string `json:"tag"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category descriptions: %w", err)
	}

	mapping := &CategoryMapping{
		Organizations: orgs,
		Categories:    make(map[string]string, len(rows)),
	}
	for _, r := range rows {
		mapping.Categories[r.Tag] = r.Description
	}
	return mapping, nil
}
