package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joshua-takyi/spk/internal/metrics"
	"github.com/joshua-takyi/spk/internal/models"
)

const directorySize = 1000

// DirectorySource is the live organization directory.
type DirectorySource interface {
	FetchOrganizations(ctx context.Context, query string, top int) ([]models.DirectoryOrganization, error)
}

type OrganizationService struct {
	source      DirectorySource
	mappingRepo models.MappingRepo
	mappingPath string
	thumbnail   func(src string) string
	metrics     *metrics.Metrics
	logger      *slog.Logger

	mu          sync.RWMutex
	directory   []models.Organization
	categories  map[string]string
	refreshedAt time.Time
}

// NewOrganizationService reads the curated mapping from mappingRepo when it
// is set, falling back to the file at mappingPath.
func NewOrganizationService(source DirectorySource, mappingRepo models.MappingRepo, mappingPath string, thumbnail func(string) string, m *metrics.Metrics, logger *slog.Logger) *OrganizationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrganizationService{
		source:      source,
		mappingRepo: mappingRepo,
		mappingPath: mappingPath,
		thumbnail:   thumbnail,
		metrics:     m,
		logger:      logger,
		categories:  map[string]string{},
	}
}

// LoadMappingFile reads a curated mapping from YAML. JSON files parse too.
func LoadMappingFile(path string) (*models.CategoryMapping, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}
	var mapping models.CategoryMapping
	if err := yaml.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file %s: %w", path, err)
	}
	for i, o := range mapping.Organizations {
		if err := models.Validate.Struct(o); err != nil {
			return nil, fmt.Errorf("invalid mapping entry %d: %v", i, err)
		}
	}
	if mapping.Categories == nil {
		mapping.Categories = map[string]string{}
	}
	return &mapping, nil
}

// Enrich joins directory entries with the curated mapping by normalized name.
// Entries with no mapping, or a mapping with no tags, are tagged
// models.UnmappedOrganizationTag.
func Enrich(directory []models.DirectoryOrganization, mapping *models.CategoryMapping) []models.Organization {
	var idx map[string][]string
	if mapping != nil {
		idx = mapping.Index()
	}
	out := make([]models.Organization, 0, len(directory))
	for _, d := range directory {
		tags := dedupe(idx[models.NormalizeOrgName(d.Name)])
		if len(tags) == 0 {
			tags = []string{models.UnmappedOrganizationTag}
		}
		out = append(out, models.Organization{
			Name:           strings.TrimSpace(d.Name),
			WebsiteKey:     d.WebsiteKey,
			ProfilePicture: d.ProfilePicture,
			Summary:        d.Summary,
			Categories:     tags,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		k := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (ors *OrganizationService) loadMapping(ctx context.Context) (*models.CategoryMapping, error) {
	if ors.mappingRepo != nil {
		mapping, err := ors.mappingRepo.LoadCategoryMapping(ctx)
		if err == nil {
			return mapping, nil
		}
		if ors.mappingPath == "" {
			return nil, err
		}
		ors.logger.Warn("Falling back to mapping file", "path", ors.mappingPath, "error", err)
	}
	if ors.mappingPath == "" {
		return &models.CategoryMapping{Categories: map[string]string{}}, nil
	}
	return LoadMappingFile(ors.mappingPath)
}

// Refresh reloads the mapping and the live directory and swaps in the
// enriched result. On error the previous directory is kept.
func (ors *OrganizationService) Refresh(ctx context.Context) error {
	mapping, err := ors.loadMapping(ctx)
	if err != nil {
		ors.metrics.ObserveOrgRefresh("error", 0)
		return fmt.Errorf("failed to load category mapping: %w", err)
	}
	directory, err := ors.source.FetchOrganizations(ctx, "", directorySize)
	if err != nil {
		ors.metrics.ObserveOrgRefresh("error", 0)
		return fmt.Errorf("failed to fetch organizations: %w", err)
	}

	orgs := Enrich(directory, mapping)
	if ors.thumbnail != nil {
		for i := range orgs {
			orgs[i].ProfilePicture = ors.thumbnail(orgs[i].ProfilePicture)
		}
	}

	ors.mu.Lock()
	ors.directory = orgs
	ors.categories = mapping.Categories
	ors.refreshedAt = time.Now()
	ors.mu.Unlock()

	ors.metrics.ObserveOrgRefresh("ok", len(orgs))
	ors.logger.Info("Organization directory refreshed", "organizations", len(orgs))
	return nil
}

func (ors *OrganizationService) ensureLoaded(ctx context.Context) error {
	ors.mu.RLock()
	loaded := !ors.refreshedAt.IsZero()
	ors.mu.RUnlock()
	if loaded {
		return nil
	}
	return ors.Refresh(ctx)
}

// List returns the cached directory narrowed by a case-insensitive name or
// summary query and an exact (case-insensitive) category tag.
func (ors *OrganizationService) List(ctx context.Context, query, tag string) ([]models.Organization, error) {
	if err := ors.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	query = strings.ToLower(strings.TrimSpace(query))
	tag = strings.TrimSpace(tag)

	ors.mu.RLock()
	defer ors.mu.RUnlock()
	out := make([]models.Organization, 0, len(ors.directory))
	for _, o := range ors.directory {
		if query != "" && !strings.Contains(strings.ToLower(o.Name), query) && !strings.Contains(strings.ToLower(o.Summary), query) {
			continue
		}
		if tag != "" && !hasCategory(o.Categories, tag) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

// Categories returns every tag in use with its description, including the
// unmapped bucket.
func (ors *OrganizationService) Categories(ctx context.Context) (map[string]string, error) {
	if err := ors.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	ors.mu.RLock()
	defer ors.mu.RUnlock()
	out := make(map[string]string, len(ors.categories)+1)
	for k, v := range ors.categories {
		out[k] = v
	}
	for _, o := range ors.directory {
		for _, c := range o.Categories {
			if _, ok := out[c]; !ok {
				out[c] = ""
			}
		}
	}
	return out, nil
}

func hasCategory(categories []string, tag string) bool {
	for _, c := range categories {
		if strings.EqualFold(c, tag) {
			return true
		}
	}
	return false
}
