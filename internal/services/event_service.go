package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshua-takyi/spk/internal/campus"
	"github.com/joshua-takyi/spk/internal/engine"
	"github.com/joshua-takyi/spk/internal/metrics"
	"github.com/joshua-takyi/spk/internal/models"
)

// EventSource is the upstream feed of raw event records.
type EventSource interface {
	FetchEvents(ctx context.Context, q campus.EventQuery) ([]models.RawEventRecord, error)
}

type EventService struct {
	source     EventSource
	normalizer *engine.Normalizer
	engine     *engine.Engine
	thumbnail  func(src string) string
	take       int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewEventService wires the fetch → normalize → pipeline path. thumbnail may
// be nil, in which case image URLs are passed through.
func NewEventService(source EventSource, normalizer *engine.Normalizer, en *engine.Engine, thumbnail func(string) string, take int, m *metrics.Metrics, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		source:     source,
		normalizer: normalizer,
		engine:     en,
		thumbnail:  thumbnail,
		take:       take,
		metrics:    m,
		logger:     logger,
	}
}

// Events fetches the upcoming events and runs them through the pipeline.
// Upstream failures are returned as is; no fallback data is substituted.
func (es *EventService) Events(ctx context.Context, req engine.Request) (*engine.Result, error) {
	// unfiltered; query matching happens in the engine
	raws, err := es.source.FetchEvents(ctx, campus.EventQuery{Take: es.take})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch events: %w", err)
	}

	events, errs := es.normalizer.NormalizeAll(raws)
	for _, e := range errs {
		es.logger.Warn("Skipping malformed event record", "error", e)
	}
	es.metrics.AddMalformedRecords(len(errs))

	if es.thumbnail != nil {
		for i := range events {
			events[i].ImageURL = es.thumbnail(events[i].ImageURL)
		}
	}

	res := es.engine.Run(events, req)
	es.logger.Debug("Events pipeline finished",
		"fetched", len(raws),
		"skipped", len(errs),
		"returned", len(res.Events),
		"generation", req.Generation,
	)
	return &res, nil
}

type FilterGroup struct {
	Category engine.FilterCategory `json:"category"`
	Filters  []engine.Filter       `json:"filters"`
}

// Filters returns the filter vocabulary grouped by category in display order.
func (es *EventService) Filters() []FilterGroup {
	groups := make([]FilterGroup, 0, len(engine.FilterCategories))
	for _, cat := range engine.FilterCategories {
		g := FilterGroup{Category: cat}
		for _, f := range engine.Filters {
			if f.Category == cat {
				g.Filters = append(g.Filters, f)
			}
		}
		groups = append(groups, g)
	}
	return groups
}
