package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joshua-takyi/spk/internal/models"
)

type PreferenceService struct {
	prefsRepo models.PreferenceRepo
}

func NewPreferenceService(prefsRepo models.PreferenceRepo) *PreferenceService {
	return &PreferenceService{
		prefsRepo: prefsRepo,
	}
}

func (ps *PreferenceService) AddToFavourites(ctx context.Context, userId uuid.UUID, itemId string, itemType string) (*models.Preferences, error) {
	if userId == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
	}
	if strings.TrimSpace(itemId) == "" {
		return nil, fmt.Errorf("%w: item ID cannot be empty", ErrInvalidInput)
	}
	if strings.ContainsAny(itemId, ".$") {
		return nil, fmt.Errorf("%w: item ID contains invalid characters", ErrInvalidInput)
	}
	if itemType != models.ItemTypeEvent && itemType != models.ItemTypeOrganization {
		return nil, fmt.Errorf("%w: item type must be either 'event' or 'organization'", ErrInvalidInput)
	}

	return ps.prefsRepo.AddToFavourites(ctx, userId, itemId, itemType)
}

func (ps *PreferenceService) RemoveFromFavourites(ctx context.Context, userId uuid.UUID, itemId string) error {
	if userId == uuid.Nil {
		return fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
	}
	if strings.TrimSpace(itemId) == "" {
		return fmt.Errorf("%w: item ID cannot be empty", ErrInvalidInput)
	}

	return ps.prefsRepo.RemoveFromFavourites(ctx, userId, itemId)
}

func (ps *PreferenceService) SetPersona(ctx context.Context, userId uuid.UUID, persona models.Persona) (*models.Preferences, error) {
	if userId == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
	}
	switch persona {
	case models.PersonaCommuter, models.PersonaResident, models.PersonaNone:
	default:
		return nil, fmt.Errorf("%w: persona must be 'commuter', 'resident' or empty", ErrInvalidInput)
	}

	return ps.prefsRepo.SetPersona(ctx, userId, persona)
}

func (ps *PreferenceService) GetPreferences(ctx context.Context, userId uuid.UUID) (*models.Preferences, error) {
	if userId == uuid.Nil {
		return nil, fmt.Errorf("%w: invalid user ID", ErrInvalidInput)
	}

	return ps.prefsRepo.GetPreferences(ctx, userId)
}
