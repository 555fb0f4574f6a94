package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshua-takyi/spk/internal/models"
)

func TestPreferenceFavourites(t *testing.T) {
	svc := NewPreferenceService(models.NewMemoryPreferenceRepo())
	ctx := context.Background()
	user := uuid.New()

	prefs, err := svc.AddToFavourites(ctx, user, "101", models.ItemTypeEvent)
	require.NoError(t, err)
	require.Contains(t, prefs.Items, "101")
	assert.Equal(t, models.ItemTypeEvent, prefs.Items["101"].ItemType)

	_, err = svc.AddToFavourites(ctx, user, "chess", models.ItemTypeOrganization)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveFromFavourites(ctx, user, "101"))
	prefs, err = svc.GetPreferences(ctx, user)
	require.NoError(t, err)
	assert.Len(t, prefs.Items, 1)
	assert.Contains(t, prefs.Items, "chess")
}

func TestPreferencePersona(t *testing.T) {
	svc := NewPreferenceService(models.NewMemoryPreferenceRepo())
	ctx := context.Background()
	user := uuid.New()

	prefs, err := svc.SetPersona(ctx, user, models.PersonaResident)
	require.NoError(t, err)
	assert.Equal(t, models.PersonaResident, prefs.Persona)

	_, err = svc.SetPersona(ctx, user, "tourist")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPreferenceValidation(t *testing.T) {
	svc := NewPreferenceService(models.NewMemoryPreferenceRepo())
	ctx := context.Background()

	_, err := svc.AddToFavourites(ctx, uuid.Nil, "1", models.ItemTypeEvent)
	assert.Error(t, err)
	_, err = svc.AddToFavourites(ctx, uuid.New(), " ", models.ItemTypeEvent)
	assert.Error(t, err)
	_, err = svc.AddToFavourites(ctx, uuid.New(), "a.b", models.ItemTypeEvent)
	assert.Error(t, err)
	_, err = svc.AddToFavourites(ctx, uuid.New(), "1", "venue")
	assert.Error(t, err)
	_, err = svc.GetPreferences(ctx, uuid.Nil)
	assert.Error(t, err)
}
