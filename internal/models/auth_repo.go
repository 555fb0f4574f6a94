package models

import (
	"context"
	"fmt"

	"github.com/supabase-community/gotrue-go/types"
)

// AuthRepo wraps the Supabase auth endpoints the API needs. Sign-up and
// sign-in happen in the client apps against Supabase directly.
type AuthRepo interface {
	RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

func (su *SupabaseRepo) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if su.supabaseClient == nil {
		return nil, fmt.Errorf("supabase client is not initialized")
	}
	resp, err := su.supabaseClient.Auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %v", err)
	}
	return resp, nil
}

func (su *SupabaseRepo) Logout(ctx context.Context, accessToken string) error {
	if su.supabaseClient == nil {
		return fmt.Errorf("supabase client is not initialized")
	}
	if err := su.supabaseClient.Auth.WithToken(accessToken).Logout(); err != nil {
		return fmt.Errorf("failed to log out: %v", err)
	}
	return nil
}
