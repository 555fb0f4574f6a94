package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go/types"

	"github.com/joshua-takyi/spk/internal/models"
)

var ErrAuthUnavailable = errors.New("auth backend is not configured")

type AuthService struct {
	authRepo models.AuthRepo
}

func NewAuthService(authRepo models.AuthRepo) *AuthService {
	return &AuthService{authRepo: authRepo}
}

func (as *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*types.TokenResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, fmt.Errorf("%w: refresh token cannot be empty", ErrInvalidInput)
	}
	if as.authRepo == nil {
		return nil, ErrAuthUnavailable
	}
	return as.authRepo.RefreshToken(ctx, refreshToken)
}

func (as *AuthService) Logout(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" || as.authRepo == nil {
		return nil
	}
	return as.authRepo.Logout(ctx, accessToken)
}
