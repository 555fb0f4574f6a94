package helpers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ThumbnailTransformation = "c_fill,g_auto,w_640,h_360/f_auto/q_auto"
	jwksPath                = "/auth/v1/.well-known/jwks.json"
)

type CustomClaims struct {
	Role        string `json:"role"`
	Email       string `json:"email"`
	AppMetadata struct {
		Provider  string   `json:"provider"`
		Providers []string `json:"providers"`
		Roles     []string `json:"roles,omitempty"`
	} `json:"app_metadata"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenValidator verifies Supabase access tokens against the project's JWKS.
// The key set is fetched on first use and refreshed in the background.
type TokenValidator struct {
	jwksURL string

	mu   sync.Mutex
	jwks *keyfunc.JWKS
}

func NewTokenValidator(supabaseURL string) *TokenValidator {
	return &TokenValidator{jwksURL: strings.TrimRight(supabaseURL, "/") + jwksPath}
}

func (v *TokenValidator) keys() (*keyfunc.JWKS, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		return v.jwks, nil
	}
	jwks, err := keyfunc.Get(v.jwksURL, keyfunc.Options{
		Ctx:               context.Background(),
		RefreshInterval:   time.Hour,
		RefreshRateLimit:  5 * time.Minute,
		RefreshTimeout:    10 * time.Second,
		RefreshUnknownKID: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS: %v", err)
	}
	v.jwks = jwks
	return jwks, nil
}

func (v *TokenValidator) ValidateToken(tokenStr string) (*CustomClaims, error) {
	if v == nil || v.jwksURL == jwksPath {
		return nil, errors.New("SUPABASE_URL not set")
	}
	jwks, err := v.keys()
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}
	return claims, nil
}

// Close stops the background key refresh.
func (v *TokenValidator) Close() {
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.jwks != nil {
		v.jwks.EndBackground()
		v.jwks = nil
	}
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}

// ThumbnailURL rewrites a remote event image into a Cloudinary fetch URL
// that crops and compresses it for cards. Without a Cloudinary client, or
// on any error, the source URL is returned unchanged.
func ThumbnailURL(cld *cloudinary.Cloudinary, src string) string {
	src = StringTrim(src)
	if cld == nil || src == "" {
		return src
	}
	img, err := cld.Image(src)
	if err != nil {
		return src
	}
	img.DeliveryType = api.Fetch
	img.Transformation = ThumbnailTransformation
	out, err := img.String()
	if err != nil || out == "" {
		return src
	}
	return out
}
