package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"regexp"
	"time"

	"github.com/joshua-takyi/spk/internal/models"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	codeAttempts      = 10
)

var codeRe = regexp.MustCompile(`^\d{6}$`)

type SessionService struct {
	store   models.SessionStore
	ttl     time.Duration
	logger  *slog.Logger
	newCode func() (string, error)
	now     func() time.Time
}

func NewSessionService(store models.SessionStore, ttl time.Duration, logger *slog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		store:   store,
		ttl:     ttl,
		logger:  logger,
		newCode: randomCode,
		now:     time.Now,
	}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidCode reports whether code is a 6-digit save code.
func ValidCode(code string) bool {
	return codeRe.MatchString(code)
}

// Save stores onboarding progress. A state without a code is given a fresh
// one; a state with a code updates that existing save.
func (ss *SessionService) Save(ctx context.Context, state *models.SessionState) (*models.SessionState, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: session state is nil", ErrInvalidInput)
	}
	if err := models.Validate.Struct(state); err != nil {
		return nil, fmt.Errorf("%w: invalid session data provided: %v", ErrInvalidInput, err)
	}
	state.UpdatedAt = ss.now().UTC()

	if state.Code != "" {
		if _, err := ss.store.Get(ctx, state.Code); err != nil {
			return nil, err
		}
		if err := ss.store.Put(ctx, state, ss.ttl); err != nil {
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
		return state, nil
	}

	for i := 0; i < codeAttempts; i++ {
		code, err := ss.newCode()
		if err != nil {
			return nil, err
		}
		state.Code = code
		err = ss.store.Create(ctx, state, ss.ttl)
		if err == nil {
			ss.logger.Info("Onboarding progress saved", "code_suffix", code[len(code)-2:])
			return state, nil
		}
		if !errors.Is(err, models.ErrCodeTaken) {
			state.Code = ""
			return nil, fmt.Errorf("failed to save session: %w", err)
		}
	}
	state.Code = ""
	return nil, fmt.Errorf("failed to allocate a save code after %d attempts", codeAttempts)
}

// Resume loads the progress saved under code.
func (ss *SessionService) Resume(ctx context.Context, code string) (*models.SessionState, error) {
	if !ValidCode(code) {
		return nil, models.ErrInvalidCode
	}
	return ss.store.Get(ctx, code)
}

func (ss *SessionService) Delete(ctx context.Context, code string) error {
	if !ValidCode(code) {
		return models.ErrInvalidCode
	}
	return ss.store.Delete(ctx, code)
}
