package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/TLChilton/Milestone-2/internal/users"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errMissingDatabase = errors.New("database handle is required")

// ServiceConfig describes the dependencies required for session resolution.
type ServiceConfig struct {
	Database *gorm.DB
	Users    *users.Service
	Logger   *zap.Logger
}

// Service mints opaque session tokens and resolves inbound tokens to
// identities. Resolution is read-only and never fails on a missing or
// unknown token; those degrade to the anonymous identity.
type Service struct {
	db     *gorm.DB
	users  *users.Service
	logger *zap.Logger
}

// NewService constructs the session service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("session: %w", errMissingDatabase)
	}
	if cfg.Users == nil {
		return nil, fmt.Errorf("session: users service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: cfg.Database, users: cfg.Users, logger: logger}, nil
}

// Mint creates a fresh token row for the user and returns the opaque token.
func (s *Service) Mint(ctx context.Context, userID int64) (string, error) {
	token := AuthToken{Token: uuid.NewString(), UserID: userID}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		return "", err
	}
	return token.Token, nil
}

// Resolve maps an optional session token to an identity. A missing token and
// a token absent from the store both yield the anonymous identity with a nil
// error; only store failures are returned.
func (s *Service) Resolve(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, nil
	}

	var row AuthToken
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Stale or forged cookie. Degrade silently.
		return Identity{}, nil
	}
	if err != nil {
		return Identity{}, err
	}

	user, found, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return Identity{}, err
	}
	if !found {
		s.logger.Warn("session token references missing user",
			zap.Int64("user_id", row.UserID))
		return Identity{}, nil
	}

	return Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LoggedIn:  true,
	}, nil
}

// Revoke deletes the token row so a replayed cookie cannot resume the
// session. Revoking an unknown token is a no-op.
func (s *Service) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.db.WithContext(ctx).Where("token = ?", token).Delete(&AuthToken{}).Error
}
