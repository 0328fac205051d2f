package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

// MaxActiveSessions caps the refresh tokens a single user may hold.
const MaxActiveSessions = 10

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidRefresh     = "Invalid refresh token"
)

type AuthResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

type AuthService struct {
	users  UserStore
	tokens *TokenService
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(users UserStore, tokens *TokenService, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{users: users, tokens: tokens, log: log, now: time.Now}
}

func (s *AuthService) Register(ctx context.Context, in dto.RegisterDTO) (*AuthResult, error) {
	email := utils.NormalizeEmail(in.Email)

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.Conflict("User already exists with this email")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateKey) {
			return nil, utils.Conflict("User already exists with this email")
		}
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.Hex()))
	return s.startSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, in dto.LoginDTO) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.Unauthenticated(msgInvalidCredentials)
		}
		return nil, err
	}

	if err := utils.CheckPassword(user.PasswordHash, in.Password); err != nil {
		return nil, utils.Unauthenticated(msgInvalidCredentials)
	}

	return s.startSession(ctx, user)
}

// Refresh rotates a refresh token. A token with a valid signature that is no longer
// active has been used before, so every session of its user is revoked.
func (s *AuthService) Refresh(ctx context.Context, raw string) (*AuthResult, error) {
	userID, err := s.tokens.VerifyRefreshToken(raw)
	if err != nil {
		return nil, utils.Unauthenticated(msgInvalidRefresh)
	}

	consumed, err := s.users.ConsumeRefreshToken(ctx, userID, utils.Fingerprint(raw))
	if err != nil {
		return nil, err
	}
	if !consumed {
		s.log.Warn("refresh token reuse detected, revoking all sessions", zap.String("user_id", userID.Hex()))
		if err := s.users.RevokeAllRefreshTokens(ctx, userID); err != nil {
			return nil, err
		}
		return nil, utils.Unauthenticated(msgInvalidRefresh)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.Unauthenticated(msgInvalidRefresh)
		}
		return nil, err
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, user *models.User, refreshToken string) error {
	if refreshToken == "" {
		return s.users.RevokeAllRefreshTokens(ctx, user.ID)
	}
	return s.users.RevokeRefreshToken(ctx, user.ID, utils.Fingerprint(refreshToken))
}

// ChangePassword replaces the credential and ends every session of the user.
func (s *AuthService) ChangePassword(ctx context.Context, user *models.User, in dto.ChangeMyPasswordDTO) error {
	current, err := s.users.FindByEmail(ctx, user.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.Unauthenticated("Invalid token - user not found")
		}
		return err
	}
	if err := utils.CheckPassword(current.PasswordHash, in.CurrentPassword); err != nil {
		return utils.Unauthenticated("Current password is incorrect")
	}

	hash, err := utils.HashPassword(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	s.log.Info("password changed", zap.String("user_id", user.ID.Hex()))
	return nil
}

// Authenticate resolves a bearer token to the sanitized user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	userID, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil, utils.Unauthenticated("Access token expired")
		}
		return nil, utils.Unauthenticated("Invalid token")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.Unauthenticated("Invalid token - user not found")
		}
		return nil, err
	}
	return user, nil
}

// SeedAdmin creates the admin account on first boot; an existing account is left alone.
func (s *AuthService) SeedAdmin(ctx context.Context, name, email, password string) error {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return errors.New("missing ADMIN_EMAIL or ADMIN_PASSWORD")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := s.users.SeedAdmin(ctx, name, email, hash)
	if err != nil {
		return err
	}
	if created {
		s.log.Info("admin user seeded", zap.String("email", email))
	} else {
		s.log.Info("admin user already exists", zap.String("email", email))
	}
	return nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, err := s.tokens.IssueAccessToken(user.ID)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, err
	}

	err = s.users.AddRefreshToken(ctx, user.ID, models.RefreshToken{
		Fingerprint: refresh.Fingerprint,
		ExpiresAt:   refresh.ExpiresAt,
		CreatedAt:   s.now().UTC(),
	}, MaxActiveSessions)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.Unauthenticated(msgInvalidRefresh)
		}
		return nil, err
	}

	user.PasswordHash = ""
	user.RefreshTokens = nil
	return &AuthResult{User: user, AccessToken: access, RefreshToken: refresh.Token}, nil
}
