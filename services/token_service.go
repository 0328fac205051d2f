package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// IssuedRefreshToken is a signed refresh token plus what the store keeps of it.
type IssuedRefreshToken struct {
	Token       string
	Fingerprint string
	ExpiresAt   time.Time
}

type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (s *TokenService) IssueAccessToken(userID bson.ObjectID) (string, error) {
	token, _, err := s.sign(userID, s.accessSecret, s.accessTTL, "")
	return token, err
}

func (s *TokenService) IssueRefreshToken(userID bson.ObjectID) (IssuedRefreshToken, error) {
	token, expiresAt, err := s.sign(userID, s.refreshSecret, s.refreshTTL, uuid.NewString())
	if err != nil {
		return IssuedRefreshToken{}, err
	}
	return IssuedRefreshToken{
		Token:       token,
		Fingerprint: utils.Fingerprint(token),
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifyAccessToken distinguishes expiry so clients know to refresh; every other
// failure is ErrTokenInvalid.
func (s *TokenService) VerifyAccessToken(token string) (bson.ObjectID, error) {
	return s.verify(token, s.accessSecret, true)
}

// VerifyRefreshToken reports every failure, expiry included, as ErrTokenInvalid.
func (s *TokenService) VerifyRefreshToken(token string) (bson.ObjectID, error) {
	return s.verify(token, s.refreshSecret, false)
}

func (s *TokenService) sign(userID bson.ObjectID, secret []byte, ttl time.Duration, jti string) (string, time.Time, error) {
	if len(secret) == 0 {
		return "", time.Time{}, errors.New("jwt secret is empty")
	}

	now := s.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		UserID: userID.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *TokenService) verify(raw string, secret []byte, reportExpiry bool) (bson.ObjectID, error) {
	if raw == "" {
		return bson.NilObjectID, ErrTokenInvalid
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(_ *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if reportExpiry && errors.Is(err, jwt.ErrTokenExpired) {
			return bson.NilObjectID, ErrTokenExpired
		}
		return bson.NilObjectID, ErrTokenInvalid
	}
	if !token.Valid {
		return bson.NilObjectID, ErrTokenInvalid
	}

	userID, err := bson.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return bson.NilObjectID, ErrTokenInvalid
	}
	return userID, nil
}
