package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/chinmayautoomstudio/AI-Interviewer-sub004/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// TokenType distinguishes candidate vs admin tokens.
type TokenType string

const (
	TokenTypeCandidate TokenType = "candidate"
	TokenTypeAdmin     TokenType = "admin"
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType   TokenType `json:"token_type"`
	UserID      int       `json:"user_id,omitempty"`      // Admin only
	Permissions []string  `json:"permissions,omitempty"`  // Admin only
	SessionID   string    `json:"session_id,omitempty"`   // Candidate only
	CandidateID string    `json:"candidate_id,omitempty"` // Candidate only
}

// ExamSessionID parses the candidate's exam session ID.
func (c *Claims) ExamSessionID() (uuid.UUID, error) {
	return uuid.Parse(c.SessionID)
}

// AuthService handles password hashing, JWT issuance and candidate token binding.
type AuthService struct {
	cfg *config.Config
	rdb redis.Cmdable
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb redis.Cmdable) *AuthService {
	return &AuthService{cfg: cfg, rdb: rdb}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueCandidateToken signs a candidate JWT scoped to one exam session and
// records its JTI in Redis. A later join replaces the JTI, so only the most
// recent browser tab keeps access.
func (s *AuthService) IssueCandidateToken(ctx context.Context, sessionID, candidateID uuid.UUID, ttl time.Duration) (string, error) {
	signed, jti, err := s.signCandidateToken(sessionID, candidateID, ttl)
	if err != nil {
		return "", err
	}

	key := config.CacheKey.CandidateTokenKey(sessionID.String())
	if err := s.rdb.Set(ctx, key, jti, ttl).Err(); err != nil {
		return "", fmt.Errorf("store candidate token: %w", err)
	}
	return signed, nil
}

func (s *AuthService) signCandidateToken(sessionID, candidateID uuid.UUID, ttl time.Duration) (string, string, error) {
	if ttl <= 0 {
		ttl = s.cfg.JWTExpiry
	}
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   candidateID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType:   TokenTypeCandidate,
		SessionID:   sessionID.String(),
		CandidateID: candidateID.String(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return signed, jti, nil
}

// GenerateAdminToken creates a JWT for an admin with permissions embedded.
func (s *AuthService) GenerateAdminToken(adminID int, permissions []string) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(adminID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TokenType:   TokenTypeAdmin,
		UserID:      adminID,
		Permissions: permissions,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateCandidateToken checks that the token's JTI is still the active one for its session.
func (s *AuthService) ValidateCandidateToken(ctx context.Context, claims *Claims) error {
	key := config.CacheKey.CandidateTokenKey(claims.SessionID)
	stored, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrSessionInvalidated
		}
		return fmt.Errorf("check candidate token: %w", err)
	}
	if stored != claims.ID {
		return ErrSessionInvalidated
	}
	return nil
}
