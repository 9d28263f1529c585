package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medml-backend/internal/domain"
	"medml-backend/internal/repository"
	"medml-backend/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	blocklistPrefix = "jwt:block:"
)

// Claims JWT载荷：subject 是 user_id（admin）或 patient_id（patient）
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by every login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles admin/patient login, token issuing and the Redis
// backed logout blocklist.
type AuthService struct {
	users      repository.UsersRepository
	patients   repository.PatientsRepository
	blocklist  store.KV
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *zap.Logger
}

func NewAuthService(
	users repository.UsersRepository,
	patients repository.PatientsRepository,
	blocklist store.KV,
	secret string,
	accessTTLMin, refreshTTLDays int,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		patients:   patients,
		blocklist:  blocklist,
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
		logger:     logger,
	}
}

// RegisterAdmin creates a healthcare-worker account.
func (s *AuthService) RegisterAdmin(ctx context.Context, name, email, password, designation, contactNumber string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	u := &domain.User{
		UserID:        uuid.NewString(),
		Name:          name,
		Email:         email,
		PasswordHash:  string(hash),
		Designation:   designation,
		ContactNumber: contactNumber,
		Role:          domain.RoleAdmin,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("admin registered", zap.String("user_id", u.UserID), zap.String("email", email))
	return u, nil
}

// LoginAdmin authenticates by email + password.
func (s *AuthService) LoginAdmin(ctx context.Context, email, password string) (*TokenPair, *domain.User, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	pair, err := s.issueTokens(u.UserID, domain.RoleAdmin)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// LoginPatient authenticates by ABHA ID + password.
func (s *AuthService) LoginPatient(ctx context.Context, abhaID, password string) (*TokenPair, *domain.Patient, error) {
	p, err := s.patients.GetPatientByAbhaID(ctx, abhaID)
	if err != nil {
		if errors.Is(err, domain.ErrPatientNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}
	pair, err := s.issueTokens(p.PatientID, domain.RolePatient)
	if err != nil {
		return nil, nil, err
	}
	return pair, p, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.VerifyToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return nil, domain.ErrInvalidToken
	}
	return s.issueTokens(claims.Subject, claims.Role)
}

// Logout blocks the token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.blocklist.Set(ctx, blocklistPrefix+claims.ID, "1", ttl); err != nil {
		return fmt.Errorf("failed to block token: %w", err)
	}
	return nil
}

// VerifyToken parses and validates a token and rejects blocked ones.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidToken
	}
	if !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if _, err := s.blocklist.Get(ctx, blocklistPrefix+claims.ID); err == nil {
		return nil, domain.ErrInvalidToken
	} else if !errors.Is(err, store.ErrMiss) {
		s.logger.Warn("blocklist lookup failed, accepting token", zap.Error(err))
	}
	return claims, nil
}

// Me resolves the principal behind a verified claim set.
func (s *AuthService) Me(ctx context.Context, claims *Claims) (map[string]any, error) {
	switch claims.Role {
	case domain.RoleAdmin:
		u, err := s.users.GetUser(ctx, claims.Subject)
		if err != nil {
			return nil, err
		}
		return u.ToJSON(), nil
	case domain.RolePatient:
		p, err := s.patients.GetPatient(ctx, claims.Subject)
		if err != nil {
			return nil, err
		}
		return p.ToJSON(), nil
	}
	return nil, domain.ErrInvalidToken
}

func (s *AuthService) issueTokens(subject, role string) (*TokenPair, error) {
	access, err := s.signToken(subject, role, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.signToken(subject, role, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) signToken(subject, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
