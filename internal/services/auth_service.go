package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/railserve/reservation-backend/internal/models"
	"github.com/railserve/reservation-backend/pkg/jwt"
)

var (
	// ErrInvalidCredentials indicates a wrong username or password
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrAccountDisabled indicates the agent account is deactivated
	ErrAccountDisabled = errors.New("account is disabled")
)

// userAccounts is the account storage surface the auth service needs.
type userAccounts interface {
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(userID uuid.UUID) (*models.User, error)
	UpdateLastLogin(userID uuid.UUID) error
}

// AuthService authenticates booking-desk agents and issues token pairs.
type AuthService struct {
	users  userAccounts
	jwt    *jwt.Service
	logger *logrus.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(users userAccounts, jwtService *jwt.Service, logger *logrus.Logger) *AuthService {
	return &AuthService{
		users:  users,
		jwt:    jwtService,
		logger: logger,
	}
}

// Login verifies agent credentials and returns an access/refresh pair.
// Unknown usernames and bad passwords are indistinguishable to callers.
func (s *AuthService) Login(req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.users.GetUserByUsername(req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WithField("username", req.Username).Warn("Failed login attempt")
		return nil, ErrInvalidCredentials
	}

	response, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		// Login already succeeded; the stamp is best effort.
		s.logger.WithError(err).Warn("Failed to stamp last login")
	}

	s.logger.WithField("username", user.Username).Info("Agent logged in")
	return response, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(refreshToken string) (*models.LoginResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByID(claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDisabled
	}

	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*models.LoginResponse, error) {
	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}
	expiresAt, err := s.jwt.GetTokenExpiry(accessToken)
	if err != nil {
		return nil, err
	}

	// Never echo the hash back out.
	sanitized := *user
	sanitized.PasswordHash = ""

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         &sanitized,
	}, nil
}
