package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/railserve/reservation-backend/internal/models"
)

var (
	// ErrHoldNotFound indicates the hold token is unknown or expired
	ErrHoldNotFound = errors.New("hold not found or expired")

	// ErrHoldMismatch indicates the booking does not match the held partition
	ErrHoldMismatch = errors.New("hold does not match this booking")
)

// SeatHold is a short-lived soft reservation taken while the agent
// collects payment. Holds live in Redis and expire on their own; they are
// advisory and never block the inventory coordinator.
type SeatHold struct {
	Token          string            `json:"token"`
	TrainNumber    string            `json:"train_number"`
	DateOfJourney  string            `json:"date_of_journey"` // YYYY-MM-DD
	CoachClass     models.CoachClass `json:"coach_class"`
	PassengerCount int               `json:"passenger_count"`
	ExpiresAt      time.Time         `json:"expires_at"`
}

// HoldService manages seat hold tokens
type HoldService struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewHoldService creates a new HoldService
func NewHoldService(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *HoldService {
	return &HoldService{
		redis:  client,
		ttl:    ttl,
		logger: logger,
	}
}

// CreateHold issues a new hold token for a partition
func (s *HoldService) CreateHold(ctx context.Context, trainNumber, date string, class models.CoachClass, passengers int) (*SeatHold, error) {
	token, err := generateHoldToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate hold token: %w", err)
	}

	hold := &SeatHold{
		Token:          token,
		TrainNumber:    trainNumber,
		DateOfJourney:  date,
		CoachClass:     class,
		PassengerCount: passengers,
		ExpiresAt:      time.Now().Add(s.ttl).UTC(),
	}

	payload, err := json.Marshal(hold)
	if err != nil {
		return nil, fmt.Errorf("failed to encode hold: %w", err)
	}

	if err := s.redis.Set(ctx, holdKey(token), payload, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store hold: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"train": trainNumber,
		"date":  date,
		"class": class,
	}).Debug("Seat hold created")
	return hold, nil
}

// Redeem consumes a hold token for a booking. The token must match the
// booking's partition and passenger count; redemption is one-shot.
func (s *HoldService) Redeem(ctx context.Context, token string, booking *models.Booking, passengers int) error {
	payload, err := s.redis.GetDel(ctx, holdKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrHoldNotFound
		}
		return fmt.Errorf("failed to redeem hold: %w", err)
	}

	var hold SeatHold
	if err := json.Unmarshal([]byte(payload), &hold); err != nil {
		return fmt.Errorf("failed to decode hold: %w", err)
	}

	if !holdMatches(&hold, booking, passengers) {
		return ErrHoldMismatch
	}

	return nil
}

// holdMatches checks a hold against the booking's partition. A hold may
// cover more passengers than the booking uses, never fewer.
func holdMatches(hold *SeatHold, booking *models.Booking, passengers int) bool {
	return hold.TrainNumber == booking.TrainNumber &&
		hold.DateOfJourney == booking.DateOfJourney.Format("2006-01-02") &&
		hold.CoachClass == booking.CoachClass &&
		hold.PassengerCount >= passengers
}

// Release drops a hold before it expires
func (s *HoldService) Release(ctx context.Context, token string) error {
	if err := s.redis.Del(ctx, holdKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to release hold: %w", err)
	}
	return nil
}

func holdKey(token string) string {
	return "hold:" + token
}

func generateHoldToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
