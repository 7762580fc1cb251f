package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/railserve/reservation-backend/internal/models"
)

// ErrTrainNotFound is returned when a train number or stop is unknown.
var ErrTrainNotFound = errors.New("train not found")

// scanner abstracts sql.Row and sql.Rows for shared scan helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

// TrainRepository handles database operations for trains, their class
// configurations and their route stops.
type TrainRepository struct {
	db DB
}

// NewTrainRepository creates a new TrainRepository
func NewTrainRepository(db DB) *TrainRepository {
	return &TrainRepository{db: db}
}

// GetByNumber retrieves a train by its train number
func (r *TrainRepository) GetByNumber(trainNumber string) (*models.Train, error) {
	query := `
		SELECT id, train_number, train_name, source_code, dest_code, created_at
		FROM trains
		WHERE train_number = $1
	`

	train := &models.Train{}
	err := r.db.QueryRow(query, trainNumber).Scan(
		&train.ID, &train.TrainNumber, &train.TrainName,
		&train.SourceCode, &train.DestCode, &train.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrainNotFound
		}
		return nil, fmt.Errorf("failed to fetch train %s: %w", trainNumber, err)
	}

	return train, nil
}

// ClassConfig retrieves the coach configuration of one class on a train.
func (r *TrainRepository) ClassConfig(ctx context.Context, trainNumber string, class models.CoachClass) (*models.TrainClassConfig, error) {
	query := `
		SELECT id, train_number, coach_class, coaches, fare_per_km
		FROM train_class_configs
		WHERE train_number = $1 AND coach_class = $2
	`

	cfg := &models.TrainClassConfig{}
	err := r.db.QueryRow(query, trainNumber, class).Scan(
		&cfg.ID, &cfg.TrainNumber, &cfg.CoachClass, &cfg.Coaches, &cfg.FarePerKm,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("class %s not offered on train %s: %w", class, trainNumber, ErrTrainNotFound)
		}
		return nil, fmt.Errorf("failed to fetch class config: %w", err)
	}

	return cfg, nil
}

// ClassConfigs retrieves every class configuration of a train
func (r *TrainRepository) ClassConfigs(trainNumber string) ([]models.TrainClassConfig, error) {
	query := `
		SELECT id, train_number, coach_class, coaches, fare_per_km
		FROM train_class_configs
		WHERE train_number = $1
		ORDER BY coach_class
	`

	rows, err := r.db.Query(query, trainNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch class configs: %w", err)
	}
	defer rows.Close()

	configs := []models.TrainClassConfig{}
	for rows.Next() {
		var cfg models.TrainClassConfig
		if err := rows.Scan(&cfg.ID, &cfg.TrainNumber, &cfg.CoachClass, &cfg.Coaches, &cfg.FarePerKm); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}

	return configs, rows.Err()
}

// Stops retrieves a train's route stops in running order
func (r *TrainRepository) Stops(trainNumber string) ([]models.TrainStop, error) {
	query := `
		SELECT id, train_number, station_code, stop_order, distance_km, departure_time
		FROM train_stops
		WHERE train_number = $1
		ORDER BY stop_order
	`

	rows, err := r.db.Query(query, trainNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch stops: %w", err)
	}
	defer rows.Close()

	stops := []models.TrainStop{}
	for rows.Next() {
		stop, err := scanStop(rows)
		if err != nil {
			return nil, err
		}
		stops = append(stops, *stop)
	}

	return stops, rows.Err()
}

// StopAt retrieves a single stop of a train by station code
func (r *TrainRepository) StopAt(trainNumber, stationCode string) (*models.TrainStop, error) {
	query := `
		SELECT id, train_number, station_code, stop_order, distance_km, departure_time
		FROM train_stops
		WHERE train_number = $1 AND station_code = $2
	`

	stop, err := scanStop(r.db.QueryRow(query, trainNumber, stationCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("train %s does not stop at %s: %w", trainNumber, stationCode, ErrTrainNotFound)
		}
		return nil, fmt.Errorf("failed to fetch stop: %w", err)
	}

	return stop, nil
}

func scanStop(row scanner) (*models.TrainStop, error) {
	stop := &models.TrainStop{}
	err := row.Scan(
		&stop.ID, &stop.TrainNumber, &stop.StationCode,
		&stop.StopOrder, &stop.DistanceKm, &stop.DepartureTime,
	)
	if err != nil {
		return nil, err
	}
	return stop, nil
}
