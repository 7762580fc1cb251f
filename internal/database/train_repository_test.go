package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railserve/reservation-backend/internal/models"
)

func TestClassConfig(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewTrainRepository(mockDB)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM train_class_configs`).
			WithArgs("12301", models.ClassSleeper).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "train_number", "coach_class", "coaches", "fare_per_km",
			}).AddRow(1, "12301", "SL", 4, 0.45))

		cfg, err := repo.ClassConfig(context.Background(), "12301", models.ClassSleeper)
		require.NoError(t, err)
		assert.Equal(t, 4, cfg.Coaches)
		assert.Equal(t, 0.45, cfg.FarePerKm)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Class Not Offered", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM train_class_configs`).
			WithArgs("12301", models.Class1AC).
			WillReturnError(sql.ErrNoRows)

		cfg, err := repo.ClassConfig(context.Background(), "12301", models.Class1AC)
		assert.ErrorIs(t, err, ErrTrainNotFound)
		assert.Nil(t, cfg)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStops(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewTrainRepository(mockDB)

	mock.ExpectQuery(`SELECT (.+) FROM train_stops`).
		WithArgs("12301").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "train_number", "station_code", "stop_order", "distance_km", "departure_time",
		}).
			AddRow(1, "12301", "HWH", 1, 0.0, "16:55").
			AddRow(2, "12301", "GAYA", 2, 458.0, "22:30").
			AddRow(3, "12301", "NDLS", 3, 1451.0, "10:00"))

	stops, err := repo.Stops("12301")
	require.NoError(t, err)
	require.Len(t, stops, 3)
	assert.Equal(t, "GAYA", stops[1].StationCode)
	assert.Equal(t, 458.0, stops[1].DistanceKm)
	assert.Equal(t, "22:30", stops[1].DepartureTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStopAtUnknownStation(t *testing.T) {
	mockDB, mock := newMockDB(t)
	repo := NewTrainRepository(mockDB)

	mock.ExpectQuery(`SELECT (.+) FROM train_stops`).
		WithArgs("12301", "XXX").
		WillReturnError(sql.ErrNoRows)

	stop, err := repo.StopAt("12301", "XXX")
	assert.ErrorIs(t, err, ErrTrainNotFound)
	assert.Nil(t, stop)

	assert.NoError(t, mock.ExpectationsWereMet())
}
