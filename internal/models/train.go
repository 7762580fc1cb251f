package models

import "time"

// Train is a scheduled service identified by its train number.
type Train struct {
	ID          int       `json:"id" db:"id"`
	TrainNumber string    `json:"train_number" db:"train_number"`
	TrainName   string    `json:"train_name" db:"train_name"`
	SourceCode  string    `json:"source_code" db:"source_code"`
	DestCode    string    `json:"dest_code" db:"dest_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TrainClassConfig says how many coaches of a class run on a train. The
// confirmed-seat budget of a partition is Coaches × the class layout's
// seats per coach.
type TrainClassConfig struct {
	ID          int        `json:"id" db:"id"`
	TrainNumber string     `json:"train_number" db:"train_number"`
	CoachClass  CoachClass `json:"coach_class" db:"coach_class"`
	Coaches     int        `json:"coaches" db:"coaches"`
	FarePerKm   float64    `json:"fare_per_km" db:"fare_per_km"`
}

// TrainStop is one station on a train's route with its distance from the
// origin and the scheduled departure time of day (in the train's operating
// timezone).
type TrainStop struct {
	ID            int     `json:"id" db:"id"`
	TrainNumber   string  `json:"train_number" db:"train_number"`
	StationCode   string  `json:"station_code" db:"station_code"`
	StopOrder     int     `json:"stop_order" db:"stop_order"`
	DistanceKm    float64 `json:"distance_km" db:"distance_km"`
	DepartureTime string  `json:"departure_time" db:"departure_time"` // HH:MM
}

// ClassAvailability is the caller-facing availability snapshot for one
// (train, date, class) partition.
type ClassAvailability struct {
	CoachClass     CoachClass `json:"coach_class"`
	TotalSeats     int        `json:"total_seats"`
	ConfirmedCount int        `json:"confirmed_count"`
	RACCount       int        `json:"rac_count"`
	RACCapacity    int        `json:"rac_capacity"`
	WTLCount       int        `json:"wtl_count"`
	WTLCapacity    int        `json:"wtl_capacity"`
}
