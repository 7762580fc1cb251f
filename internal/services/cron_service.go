package services

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/railserve/reservation-backend/internal/config"
	"github.com/railserve/reservation-backend/internal/database"
)

// retentionDays is how long completed journeys are kept before purging.
const retentionDays = 90

// CronService manages scheduled background jobs
type CronService struct {
	cron     *cron.Cron
	bookings *database.BookingRepository
	booking  config.BookingConfig
}

// NewCronService creates a new CronService
func NewCronService(bookings *database.BookingRepository, booking config.BookingConfig) *CronService {
	// Create cron with seconds precision (optional)
	c := cron.New(cron.WithSeconds())

	return &CronService{
		cron:     c,
		bookings: bookings,
		booking:  booking,
	}
}

// Start starts all cron jobs
func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	// Job 1: Purge long-departed journeys daily at 2 AM
	// Cron format: second minute hour day month weekday
	// "0 0 2 * * *" = At 2:00 AM every day
	_, err := s.cron.AddFunc("0 0 2 * * *", s.purgeOldJourneysJob)
	if err != nil {
		return fmt.Errorf("failed to schedule purge job: %w", err)
	}
	log.Println("✓ Scheduled: Purge old journeys (Daily at 2:00 AM)")

	// Job 2: Mark the AC tatkal window opening at the configured time
	acSpec, err := tatkalCronSpec(s.booking.TatkalOpenAC)
	if err != nil {
		return fmt.Errorf("failed to schedule AC tatkal marker: %w", err)
	}
	if _, err := s.cron.AddFunc(acSpec, func() { s.tatkalOpenJob("AC") }); err != nil {
		return fmt.Errorf("failed to schedule AC tatkal marker: %w", err)
	}
	log.Printf("✓ Scheduled: AC tatkal window marker (Daily at %s)\n", s.booking.TatkalOpenAC)

	// Job 3: Mark the non-AC tatkal window opening
	nonACSpec, err := tatkalCronSpec(s.booking.TatkalOpenNonAC)
	if err != nil {
		return fmt.Errorf("failed to schedule non-AC tatkal marker: %w", err)
	}
	if _, err := s.cron.AddFunc(nonACSpec, func() { s.tatkalOpenJob("non-AC") }); err != nil {
		return fmt.Errorf("failed to schedule non-AC tatkal marker: %w", err)
	}
	log.Printf("✓ Scheduled: Non-AC tatkal window marker (Daily at %s)\n", s.booking.TatkalOpenNonAC)

	// Start the cron scheduler
	s.cron.Start()
	log.Println("✓ Cron service started successfully")

	return nil
}

// tatkalCronSpec converts an HH:MM opening time into a daily cron spec.
func tatkalCronSpec(open string) (string, error) {
	clock, err := time.Parse("15:04", open)
	if err != nil {
		return "", fmt.Errorf("invalid tatkal open time %q: %w", open, err)
	}
	return fmt.Sprintf("0 %d %d * * *", clock.Minute(), clock.Hour()), nil
}

// Stop stops all cron jobs
func (s *CronService) Stop() {
	log.Println("Stopping cron service...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("✓ Cron service stopped")
}

// purgeOldJourneysJob deletes bookings whose journey date fell out of the
// retention window
func (s *CronService) purgeOldJourneysJob() {
	log.Println("[CRON] Starting old journey purge job...")
	startTime := time.Now()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	purged, err := s.bookings.PurgeJourneysBefore(cutoff)
	if err != nil {
		log.Printf("[CRON ERROR] Failed to purge old journeys: %v\n", err)
		return
	}

	duration := time.Since(startTime)
	log.Printf("[CRON] ✓ Purged %d bookings older than %s in %v\n",
		purged, cutoff.Format("2006-01-02"), duration)
}

// tatkalOpenJob marks a tatkal window opening for next-day journeys
func (s *CronService) tatkalOpenJob(pool string) {
	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	log.Printf("[CRON] %s tatkal window now open for journeys on %s\n", pool, tomorrow)
}

// RunPurgeNow runs the purge job immediately (for testing)
func (s *CronService) RunPurgeNow() error {
	log.Println("[MANUAL] Running old journey purge now...")
	s.purgeOldJourneysJob()
	return nil
}

// GetJobStatus returns the status of scheduled jobs
func (s *CronService) GetJobStatus() map[string]interface{} {
	entries := s.cron.Entries()

	jobs := make([]map[string]interface{}, 0, len(entries))
	for _, entry := range entries {
		jobs = append(jobs, map[string]interface{}{
			"id":       entry.ID,
			"next_run": entry.Next,
			"prev_run": entry.Prev,
		})
	}

	return map[string]interface{}{
		"running":   len(entries) > 0,
		"job_count": len(entries),
		"jobs":      jobs,
	}
}
