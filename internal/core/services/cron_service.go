package services

import (
	"context"
	"log"
	"time"

	"hostel-leave-api/internal/adapters/persistence/repositories"
	"hostel-leave-api/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// Schedules
const (
	purgeResetTokensSpec = "@every 15m"
	pendingDigestSpec    = "0 8 * * *" // 08:00 daily
)

// CronService runs housekeeping jobs in the background
type CronService struct {
	cron     *cron.Cron
	userRepo repositories.UserRepository
	leaves   *LeaveService
	timeout  time.Duration
	now      func() time.Time
}

// NewCronService creates a new cron service
func NewCronService(userRepo repositories.UserRepository, leaves *LeaveService) *CronService {
	return &CronService{
		cron:     cron.New(),
		userRepo: userRepo,
		leaves:   leaves,
		timeout:  30 * time.Second,
		now:      time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc(purgeResetTokensSpec, s.runPurge); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(pendingDigestSpec, s.runPendingDigest); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("⏰ Cron service started (reset token purge every 15m, pending digest 08:00)")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	<-s.cron.Stop().Done()
	log.Println("⏰ Cron service stopped")
}

func (s *CronService) runPurge() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.PurgeExpiredResetTokens(ctx); err != nil {
		log.Printf("❌ Reset token purge failed: %v", err)
	}
}

// PurgeExpiredResetTokens clears reset tokens past their expiry, including
// tokens orphaned by a failed reset email
func (s *CronService) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	cleared, err := s.userRepo.ClearExpiredResetTokens(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		metrics.ExpiredResetTokensPurged.Add(float64(cleared))
		log.Printf("🧹 Cleared %d expired reset token(s)", cleared)
	}
	return cleared, nil
}

func (s *CronService) runPendingDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	pending, err := s.leaves.CountPending(ctx)
	if err != nil {
		log.Printf("❌ Pending digest failed: %v", err)
		return
	}
	log.Printf("📋 Daily digest: %d leave request(s) awaiting a decision", pending)
}
