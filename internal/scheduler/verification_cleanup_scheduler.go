package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/sudays/sudays-backend/pkg/logger"
)

// VerificationCleaner purges verification codes that can no longer matter
type VerificationCleaner interface {
	CleanupExpired() (int64, error)
}

// VerificationCleanupScheduler 만료된 인증코드 정리 스케줄러
type VerificationCleanupScheduler struct {
	cron     *cron.Cron
	schedule string
	cleaner  VerificationCleaner
	log      *logger.Logger
}

// NewVerificationCleanupScheduler 인증코드 정리 스케줄러 생성
func NewVerificationCleanupScheduler(cleaner VerificationCleaner, schedule string, log *logger.Logger) *VerificationCleanupScheduler {
	return &VerificationCleanupScheduler{
		cron:     cron.New(),
		schedule: schedule,
		cleaner:  cleaner,
		log:      log.Component("verification_cleanup"),
	}
}

// RunOnce 정리 작업 1회 실행
func (s *VerificationCleanupScheduler) RunOnce() {
	removed, err := s.cleaner.CleanupExpired()
	if err != nil {
		s.log.Error("Scheduled verification cleanup failed", err)
		return
	}
	s.log.Debug("Scheduled verification cleanup finished", map[string]interface{}{
		"removed": removed,
	})
}

// Start 스케줄러 시작
func (s *VerificationCleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.RunOnce); err != nil {
		s.log.Error("Failed to add cron job for verification cleanup", err, map[string]interface{}{
			"schedule": s.schedule,
		})
		return err
	}

	s.cron.Start()
	s.log.Info("Verification cleanup scheduler started", map[string]interface{}{
		"schedule": s.schedule,
	})
	return nil
}

// Stop 스케줄러 중지. 실행 중인 작업이 끝날 때까지 기다린다
func (s *VerificationCleanupScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Verification cleanup scheduler stopped")
}
