package service

import (
	"sync"
	"sync/atomic"
	"time"

	"surgical-clinic-backend/config"
	"surgical-clinic-backend/internal/domain/repository"
	"surgical-clinic-backend/pkg/clock"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NoShowSweeper periodically applies automatic no-show detection to overdue
// appointments. The detection decision itself is the pure
// Appointment.AutoDetectNoShow; this service is only the cron-style driver
// around it.
type NoShowSweeper struct {
	db       *gorm.DB
	log      *logrus.Logger
	apptRepo repository.AppointmentRepository
	notifier *NotificationService
	clock    clock.Clock
	cfg      config.SchedulingConfig

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewNoShowSweeper(
	db *gorm.DB,
	log *logrus.Logger,
	apptRepo repository.AppointmentRepository,
	notifier *NotificationService,
	clk clock.Clock,
	cfg config.SchedulingConfig,
) *NoShowSweeper {
	return &NoShowSweeper{
		db:       db,
		log:      log,
		apptRepo: apptRepo,
		notifier: notifier,
		clock:    clk,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

// Start launches the background sweep loop.
func (s *NoShowSweeper) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.cfg.NoShowSweepPeriod)
		defer ticker.Stop()

		s.log.Infof("No-show sweeper started (period %s, threshold %s)",
			s.cfg.NoShowSweepPeriod, s.cfg.NoShowThreshold)

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.SweepOnce()
			}
		}
	}()
}

// Stop terminates the loop and waits for an in-flight sweep to finish.
func (s *NoShowSweeper) Stop() {
	if s.stopped.Swap(true) {
		return
	}
	close(s.stopChan)
	s.wg.Wait()
	s.log.Info("No-show sweeper stopped")
}

// SweepOnce processes every appointment currently past the no-show threshold.
func (s *NoShowSweeper) SweepOnce() {
	now := s.clock.Now()
	cutoff := now.Add(-s.cfg.NoShowThreshold)

	appointments, err := s.apptRepo.FindDueForNoShowSweep(s.db, cutoff)
	if err != nil {
		s.log.Warnf("No-show sweep query failed: %+v", err)
		return
	}

	swept := 0
	for i := range appointments {
		appt := &appointments[i]
		if !appt.AutoDetectNoShow(now, s.cfg.NoShowThreshold) {
			continue
		}
		if err := s.apptRepo.Update(s.db, appt); err != nil {
			s.log.Warnf("Failed to persist auto no-show for appointment %d: %+v", appt.ID, err)
			continue
		}
		s.notifier.Publish(EventAppointmentNoShow, map[string]interface{}{
			"appointment_id": appt.ID,
			"patient_id":     appt.PatientID,
			"reason":         "auto",
		})
		swept++
	}

	if swept > 0 {
		s.log.Infof("No-show sweep marked %d appointment(s)", swept)
	}
}
