package service

import (
	"fmt"

	"github.com/go-co-op/gocron/v2"
)

// schedulePeriodicTasks registers e's ReportPosition and CheckAudioUnderflow
// jobs on the shared cron scheduler (spec.md §4.B ReportPosition/
// CheckAudioUnderflow, §5.H), grounded on the teacher's knowledge reconciler
// cron wiring (api/pkg/controller/knowledge/cron.go).
func (s *PlaybackService) schedulePeriodicTasks(sessionID string, e *entry) error {
	reportJob, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.ReportPositionPeriod),
		gocron.NewTask(func() {
			_ = e.player.Enqueue(e.player.Factory().CreateReportPosition())
		}),
		gocron.WithName(sessionID+"-report-position"),
	)
	if err != nil {
		return fmt.Errorf("schedule report-position: %w", err)
	}
	e.reportJobID = reportJob.ID()

	underflowJob, err := s.cron.NewJob(
		gocron.DurationJob(s.cfg.CheckUnderflowPeriod),
		gocron.NewTask(func() {
			_ = e.player.Enqueue(e.player.Factory().CreateCheckAudioUnderflow(e.player))
		}),
		gocron.WithName(sessionID+"-check-underflow"),
	)
	if err != nil {
		_ = s.cron.RemoveJob(reportJob.ID())
		return fmt.Errorf("schedule check-underflow: %w", err)
	}
	e.underflowJobID = underflowJob.ID()
	return nil
}

// unschedulePeriodicTasksFor removes e's cron jobs if it has any. It takes
// the entry rather than a session id because DestroySession calls it after
// deleting the entry from the registry.
func (s *PlaybackService) unschedulePeriodicTasksFor(e *entry) {
	_ = s.cron.RemoveJob(e.reportJobID)
	_ = s.cron.RemoveJob(e.underflowJobID)
}
