// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartExpirySweep runs FailOverdue every interval until the returned scheduler is shut down.
func (s *QuestService) StartExpirySweep(interval, grace time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			failed, err := s.FailOverdue(ctx, s.now(), grace)
			if err != nil {
				log.Printf("[Scheduler] quest sweep error: %v", err)
				return
			}
			if failed > 0 {
				log.Printf("[Scheduler] marked %d overdue quests as failed", failed)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}

	sched.Start()
	return sched, nil
}
