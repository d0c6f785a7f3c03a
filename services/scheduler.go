// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// SnapshotFunc exports one period's audit stats to object storage and returns
// the stored object's URL. nil when snapshot storage is not configured.
type SnapshotFunc func(ctx context.Context, periodKey string) (string, error)

// StartDailyScheduler runs the award pipeline once a day at runAt (UTC,
// "HH:MM", validated by config.Load) and then exports the period snapshot.
func (o *AwardOrchestrator) StartDailyScheduler(runAt string, snapshot SnapshotFunc) {
	at, _ := time.Parse("15:04", runAt)

	sched, _ := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(uint(at.Hour()), uint(at.Minute()), 0))),
		gocron.NewTask(func() {
			periodKey := PeriodKeyFor(time.Now())
			results, err := o.RunAwardForPeriod(context.Background(), periodKey)
			if err != nil {
				log.Printf("[SCHED] ❌ daily award run failed for %s: %v", periodKey, err)
				return
			}
			log.Printf("[SCHED] daily award run for %s: processed=%d successful=%d failed=%d errors=%d",
				periodKey, results.Processed, results.Successful, results.Failed, len(results.Errors))

			if snapshot == nil {
				return
			}
			if url, err := snapshot(context.Background(), periodKey); err != nil {
				log.Printf("[SCHED] ⚠️ audit snapshot export failed for %s: %v", periodKey, err)
			} else {
				log.Printf("[SCHED] ✅ audit snapshot exported: %s", url)
			}
		}),
	)
}
