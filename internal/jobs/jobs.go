// Package jobs schedules background maintenance.
package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"reliefmatch/backend/internal/domain/match"

	"github.com/robfig/cron/v3"
)

type Reconciler interface {
	Reconcile(ctx context.Context) (match.Report, error)
}

// reconcileTimeout bounds one scheduled pass.
const reconcileTimeout = 2 * time.Minute

// Start schedules match reconciliation with a standard 5-field cron spec
// and starts the scheduler. Callers stop it with Stop().
func Start(schedule string, r Reconciler) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() { runReconcile(r) }); err != nil {
		return nil, fmt.Errorf("schedule reconcile %q: %w", schedule, err)
	}
	c.Start()
	log.Printf("[jobs] reconcile scheduled: %s", schedule)
	return c, nil
}

func runReconcile(r Reconciler) {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	rep, err := r.Reconcile(ctx)
	if err != nil {
		log.Printf("[jobs] reconcile failed: %v", err)
		return
	}
	log.Printf("[jobs] reconcile: scanned=%d repaired=%d orphaned=%d", rep.Scanned, rep.Repaired, rep.Orphaned)
}
