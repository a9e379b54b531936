package usecase

import (
	"context"
	"time"

	"pushcast-backend/internal/campaign/domain"
	"pushcast-backend/internal/campaign/repository"
	"pushcast-backend/pkg/metrics"
)

// Reconciler persists a finished pass: campaign status and counters plus the
// global reach, in one transaction.
type Reconciler struct {
	statsRepo repository.StatsRepository
	now       func() time.Time
}

func NewReconciler(statsRepo repository.StatsRepository) *Reconciler {
	return &Reconciler{statsRepo: statsRepo, now: time.Now}
}

// Reconcile overwrites the campaign's send counters with this pass and
// returns the terminal status written.
func (r *Reconciler) Reconcile(ctx context.Context, campaignID string, result domain.DeliveryResult, processedAt *time.Time) (domain.Status, error) {
	outcome := domain.Outcome{
		Result:      result,
		FinishedAt:  r.now().UTC(),
		ProcessedAt: processedAt,
	}
	if result.TotalTargeted == 0 {
		outcome.Reason = domain.NoSubscribersReason
	}

	if err := r.statsRepo.ApplyOutcome(ctx, campaignID, outcome); err != nil {
		return "", err
	}
	status := result.Status()
	metrics.CampaignsFinished.WithLabelValues(string(status)).Inc()
	return status, nil
}
