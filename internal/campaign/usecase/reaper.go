package usecase

import (
	"context"
	"log"

	audiencerepo "pushcast-backend/internal/audience/repository"
	"pushcast-backend/pkg/metrics"
)

// Reaper deletes tokens the gateway reported as permanently unregistered.
type Reaper struct {
	tokenRepo audiencerepo.TokenRepository
}

func NewReaper(tokenRepo audiencerepo.TokenRepository) *Reaper {
	return &Reaper{tokenRepo: tokenRepo}
}

// Reap removes ids in one statement and returns how many rows went away.
// Cleanup is best effort: errors are logged and reported as zero removed.
func (r *Reaper) Reap(ctx context.Context, ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	removed, err := r.tokenRepo.DeleteByIDs(ctx, ids)
	if err != nil {
		log.Printf("[Reaper] Failed to delete %d dead tokens: %v", len(ids), err)
		return 0
	}
	metrics.DeadTokensReaped.Add(float64(removed))
	log.Printf("[Reaper] Deleted %d of %d dead tokens", removed, len(ids))
	return int(removed)
}
