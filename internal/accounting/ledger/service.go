package ledger

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Service builds ledger aggregates from posted movements, caching results
// per organization. Concurrent requests for the same aggregate share one
// database round trip through singleflight.
type Service struct {
	repo  Repository
	cache *Cache
	group singleflight.Group
}

// NewService constructs the ledger service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// GeneralLedger returns the ledger for the range, reading through the cache.
func (s *Service) GeneralLedger(ctx context.Context, orgID int64, from, to *time.Time) (GeneralLedger, error) {
	key, err := s.cache.BuildKey(ctx, orgID, keyGeneralLedger(rangeToken(from), rangeToken(to))...)
	if err != nil {
		return s.buildGeneralLedger(ctx, orgID, from, to)
	}
	var out GeneralLedger
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.buildGeneralLedger(ctx, orgID, from, to)
		})
		return v, err
	})
	return out, err
}

// TrialBalance returns the aggregated balance for the range.
func (s *Service) TrialBalance(ctx context.Context, orgID int64, from, to *time.Time) (TrialBalance, error) {
	key, err := s.cache.BuildKey(ctx, orgID, keyTrialBalance(rangeToken(from), rangeToken(to))...)
	if err != nil {
		return s.buildTrialBalance(ctx, orgID, from, to)
	}
	var out TrialBalance
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
		v, err, _ := s.group.Do(key, func() (interface{}, error) {
			return s.buildTrialBalance(ctx, orgID, from, to)
		})
		return v, err
	})
	return out, err
}

// Movements exposes the raw posted movements for downstream reports.
func (s *Service) Movements(ctx context.Context, orgID int64, from, to *time.Time) ([]Movement, error) {
	return s.repo.Movements(ctx, orgID, from, to)
}

// ScanIntegrity returns posted entries whose lines fail the double-entry
// equality. An empty result is the expected state.
func (s *Service) ScanIntegrity(ctx context.Context, orgID int64, tolerance float64) ([]Imbalance, error) {
	return s.repo.EntryImbalances(ctx, orgID, tolerance)
}

// Bump invalidates the organization's cached aggregates.
func (s *Service) Bump(ctx context.Context, orgID int64) error {
	return s.cache.Bump(ctx, orgID)
}

func (s *Service) buildGeneralLedger(ctx context.Context, orgID int64, from, to *time.Time) (GeneralLedger, error) {
	movements, err := s.repo.Movements(ctx, orgID, from, to)
	if err != nil {
		return GeneralLedger{}, err
	}
	prior := map[string]Balance{}
	if from != nil {
		prior, err = s.repo.PriorBalances(ctx, orgID, *from)
		if err != nil {
			return GeneralLedger{}, fmt.Errorf("ledger: prior balances: %w", err)
		}
	}
	return BuildGeneralLedger(movements, prior, from, to), nil
}

func (s *Service) buildTrialBalance(ctx context.Context, orgID int64, from, to *time.Time) (TrialBalance, error) {
	movements, err := s.repo.Movements(ctx, orgID, from, to)
	if err != nil {
		return TrialBalance{}, err
	}
	return BuildTrialBalance(movements, from, to), nil
}

func rangeToken(t *time.Time) string {
	if t == nil {
		return "all"
	}
	return t.Format("2006-01-02")
}
