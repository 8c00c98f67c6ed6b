package accounts

import (
	"context"
	"fmt"
	"time"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// AuditPort records chart-of-accounts events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates chart-of-accounts operations.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the chart-of-accounts service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create validates input and inserts a new account. The PCG class is derived
// from the first digit of the account number.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateAccountInput) (Account, error) {
	class, err := in.Normalize()
	if err != nil {
		return Account{}, err
	}
	if in.ParentNumber != nil && *in.ParentNumber != "" {
		if _, err := s.repo.GetByNumber(ctx, in.OrgID, *in.ParentNumber); err != nil {
			return Account{}, fmt.Errorf("parent %s: %w", *in.ParentNumber, err)
		}
	}
	account, err := s.repo.Insert(ctx, in, class)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, in.OrgID, actorID, "account.create", account.ID, map[string]any{
		"number": account.Number,
		"class":  account.Class,
	})
	return account, nil
}

// Delete removes an account. System accounts are protected; accounts already
// referenced by journal lines are deactivated instead of removed so history
// stays intact.
func (s *Service) Delete(ctx context.Context, orgID, actorID, id int64) error {
	account, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if account.IsSystem {
		return acctshared.ErrProtectedAccount
	}
	referenced, err := s.repo.HasJournalLines(ctx, orgID, account.Number)
	if err != nil {
		return err
	}
	if referenced {
		if err := s.repo.SetActive(ctx, orgID, id, false); err != nil {
			return err
		}
		s.record(ctx, orgID, actorID, "account.deactivate", id, map[string]any{"number": account.Number})
		return nil
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		return err
	}
	s.record(ctx, orgID, actorID, "account.delete", id, map[string]any{"number": account.Number})
	return nil
}

// Deactivate marks an account inactive without removing it.
func (s *Service) Deactivate(ctx context.Context, orgID, actorID, id int64) error {
	if err := s.repo.SetActive(ctx, orgID, id, false); err != nil {
		return err
	}
	s.record(ctx, orgID, actorID, "account.deactivate", id, nil)
	return nil
}

// List retrieves all accounts of the organization ordered by number.
func (s *Service) List(ctx context.Context, orgID int64) ([]Account, error) {
	return s.repo.List(ctx, orgID)
}

// Get fetches a single account.
func (s *Service) Get(ctx context.Context, orgID, id int64) (Account, error) {
	return s.repo.Get(ctx, orgID, id)
}

func (s *Service) record(ctx context.Context, orgID, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    orgID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
		At:       s.now(),
	})
}
