package fiscalyears

import (
	"context"
	"fmt"
	"strings"
	"time"

	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// AuditPort records fiscal year events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates fiscal year lifecycle.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the fiscal year service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput carries a new fiscal year definition.
type CreateInput struct {
	OrgID     int64  `json:"-"`
	Label     string `json:"label" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
}

// Create validates dates and registers a new exercise window.
func (s *Service) Create(ctx context.Context, actorID int64, in CreateInput) (FiscalYear, error) {
	start, err := time.Parse("2006-01-02", strings.TrimSpace(in.StartDate))
	if err != nil {
		return FiscalYear{}, fmt.Errorf("%w: start_date must be YYYY-MM-DD", acctshared.ErrInvalidInput)
	}
	end, err := time.Parse("2006-01-02", strings.TrimSpace(in.EndDate))
	if err != nil {
		return FiscalYear{}, fmt.Errorf("%w: end_date must be YYYY-MM-DD", acctshared.ErrInvalidInput)
	}
	if !end.After(start) {
		return FiscalYear{}, fmt.Errorf("%w: end_date must follow start_date", acctshared.ErrInvalidInput)
	}

	// Overlapping exercises would make the covering-year lookup ambiguous.
	existing, err := s.repo.List(ctx, in.OrgID)
	if err != nil {
		return FiscalYear{}, err
	}
	for _, fy := range existing {
		if !start.After(fy.EndDate) && !end.Before(fy.StartDate) {
			return FiscalYear{}, fmt.Errorf("%w: window overlaps %s", acctshared.ErrInvalidInput, fy.Label)
		}
	}

	created, err := s.repo.Insert(ctx, FiscalYear{
		OrgID:     in.OrgID,
		Label:     strings.TrimSpace(in.Label),
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.record(ctx, in.OrgID, actorID, "fiscal_year.create", created.ID, map[string]any{"label": created.Label})
	return created, nil
}

// List returns all fiscal years of the organization.
func (s *Service) List(ctx context.Context, orgID int64) ([]FiscalYear, error) {
	return s.repo.List(ctx, orgID)
}

// FindByDate returns the fiscal year covering the date.
func (s *Service) FindByDate(ctx context.Context, orgID int64, date time.Time) (FiscalYear, error) {
	return s.repo.FindByDate(ctx, orgID, date)
}

// Close marks a fiscal year closed. Posted entries inside it become frozen:
// no new entries can be posted or cancelled with a date inside the window.
func (s *Service) Close(ctx context.Context, orgID, actorID, id int64) error {
	fy, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if fy.IsClosed {
		return acctshared.ErrFiscalYearClosed
	}
	if err := s.repo.SetClosed(ctx, orgID, id, true, s.now()); err != nil {
		return err
	}
	s.record(ctx, orgID, actorID, "fiscal_year.close", id, map[string]any{"label": fy.Label})
	return nil
}

// Reopen lifts the closure, typically to correct a premature close.
func (s *Service) Reopen(ctx context.Context, orgID, actorID, id int64) error {
	fy, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if !fy.IsClosed {
		return acctshared.ErrInvalidStatus
	}
	if err := s.repo.SetClosed(ctx, orgID, id, false, s.now()); err != nil {
		return err
	}
	s.record(ctx, orgID, actorID, "fiscal_year.reopen", id, map[string]any{"label": fy.Label})
	return nil
}

func (s *Service) record(ctx context.Context, orgID, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		OrgID:    orgID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "fiscal_year",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
		At:       s.now(),
	})
}
