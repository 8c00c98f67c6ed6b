package fec

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/grandlivre-erp/grandlivre-erp/internal/accounting/fiscalyears"
	acctshared "github.com/grandlivre-erp/grandlivre-erp/internal/accounting/shared"
	"github.com/grandlivre-erp/grandlivre-erp/internal/organizations"
	"github.com/grandlivre-erp/grandlivre-erp/internal/shared"
)

// OrgLookup resolves the exporting organization, mainly for its SIREN.
type OrgLookup interface {
	Get(ctx context.Context, id int64) (organizations.Organization, error)
}

// YearLookup resolves the fiscal year to export.
type YearLookup interface {
	Get(ctx context.Context, orgID, id int64) (fiscalyears.FiscalYear, error)
}

// AuditPort records export events.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Export describes a generated file.
type Export struct {
	Filename string
	RowCount int
}

// Service generates FEC files.
type Service struct {
	repo  Repository
	orgs  OrgLookup
	years YearLookup
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the FEC service.
func NewService(repo Repository, orgs OrgLookup, years YearLookup, audit AuditPort) *Service {
	return &Service{repo: repo, orgs: orgs, years: years, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// ExportYear streams the export for one fiscal year to w and returns the
// regulatory filename. An organization without a SIREN cannot export.
func (s *Service) ExportYear(ctx context.Context, orgID, actorID, fiscalYearID int64, enc Encoding, w io.Writer) (Export, error) {
	org, err := s.orgs.Get(ctx, orgID)
	if err != nil {
		return Export{}, err
	}
	if err := organizations.ValidateSIREN(org.SIREN); err != nil {
		return Export{}, fmt.Errorf("%w: organization has no valid SIREN", acctshared.ErrInvalidInput)
	}
	fy, err := s.years.Get(ctx, orgID, fiscalYearID)
	if err != nil {
		return Export{}, err
	}
	rows, err := s.repo.Rows(ctx, orgID, fy.StartDate, fy.EndDate)
	if err != nil {
		return Export{}, err
	}
	if err := Write(w, rows, enc); err != nil {
		return Export{}, err
	}

	export := Export{Filename: Filename(org.SIREN, fy.EndDate), RowCount: len(rows)}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			OrgID:    orgID,
			ActorID:  actorID,
			Action:   "fec.export",
			Entity:   "fiscal_year",
			EntityID: fmt.Sprintf("%d", fiscalYearID),
			Meta:     map[string]any{"filename": export.Filename, "rows": export.RowCount},
			At:       s.now(),
		})
	}
	return export, nil
}
